// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"sort"
	"strings"
)

// SortRows orders rows by a comma separated spec of "path" and "value". A
// leading "-" sorts descending and a leading "!" compares case-sensitively.
// Numbers compare numerically. An empty spec leaves rows as they are.
func SortRows(rows []Row, spec string) {
	if spec == "" {
		return
	}
	fields := strings.Split(spec, ",")

	sort.SliceStable(rows, func(one, two int) bool {
		for _, field := range fields {
			ascending := true
			if strings.HasPrefix(field, "-") {
				field = strings.TrimPrefix(field, "-")
				ascending = false
			}

			caseSensitive := false
			if strings.HasPrefix(field, "!") {
				field = strings.TrimPrefix(field, "!")
				caseSensitive = true
			}

			var oneValue, twoValue any
			switch field {
			case "path":
				oneValue, twoValue = rows[one].Path, rows[two].Path
			case "value":
				oneValue, twoValue = rows[one].Value, rows[two].Value
			default:
				continue
			}

			oneNum, oneOk := number(oneValue)
			twoNum, twoOk := number(twoValue)
			if oneOk && twoOk {
				if oneNum != twoNum {
					if ascending {
						return oneNum < twoNum
					}
					return oneNum > twoNum
				}
				continue
			}

			// Fall back to string comparison which can also handle bools.
			oneStr := ValueToString(oneValue)
			twoStr := ValueToString(twoValue)
			if !caseSensitive {
				oneStr = strings.ToLower(oneStr)
				twoStr = strings.ToLower(twoStr)
			}

			if oneStr != twoStr {
				if ascending {
					return oneStr < twoStr
				}
				return oneStr > twoStr
			}
		}
		return false
	})
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
