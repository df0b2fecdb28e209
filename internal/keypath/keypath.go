// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package keypath

import (
	"sort"
	"strings"
)

// Separator delimits path segments.
const Separator = "."

// Assignment is a single (path, value) pair produced by Normalize.
type Assignment struct {
	Path  string
	Value any
}

// Split returns the segments of path. The empty path is the root and yields no
// segments. Empty segments ("a..b", ".a") are dropped.
func Split(path string) []string {
	if path == "" {
		return nil
	}

	parts := strings.Split(path, Separator)
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}

	if len(segments) == 0 {
		return nil
	}
	return segments
}

// Join is the inverse of Split.
func Join(segments []string) string {
	return strings.Join(segments, Separator)
}

// Append returns base extended by key. Either side may be empty.
func Append(base, key string) string {
	switch {
	case base == "":
		return key
	case key == "":
		return base
	default:
		return base + Separator + key
	}
}

// Clean round-trips path through Split and Join so that callers can use it as a
// canonical cache key.
func Clean(path string) string {
	return Join(Split(path))
}

// Normalize expands an assignment of value at path into independent
// assignments.
//
// When value is a map and path is the root, every key is treated as a full
// dotted path of its own (bulk set). When path is not the root and any key at
// any depth of the map contains a separator, every key is appended to path and
// normalized again. Otherwise the pair is returned as is. Keys are visited in
// sorted order.
func Normalize(path string, value any) []Assignment {
	path = Clean(path)

	m, ok := value.(map[string]any)
	if !ok || (path != "" && !hasDottedKey(m)) {
		return []Assignment{{Path: path, Value: value}}
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []Assignment
	for _, k := range keys {
		out = append(out, Normalize(Append(path, k), m[k])...)
	}
	return out
}

func hasDottedKey(m map[string]any) bool {
	for k, v := range m {
		if strings.Contains(k, Separator) {
			return true
		}
		if sub, ok := v.(map[string]any); ok && hasDottedKey(sub) {
			return true
		}
	}
	return false
}
