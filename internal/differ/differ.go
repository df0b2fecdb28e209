// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/tfctl/tfset/internal/log"
	"github.com/tfctl/tfset/internal/tree"
)

// Identical is printed when there is nothing to report.
const Identical = "The settings match their defaults."

// Diff compares defaults with effective, both the value found at path, and
// writes an ascii delta to w. Either side may be nil when absent. It reports
// whether the two differ.
func Diff(w io.Writer, path string, defaults, effective any, coloring bool) (bool, error) {
	key := path
	if key == "" {
		key = "."
	}

	left, err := wrap(key, defaults)
	if err != nil {
		return false, err
	}
	right, err := wrap(key, effective)
	if err != nil {
		return false, err
	}

	delta, err := gojsondiff.New().Compare(left, right)
	if err != nil {
		return false, fmt.Errorf("failed to compare settings: %w", err)
	}
	log.Debugf("diff: path=%s, modified=%t", path, delta.Modified())

	if !delta.Modified() {
		fmt.Fprintln(w, Identical)
		return false, nil
	}

	var jdoc map[string]any
	if err := json.Unmarshal(left, &jdoc); err != nil {
		return true, fmt.Errorf("failed to unmarshal defaults: %w", err)
	}

	f := formatter.NewAsciiFormatter(jdoc, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       coloring,
	})
	s, err := f.Format(delta)
	if err != nil {
		return true, err
	}
	fmt.Fprint(w, s)
	return true, nil
}

// wrap places v under key in a JSON object, since the comparison works on
// objects only. Absent sides become an empty object.
func wrap(key string, v any) ([]byte, error) {
	doc := map[string]any{}
	if v != nil {
		doc[key] = tree.Compact(tree.Normalize(v))
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return b, nil
}
