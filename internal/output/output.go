// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/tfctl/tfset/internal/filters"
	"github.com/tfctl/tfset/internal/keypath"
	"github.com/tfctl/tfset/internal/tree"
)

// Formats accepted by Render.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// Formats lists the valid output formats.
var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatTable}

// Colors holds the table palette. Empty fields fall back to defaults picked
// for the terminal background.
type Colors struct {
	Title string
	Even  string
	Odd   string
}

// Options control table rendering.
type Options struct {
	Color   bool
	Titles  bool
	Padding int
	Sort    string
	Filter  string
	Prefix  string
	Colors  Colors
}

// Row is one flattened setting.
type Row struct {
	Path  string
	Value any
}

// Render writes v to w in format.
//
// text prints a scalar bare and a Node as one "path = value" line per leaf.
// table prints the same leaves as aligned columns.
func Render(w io.Writer, format string, v any, opts Options) error {
	if w == nil {
		w = os.Stdout
	}

	if opts.Filter != "" {
		v = Filtered(v, opts.Prefix, opts.Filter)
	}

	switch strings.ToLower(format) {
	case FormatJSON:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case FormatYAML:
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	case FormatTable:
		TableWriter(w, Rows(v, opts.Prefix, opts.Sort), opts)
		return nil
	case FormatText, "":
		n, ok := tree.Normalize(v).(tree.Node)
		if !ok || len(n) == 0 {
			_, err := fmt.Fprintln(w, ValueToString(v, "null"))
			return err
		}
		for _, r := range Rows(v, opts.Prefix, opts.Sort) {
			if _, err := fmt.Fprintf(w, "%s = %s\n", r.Path, ValueToString(r.Value, "null")); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// Filtered keeps the leaves of v that pass the filter spec, rebuilt into a
// tree. A scalar that fails comes back as nil.
func Filtered(v any, prefix, spec string) any {
	rows := FilterRows(Rows(v, prefix, ""), spec)

	if _, ok := tree.Normalize(v).(tree.Node); !ok {
		if len(rows) == 0 {
			return nil
		}
		return v
	}

	out := tree.Node{}
	base := len(keypath.Split(prefix))
	for _, r := range rows {
		segments := keypath.Split(r.Path)[base:]
		if len(segments) == 0 {
			continue
		}
		parent := out
		for _, seg := range segments[:len(segments)-1] {
			child, ok := parent[seg].(tree.Node)
			if !ok {
				child = tree.Node{}
				parent[seg] = child
			}
			parent = child
		}
		parent[segments[len(segments)-1]] = r.Value
	}
	return tree.Compact(out)
}

// FilterRows returns the rows matching spec. See the filters package for the
// expression syntax. The fields are "path" and "value".
func FilterRows(rows []Row, spec string) []Row {
	fs := filters.BuildFilters(spec)
	if len(fs) == 0 {
		return rows
	}

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if filters.Match(map[string]any{"path": r.Path, "value": r.Value}, fs) {
			out = append(out, r)
		}
	}
	return out
}

// Rows flattens v into leaf rows under prefix, ordered by spec.
func Rows(v any, prefix, spec string) []Row {
	flat := tree.Flatten(v, prefix)
	rows := make([]Row, 0, len(flat))
	for _, p := range tree.SortedPaths(flat) {
		rows = append(rows, Row{Path: p, Value: flat[p]})
	}
	SortRows(rows, spec)
	return rows
}

// ValueToString converts a scalar or composite value to a string. A custom
// empty value may be provided for nil.
func ValueToString(value any, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	switch value := value.(type) {
	case nil:
		return emptyValue[0]
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(b)
	}
}

// IsTerminal reports whether w is a terminal, which is when color defaults on.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// TableWriter renders rows as a borderless two column table.
func TableWriter(w io.Writer, rows []Row, opts Options) {
	if len(rows) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left).Bold(true)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color {
		headerColor, evenColor, oddColor := getColors(opts.Colors)
		headerStyle = headerStyle.Foreground(headerColor)
		evenRowStyle = evenRowStyle.Foreground(evenColor)
		oddRowStyle = oddRowStyle.Foreground(oddColor)
	}

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{r.Path, ValueToString(r.Value, "-")})
	}

	pad := opts.Padding
	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}
			if col > 0 {
				style = style.PaddingLeft(pad)
			}
			return style
		}).
		Rows(cells...)

	if opts.Titles {
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers("PATH", "VALUE").BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}

// getColors picks colors from c, falling back to values chosen for the
// terminal background.
func getColors(c Colors) (header, even, odd color.Color) {
	isDark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)

	resolve := func(explicit, light, dark string) color.Color {
		if explicit != "" {
			return lipgloss.Color(explicit)
		}
		if isDark {
			return lipgloss.Color(dark)
		}
		return lipgloss.Color(light)
	}

	header = resolve(c.Title, "#b08800", "#f6be00")
	even = resolve(c.Even, "#333333", "#ffffff")
	odd = resolve(c.Odd, "#0088a0", "#00c8f0")
	return
}
