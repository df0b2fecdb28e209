// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/tfctl/tfset/internal/keypath"
)

// Node is a mapping from path segment to value. It is an alias so that values
// decoded by yaml, json or cbor compare equal to values built here.
type Node = map[string]any

// Kind discriminates the two shapes a value can take.
type Kind int

const (
	KindScalar Kind = iota
	KindNode
)

func (k Kind) String() string {
	if k == KindNode {
		return "node"
	}
	return "scalar"
}

// ConflictError reports an attempt to place a node where a scalar already
// lives. The tree is left untouched when it is returned.
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("attempting to set node value to existing scalar value at the key '%s'", e.Path)
}

// KindOf returns the kind of a normalized value.
func KindOf(v any) Kind {
	if _, ok := v.(Node); ok {
		return KindNode
	}
	return KindScalar
}

// Normalize converts v into the canonical value model: every map becomes a
// Node and every slice becomes a Node keyed "0".."n-1". Scalars are returned
// unchanged. The result shares nothing with v.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil, string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return t
	case Node:
		n := make(Node, len(t))
		for k, child := range t {
			n[k] = Normalize(child)
		}
		return n
	case map[any]any:
		n := make(Node, len(t))
		for k, child := range t {
			n[fmt.Sprint(k)] = Normalize(child)
		}
		return n
	case []any:
		n := make(Node, len(t))
		for i, child := range t {
			n[strconv.Itoa(i)] = Normalize(child)
		}
		return n
	case []byte:
		return string(t)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		n := make(Node, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			n[fmt.Sprint(iter.Key().Interface())] = Normalize(iter.Value().Interface())
		}
		return n
	case reflect.Slice, reflect.Array:
		n := make(Node, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			n[strconv.Itoa(i)] = Normalize(rv.Index(i).Interface())
		}
		return n
	}

	return v
}

// Clone returns a deep copy of a normalized or compacted value.
func Clone(v any) any {
	switch t := v.(type) {
	case Node:
		out := make(Node, len(t))
		for k, child := range t {
			out[k] = Clone(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = Clone(child)
		}
		return out
	}
	return v
}

// Lookup walks segments down from v and returns the value found there. A
// scalar in the middle of the walk means the path does not exist.
func Lookup(v any, segments []string) (any, bool) {
	current := v
	for _, seg := range segments {
		n, ok := current.(Node)
		if !ok {
			return nil, false
		}
		current, ok = n[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Assign writes value at segments below root.
//
// A scalar value replaces whatever was there. A Node value is merged into an
// existing Node key by key, leaving siblings alone, and is refused with a
// ConflictError when the existing value is a scalar. A list, a Node keyed
// exactly "0".."n-1", replaces an existing Node outright. A scalar met on the way
// down is also a conflict, reported at the scalar's own path. Nothing in root
// changes when an error is returned.
func Assign(root Node, segments []string, value any) error {
	if len(segments) == 0 {
		n, ok := value.(Node)
		if !ok {
			return &ConflictError{Path: ""}
		}
		if err := checkMerge(root, n, nil); err != nil {
			return err
		}
		mergeInto(root, n)
		return nil
	}

	// Check first so that a failure leaves root untouched.
	if err := check(root, segments, value); err != nil {
		return err
	}

	parent := root
	for _, seg := range segments[:len(segments)-1] {
		child, ok := parent[seg].(Node)
		if !ok {
			child = Node{}
			parent[seg] = child
		}
		parent = child
	}

	last := segments[len(segments)-1]
	n, isNode := value.(Node)
	existing, exists := parent[last].(Node)
	switch {
	case isNode && exists && !isList(n):
		mergeInto(existing, n)
	default:
		parent[last] = Clone(value)
	}
	return nil
}

func check(root Node, segments []string, value any) error {
	parent := root
	for i, seg := range segments[:len(segments)-1] {
		child, ok := parent[seg]
		if !ok {
			return nil
		}
		n, ok := child.(Node)
		if !ok {
			return &ConflictError{Path: keypath.Join(segments[:i+1])}
		}
		parent = n
	}

	newNode, isNode := value.(Node)
	if !isNode {
		return nil
	}
	existing, ok := parent[segments[len(segments)-1]]
	if !ok {
		return nil
	}
	existingNode, ok := existing.(Node)
	if !ok {
		return &ConflictError{Path: keypath.Join(segments)}
	}
	if isList(newNode) {
		return nil
	}
	return checkMerge(existingNode, newNode, segments)
}

func checkMerge(dst, src Node, prefix []string) error {
	for _, k := range sortedKeys(src) {
		sub, ok := src[k].(Node)
		if !ok {
			continue
		}
		existing, ok := dst[k]
		if !ok {
			continue
		}
		path := append(append([]string{}, prefix...), k)
		existingNode, ok := existing.(Node)
		if !ok {
			return &ConflictError{Path: keypath.Join(path)}
		}
		if isList(sub) {
			continue
		}
		if err := checkMerge(existingNode, sub, path); err != nil {
			return err
		}
	}
	return nil
}

func mergeInto(dst, src Node) {
	for k, v := range src {
		sub, isNode := v.(Node)
		existing, exists := dst[k].(Node)
		if isNode && exists && !isList(sub) {
			mergeInto(existing, sub)
			continue
		}
		dst[k] = Clone(v)
	}
}

// Remove deletes the value at segments below root and prunes any parent Node
// left empty by the removal. It reports whether anything was removed.
func Remove(root Node, segments []string) bool {
	if len(segments) == 0 {
		return false
	}

	head := segments[0]
	if len(segments) == 1 {
		if _, ok := root[head]; !ok {
			return false
		}
		delete(root, head)
		return true
	}

	child, ok := root[head].(Node)
	if !ok {
		return false
	}
	if !Remove(child, segments[1:]) {
		return false
	}
	if len(child) == 0 {
		delete(root, head)
	}
	return true
}

// Merge combines a settings value with a defaults value found at the same
// path. Two Nodes merge key by key with settings winning every leaf both
// define. Two scalars resolve to the settings scalar. When the kinds differ the
// scalar wins, whichever layer it came from.
func Merge(settings, defaults any) any {
	s, sNode := settings.(Node)
	d, dNode := defaults.(Node)

	switch {
	case sNode && dNode:
		out := make(Node, len(s)+len(d))
		for k, v := range d {
			out[k] = Clone(v)
		}
		for k, v := range s {
			if dv, ok := d[k]; ok {
				out[k] = Merge(v, dv)
				continue
			}
			out[k] = Clone(v)
		}
		return out
	case sNode:
		return Clone(defaults)
	default:
		return Clone(settings)
	}
}

// Compact turns every Node whose keys are exactly "0".."n-1" into a []any,
// recursively. Other values are deep-copied.
func Compact(v any) any {
	n, ok := v.(Node)
	if !ok {
		return v
	}

	if list, ok := asList(n); ok {
		for i := range list {
			list[i] = Compact(list[i])
		}
		return list
	}

	return CompactNode(n)
}

// CompactNode is Compact for a value that must stay a Node at the top.
func CompactNode(n Node) Node {
	out := make(Node, len(n))
	for k, child := range n {
		out[k] = Compact(child)
	}
	return out
}

func isList(n Node) bool {
	_, ok := asList(n)
	return ok
}

func asList(n Node) ([]any, bool) {
	if len(n) == 0 {
		return nil, false
	}
	list := make([]any, len(n))
	for k, v := range n {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= len(n) || strconv.Itoa(i) != k {
			return nil, false
		}
		list[i] = v
	}
	return list, true
}

// Flatten returns every scalar leaf below v keyed by its full dotted path.
// Empty Nodes are reported as leaves so they stay visible.
func Flatten(v any, prefix string) map[string]any {
	out := map[string]any{}
	flatten(Normalize(v), prefix, out)
	return out
}

func flatten(v any, prefix string, out map[string]any) {
	n, ok := v.(Node)
	if !ok || len(n) == 0 {
		out[prefix] = v
		return
	}
	for k, child := range n {
		flatten(child, keypath.Append(prefix, k), out)
	}
}

// SortedPaths returns the keys of a flattened tree in order.
func SortedPaths(flat map[string]any) []string {
	return sortedKeys(flat)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
