// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/tfctl/tfset/internal/hclexpr"
	"github.com/tfctl/tfset/internal/keypath"
	"github.com/tfctl/tfset/internal/log"
	"github.com/tfctl/tfset/internal/tree"
)

// Defaults is the read-only layer of default setting values. The settings
// engine only ever calls Get. Set exists to seed defaults programmatically and
// Reload to pick up edits to the backing file; both are safe to call while
// other goroutines read.
type Defaults struct {
	mu      sync.RWMutex
	source  string
	subtree string
	root    tree.Node
}

// NewDefaults builds a defaults layer from an in-memory tree.
func NewDefaults(data map[string]any) *Defaults {
	d := &Defaults{}
	d.replace(data)
	return d
}

// LoadDefaults reads a standalone defaults file. The format is picked from the
// extension: .yaml/.yml, .json or .hcl.
func LoadDefaults(path string) (*Defaults, error) {
	d := &Defaults{source: path}
	if err := d.Reload(); err != nil {
		return nil, err
	}
	return d, nil
}

// Source is the file backing the layer, if any.
func (d *Defaults) Source() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.source
}

// Get returns a copy of the value at path. The empty path returns the whole
// tree.
func (d *Defaults) Get(path string) (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	v, ok := tree.Lookup(d.root, keypath.Split(path))
	if !ok {
		return nil, false
	}
	return tree.Clone(v), true
}

// ErrRootScalar is returned by Defaults.Set when a scalar is assigned to the
// root of the layer.
var ErrRootScalar = errors.New("cannot set a scalar default at the root path")

// Set places value at path, replacing any scalar standing in the way. A Node
// set at the root replaces the whole layer.
func (d *Defaults) Set(path string, value any) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	segments := keypath.Split(path)
	value = tree.Normalize(value)
	if len(segments) == 0 {
		n, ok := value.(tree.Node)
		if !ok {
			return ErrRootScalar
		}
		d.root = n
		return nil
	}

	if d.root == nil {
		d.root = tree.Node{}
	}
	parent := d.root
	for _, seg := range segments[:len(segments)-1] {
		child, ok := parent[seg].(tree.Node)
		if !ok {
			child = tree.Node{}
			parent[seg] = child
		}
		parent = child
	}
	parent[segments[len(segments)-1]] = value
	return nil
}

// Reload re-reads the backing file. It is a no-op for in-memory layers.
func (d *Defaults) Reload() error {
	d.mu.RLock()
	source, subtree := d.source, d.subtree
	d.mu.RUnlock()

	if source == "" {
		return nil
	}

	data, err := readTree(source)
	if err != nil {
		return err
	}
	if subtree != "" {
		sub, _ := tree.Lookup(data, keypath.Split(subtree))
		data, _ = sub.(tree.Node)
	}

	d.replace(data)
	log.Debugf("defaults loaded: source=%s, keys=%d", source, len(data))
	return nil
}

func (d *Defaults) replace(data map[string]any) {
	root, ok := tree.Normalize(data).(tree.Node)
	if !ok || root == nil {
		root = tree.Node{}
	}

	d.mu.Lock()
	d.root = root
	d.mu.Unlock()
}

// readTree decodes a YAML, JSON or HCL document into a normalized Node.
func readTree(path string) (tree.Node, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	switch ext(path) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(b, &data); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case "json":
		if !gjson.ValidBytes(b) {
			return nil, fmt.Errorf("failed to parse %s: invalid json", path)
		}
		parsed := gjson.ParseBytes(b)
		if !parsed.IsObject() {
			return nil, fmt.Errorf("failed to parse %s: top level must be an object", path)
		}
		data, _ = parsed.Value().(map[string]any)
	case "hcl":
		if data, err = hclexpr.DecodeFile(b, path); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported defaults format: %s", path)
	}

	root, _ := tree.Normalize(data).(tree.Node)
	if root == nil {
		root = tree.Node{}
	}
	return root, nil
}
