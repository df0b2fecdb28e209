// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/tfctl/tfset/internal/cache"
	"github.com/tfctl/tfset/internal/keypath"
	"github.com/tfctl/tfset/internal/log"
	"github.com/tfctl/tfset/internal/store"
	"github.com/tfctl/tfset/internal/tree"
)

// CacheTag scopes every cache entry written by the engine.
const CacheTag = "settings"

// ConflictError is returned by Set when a Node would replace a scalar.
type ConflictError = tree.ConflictError

// ErrRootScalar is returned by Set when a scalar is assigned to the root.
var ErrRootScalar = errors.New("cannot set a scalar value at the root path")

// Defaults is the read-only layer consulted beneath persisted settings.
type Defaults interface {
	Get(path string) (any, bool)
}

// Engine reads and writes settings. It holds no locks of its own; concurrent
// writers rely on the store's consistency.
type Engine struct {
	store    store.Store
	defaults Defaults
	cache    cache.Layer
}

type noDefaults struct{}

func (noDefaults) Get(string) (any, bool) { return nil, false }

// New returns an Engine. A nil defaults layer is empty and a nil cache layer
// caches nothing.
func New(s store.Store, d Defaults, c cache.Layer) *Engine {
	if d == nil {
		d = noDefaults{}
	}
	if c == nil {
		c = cache.None{}
	}
	return &Engine{store: s, defaults: d, cache: c}
}

// Get returns the resolved value at path, or the first of def (nil if none)
// when neither layer defines it. Lists come back as []any.
func (e *Engine) Get(ctx context.Context, path string, def ...any) (any, error) {
	key := keypath.Clean(path)
	if v, ok := e.cache.Get(key); ok {
		log.Tracef("cache hit: path=%s", key)
		return tree.Clone(v), nil
	}

	v, found, err := e.resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		if len(def) > 0 {
			return def[0], nil
		}
		return nil, nil
	}

	v = tree.Compact(v)
	if err := e.cache.Put(key, v); err != nil {
		return nil, fmt.Errorf("failed to cache %q: %w", key, err)
	}
	return tree.Clone(v), nil
}

// resolve combines both layers at path without touching the cache.
func (e *Engine) resolve(ctx context.Context, path string) (any, bool, error) {
	sv, sok, err := e.lookup(ctx, keypath.Split(path))
	if err != nil {
		return nil, false, err
	}
	dv, dok := e.defaults.Get(path)

	switch {
	case sok && dok:
		return tree.Merge(sv, tree.Normalize(dv)), true, nil
	case sok:
		return sv, true, nil
	case dok:
		return tree.Normalize(dv), true, nil
	default:
		return nil, false, nil
	}
}

// lookup finds segments in the persisted layer. The root always exists.
func (e *Engine) lookup(ctx context.Context, segments []string) (any, bool, error) {
	if len(segments) == 0 {
		all, err := e.store.ReadAll(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("failed to read settings: %w", err)
		}
		return tree.Normalize(all), true, nil
	}

	v, ok, err := e.store.Read(ctx, segments[0])
	if err != nil {
		return nil, false, fmt.Errorf("failed to read setting %q: %w", segments[0], err)
	}
	if !ok {
		return nil, false, nil
	}
	found, ok := tree.Lookup(tree.Normalize(v), segments[1:])
	return found, ok, nil
}

// Set stores value at path.
//
// A scalar replaces whatever was at path. A Node is merged in key by key, and
// keys containing "." are expanded into nested paths first. At the root each
// key of the Node is an independent path. Assigning a Node over an existing
// scalar, or through a scalar ancestor, fails with *ConflictError and leaves
// everything as it was.
func (e *Engine) Set(ctx context.Context, path string, value any) error {
	value = tree.Normalize(value)
	if keypath.Clean(path) == "" && tree.KindOf(value) == tree.KindScalar {
		return ErrRootScalar
	}

	work := tree.Node{}
	touched := map[string]bool{}
	for _, a := range keypath.Normalize(path, value) {
		segments := keypath.Split(a.Path)
		if len(segments) == 0 {
			continue
		}

		top := segments[0]
		if !touched[top] {
			v, ok, err := e.store.Read(ctx, top)
			if err != nil {
				return fmt.Errorf("failed to read setting %q: %w", top, err)
			}
			if ok {
				work[top] = tree.Normalize(v)
			}
			touched[top] = true
		}

		if err := tree.Assign(work, segments, a.Value); err != nil {
			log.Debugf("set refused: path=%s, err=%v", a.Path, err)
			return err
		}
	}

	for _, top := range sortedKeys(touched) {
		if err := e.store.Write(ctx, top, work[top]); err != nil {
			return fmt.Errorf("failed to write setting %q: %w", top, err)
		}
	}
	log.Debugf("set: path=%s, keys=%d", path, len(touched))

	return e.Flush()
}

// Has reports whether path is cached or defined by either layer.
func (e *Engine) Has(ctx context.Context, path string) (bool, error) {
	key := keypath.Clean(path)
	if _, ok := e.cache.Get(key); ok {
		return true, nil
	}

	_, ok, err := e.lookup(ctx, keypath.Split(key))
	if err != nil || ok {
		return ok, err
	}

	_, ok = e.defaults.Get(key)
	return ok, nil
}

// Forget removes path from the persisted layer. Parents left empty are pruned.
// The empty path clears every persisted setting. Defaults are untouched, so a
// forgotten path may still resolve.
func (e *Engine) Forget(ctx context.Context, path string) error {
	segments := keypath.Split(path)
	if err := e.forget(ctx, segments); err != nil {
		return err
	}
	log.Debugf("forget: path=%s", path)
	return e.Flush()
}

func (e *Engine) forget(ctx context.Context, segments []string) error {
	if len(segments) == 0 {
		all, err := e.store.ReadAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to read settings: %w", err)
		}
		for _, top := range sortedKeys(all) {
			if err := e.store.Delete(ctx, top); err != nil {
				return fmt.Errorf("failed to delete setting %q: %w", top, err)
			}
		}
		return nil
	}

	top := segments[0]
	v, ok, err := e.store.Read(ctx, top)
	if err != nil {
		return fmt.Errorf("failed to read setting %q: %w", top, err)
	}
	if !ok {
		return nil
	}

	work := tree.Node{top: tree.Normalize(v)}
	if !tree.Remove(work, segments) {
		return nil
	}

	if remaining, ok := work[top]; ok {
		err = e.store.Write(ctx, top, remaining)
	} else {
		err = e.store.Delete(ctx, top)
	}
	if err != nil {
		return fmt.Errorf("failed to update setting %q: %w", top, err)
	}
	return nil
}

// All returns the fully merged tree.
func (e *Engine) All(ctx context.Context) (tree.Node, error) {
	v, err := e.Get(ctx, "")
	if err != nil {
		return nil, err
	}
	if n, ok := v.(tree.Node); ok {
		return n, nil
	}
	// A root whose keys are all list indexes compacts to a list.
	if n, ok := tree.Normalize(v).(tree.Node); ok {
		return n, nil
	}
	return tree.Node{}, nil
}

// Flush drops every cached value.
func (e *Engine) Flush() error {
	if err := e.cache.Flush(); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}
	return nil
}

// Close closes every collaborator that holds resources.
func (e *Engine) Close() error {
	var result *multierror.Error
	for _, c := range []any{e.store, e.defaults, e.cache} {
		if closer, ok := c.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}
	return result.ErrorOrNil()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
