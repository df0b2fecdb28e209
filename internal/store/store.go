// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"sync"

	"github.com/tfctl/tfset/internal/tree"
)

// Store is a durable mapping from top-level key to value.
type Store interface {
	// Read returns the value stored under key and whether it exists.
	Read(ctx context.Context, key string) (any, bool, error)
	// Write replaces the value stored under key.
	Write(ctx context.Context, key string, value any) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// ReadAll returns every stored key.
	ReadAll(ctx context.Context) (map[string]any, error)
}

// Memory is a Store kept in process memory. Values are copied on the way in
// and out.
type Memory struct {
	mu   sync.RWMutex
	data tree.Node
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: tree.Node{}}
}

func (m *Memory) Read(_ context.Context, key string) (any, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return tree.Clone(v), ok, nil
}

func (m *Memory) Write(_ context.Context, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = tree.Clone(tree.Normalize(value))
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) ReadAll(_ context.Context) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return tree.Clone(m.data).(tree.Node), nil
}
