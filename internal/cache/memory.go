// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/tfctl/tfset/internal/log"
	"github.com/tfctl/tfset/internal/tree"
)

// Memory is an in-process cache holding one ttlcache per tag. A zero TTL keeps
// entries until their tag is flushed.
type Memory struct {
	mu   sync.Mutex
	ttl  time.Duration
	tags map[string]*ttlcache.Cache[string, any]
}

// NewMemory returns an empty Memory cache.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, tags: map[string]*ttlcache.Cache[string, any]{}}
}

// Tag returns the Layer for name, creating it on first use.
func (m *Memory) Tag(name string) Layer {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.tags[name]
	if !ok {
		c = ttlcache.New(
			ttlcache.WithTTL[string, any](m.ttl),
			ttlcache.WithDisableTouchOnHit[string, any](),
		)
		m.tags[name] = c
	}
	return &memoryLayer{tag: name, c: c}
}

// Len reports the number of live entries across every tag.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.tags {
		n += c.Len()
	}
	return n
}

type memoryLayer struct {
	tag string
	c   *ttlcache.Cache[string, any]
}

// Get returns a copy so callers cannot mutate the cached value.
func (l *memoryLayer) Get(key string) (any, bool) {
	item := l.c.Get(key)
	if item == nil || item.IsExpired() {
		return nil, false
	}
	return tree.Clone(item.Value()), true
}

func (l *memoryLayer) Put(key string, value any) error {
	l.c.Set(key, tree.Clone(value), ttlcache.DefaultTTL)
	return nil
}

func (l *memoryLayer) Flush() error {
	l.c.DeleteAll()
	log.Tracef("memory cache flushed: tag=%s", l.tag)
	return nil
}
