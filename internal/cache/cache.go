// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package cache provides tag-scoped cache layers. A Layer is bound to one tag
// and Flush drops every entry under that tag and nothing else.
package cache

import (
	"fmt"
	"strings"
)

// Layer caches resolved values by key within a single tag.
type Layer interface {
	Get(key string) (any, bool)
	Put(key string, value any) error
	Flush() error
}

// Kinds accepted by New.
const (
	KindMemory = "memory"
	KindFile   = "file"
	KindNone   = "none"
)

// Kinds lists the valid layer kinds.
var Kinds = []string{KindMemory, KindFile, KindNone}

// New returns a Layer of the named kind scoped to tag.
func New(kind, tag string) (Layer, error) {
	switch strings.ToLower(kind) {
	case KindMemory, "":
		return NewMemory(0).Tag(tag), nil
	case KindFile:
		f, err := NewFile(tag)
		if err != nil {
			return nil, err
		}
		return f, nil
	case KindNone:
		return None{}, nil
	default:
		return nil, fmt.Errorf("unknown cache kind %q (want one of %s)", kind, strings.Join(Kinds, ", "))
	}
}

// None caches nothing.
type None struct{}

func (None) Get(string) (any, bool) { return nil, false }

func (None) Put(string, any) error { return nil }

func (None) Flush() error { return nil }
