// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"github.com/tfctl/tfset/internal/cacheutil"
	"github.com/tfctl/tfset/internal/codec"
	"github.com/tfctl/tfset/internal/log"
	"github.com/tfctl/tfset/internal/tree"
)

// File is a Layer persisted under the cacheutil directory, so cached values
// survive between invocations. Values are stored as CBOR.
type File struct {
	tag   string
	codec *codec.Codec
}

// NewFile returns a File layer for tag after making sure the base directory
// exists.
func NewFile(tag string) (*File, error) {
	if _, _, err := cacheutil.EnsureBaseDir(); err != nil {
		return nil, err
	}
	c, err := codec.New()
	if err != nil {
		return nil, err
	}
	return &File{tag: tag, codec: c}, nil
}

// Get treats an unreadable entry as a miss. Lists come back compacted, as
// they were when cached.
func (f *File) Get(key string) (any, bool) {
	entry, ok := cacheutil.Read(f.tag, key)
	if !ok {
		return nil, false
	}
	v, err := f.codec.Decode(entry.Data)
	if err != nil {
		log.WithError(err).Warnf("discarding corrupt cache entry %s", entry.Path)
		return nil, false
	}
	return tree.Compact(v), true
}

func (f *File) Put(key string, value any) error {
	b, err := f.codec.Encode(value)
	if err != nil {
		return err
	}
	return cacheutil.Write(f.tag, key, b)
}

func (f *File) Flush() error {
	return cacheutil.FlushTag(f.tag)
}
