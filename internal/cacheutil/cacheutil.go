// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package cacheutil manages the on-disk cache directory. Each tag is a
// subdirectory and each entry a file named by the SHA-256 of its key.
package cacheutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/tfctl/tfset/internal/log"
)

// Entry is a cached artifact on disk.
type Entry struct {
	Key        string
	EncodedKey string
	Path       string
	Data       []byte
}

// Stats summarizes the cache directory.
type Stats struct {
	Base    string
	Tags    int
	Entries int
	Bytes   int64
	Oldest  time.Time
	Newest  time.Time
}

// Dir resolves the base cache directory.
// Precedence:
//  1. TFSET_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/tfset
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("TFSET_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "tfset"), true
	}
	return "", false
}

// Enabled returns true unless TFSET_CACHE explicitly disables it ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv("TFSET_CACHE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// EnsureBaseDir creates the base cache directory if caching is enabled and
// a base path can be resolved.
func EnsureBaseDir() (string, bool, error) {
	if !Enabled() {
		return "", false, nil
	}

	base, ok := Dir()
	if !ok {
		return "", false, nil
	}

	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, false, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return base, true, nil
}

// EntryPath returns where the entry for key under tag lives and whether a
// file currently exists there.
func EntryPath(tag, clearKey string) (string, bool) {
	base, ok := Dir()
	if !ok {
		return "", false
	}
	p := filepath.Join(base, tag, encodeKey(clearKey))
	if _, err := os.Stat(p); err == nil {
		return p, true
	}
	return p, false
}

// Read returns the cached entry for key under tag.
func Read(tag, clearKey string) (*Entry, bool) {
	if !Enabled() {
		return nil, false
	}
	p, ok := EntryPath(tag, clearKey)
	if !ok {
		return nil, false
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	log.Tracef("cache hit: tag=%s, key=%s", tag, clearKey)
	return &Entry{
		Key:        clearKey,
		EncodedKey: encodeKey(clearKey),
		Path:       p,
		Data:       b,
	}, true
}

// Write stores data for key under tag, creating the tag directory as needed.
// The file is written beside its final name and renamed so readers never see
// a partial entry.
func Write(tag, clearKey string, data []byte) error {
	if !Enabled() {
		return nil
	}
	base, ok := Dir()
	if !ok {
		return nil
	}

	dir := filepath.Join(base, tag)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	p := filepath.Join(dir, encodeKey(clearKey))
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, os.FileMode(0o600)); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	log.Tracef("cache write: tag=%s, key=%s", tag, clearKey)
	return nil
}

// FlushTag removes every entry under tag.
func FlushTag(tag string) error {
	base, ok := Dir()
	if !ok || tag == "" {
		return nil
	}
	if err := os.RemoveAll(filepath.Join(base, tag)); err != nil {
		return fmt.Errorf("failed to flush cache tag %s: %w", tag, err)
	}
	log.Debugf("cache flushed: tag=%s", tag)
	return nil
}

// Purge removes files older than the provided number of hours.
// If hours <= 0 or the cache dir cannot be resolved, it is a no-op.
func Purge(hours int) (int, error) {
	if hours <= 0 {
		log.Debug("cache cleaning disabled")
		return 0, nil
	}

	base, ok := Dir()
	if !ok {
		return 0, nil
	}

	removed := 0
	maxAge := time.Duration(hours) * time.Hour
	err := walk(base, func(path string, info fs.FileInfo) {
		if time.Since(info.ModTime()) <= maxAge {
			return
		}
		if err := os.Remove(path); err == nil {
			removed++
			log.Debugf("removed cache file %s", path)
		} else {
			log.WithError(err).Warnf("failed to remove cache file %s", path)
		}
	})
	if err != nil {
		return removed, fmt.Errorf("failed to purge cache: %w", err)
	}
	return removed, nil
}

// Collect walks the cache directory and totals its entries.
func Collect() (Stats, error) {
	base, ok := Dir()
	if !ok {
		return Stats{}, nil
	}

	s := Stats{Base: base}
	tags := map[string]struct{}{}
	err := walk(base, func(path string, info fs.FileInfo) {
		s.Entries++
		s.Bytes += info.Size()
		if rel, err := filepath.Rel(base, filepath.Dir(path)); err == nil && rel != "." {
			tags[rel] = struct{}{}
		}
		mod := info.ModTime()
		if s.Oldest.IsZero() || mod.Before(s.Oldest) {
			s.Oldest = mod
		}
		if mod.After(s.Newest) {
			s.Newest = mod
		}
	})
	if err != nil {
		return s, fmt.Errorf("failed to read cache: %w", err)
	}
	s.Tags = len(tags)
	return s, nil
}

// walk calls fn for every regular file beneath base. Files that disappear
// mid-walk are skipped, and a missing base is an empty cache.
func walk(base string, fn func(string, fs.FileInfo)) error {
	err := filepath.Walk(base, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) {
				return nil
			}
			return walkErr
		}
		if info == nil || info.IsDir() {
			return nil
		}
		fn(path, info)
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func encodeKey(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}
