// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package yamlfile stores settings as a single YAML document whose top-level
// keys are the storage keys.
package yamlfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tfctl/tfset/internal/log"
	"github.com/tfctl/tfset/internal/tree"
)

// Store is a store.Store over one YAML file. The file is re-read on every call
// so that edits made by hand or by another process are picked up.
type Store struct {
	Path string
}

// New returns a Store for path. The file and its directory are created on the
// first write.
func New(path string) *Store {
	return &Store{Path: path}
}

func (s *Store) Read(_ context.Context, key string) (any, bool, error) {
	doc, err := s.load()
	if err != nil {
		return nil, false, err
	}
	v, ok := doc[key]
	return v, ok, nil
}

func (s *Store) Write(_ context.Context, key string, value any) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	doc[key] = tree.Normalize(value)
	return s.save(doc)
}

func (s *Store) Delete(_ context.Context, key string) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return s.save(doc)
}

func (s *Store) ReadAll(_ context.Context) (map[string]any, error) {
	return s.load()
}

func (s *Store) load() (tree.Node, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return tree.Node{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var data map[string]any
	if err := yaml.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", s.Path, err)
	}

	doc, _ := tree.Normalize(data).(tree.Node)
	if doc == nil {
		doc = tree.Node{}
	}
	return doc, nil
}

// save writes doc to a temporary file next to Path and renames it into place.
func (s *Store) save(doc tree.Node) error {
	b, err := yaml.Marshal(tree.CompactNode(doc))
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tfset-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(b); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}

	log.Debugf("settings file written: path=%s, keys=%d", s.Path, len(doc))
	return nil
}
