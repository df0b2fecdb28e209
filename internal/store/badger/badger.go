// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package badger stores settings in an embedded BadgerDB. Each top-level key
// is one badger key under a fixed prefix, its value CBOR encoded.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/tfctl/tfset/internal/codec"
	"github.com/tfctl/tfset/internal/log"
)

const keyPrefix = "settings/"

// Config holds configuration for the badger store.
type Config struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string
	// InMemory keeps everything in RAM. Useful for testing.
	InMemory bool
	// SyncWrites fsyncs every write.
	SyncWrites bool
}

// Store is a store.Store over BadgerDB.
type Store struct {
	db    *badger.DB
	codec *codec.Codec
}

// badgerLogger routes badger's own logging into ours.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{})   { log.Errorf(format, args...) }
func (badgerLogger) Warningf(format string, args ...interface{}) { log.Warnf(format, args...) }
func (badgerLogger) Infof(format string, args ...interface{})    { log.Tracef(format, args...) }
func (badgerLogger) Debugf(format string, args ...interface{})   { log.Tracef(format, args...) }

// Open opens (creating if needed) the database described by cfg.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil { //nolint:mnd
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	log.Debugf("badger opened: path=%s, inMemory=%t", cfg.Path, cfg.InMemory)

	c, err := codec.New()
	if err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}

	return &Store{db: db, codec: c}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Read(_ context.Context, key string) (any, bool, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badger read %s: %w", key, err)
	}

	v, err := s.codec.Decode(raw)
	if err != nil {
		return nil, false, fmt.Errorf("badger read %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) Write(_ context.Context, key string, value any) error {
	raw, err := s.codec.Encode(value)
	if err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), raw)
	}); err != nil {
		return fmt.Errorf("badger write %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	}); err != nil {
		return fmt.Errorf("badger delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) ReadAll(_ context.Context) (map[string]any, error) {
	out := map[string]any{}
	prefix := []byte(keyPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			v, err := s.codec.Decode(raw)
			if err != nil {
				return err
			}
			out[string(item.Key()[len(prefix):])] = v
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger scan: %w", err)
	}
	return out, nil
}
