// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package postgres stores settings as rows of a PostgreSQL table, one row per
// top-level key with the value held as JSONB.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tfctl/tfset/internal/log"
	"github.com/tfctl/tfset/internal/tree"
)

// DefaultTable is used when no table name is configured.
const DefaultTable = "tfset_settings"

// Store is a store.Store over a pgx connection pool.
type Store struct {
	pool  *pgxpool.Pool
	table string
}

// Open connects to dsn and makes sure the settings table exists.
func Open(ctx context.Context, dsn string, table string) (*Store, error) {
	if table == "" {
		table = DefaultTable
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	s := &Store{pool: pool, table: pgx.Identifier{table}.Sanitize()}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Debugf("postgres store ready: table=%s", s.table)
	return s, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	name       TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, s.table))
	if err != nil {
		return fmt.Errorf("failed to create settings table: %w", err)
	}
	return nil
}

func (s *Store) Read(ctx context.Context, key string) (any, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT value FROM %s WHERE name = $1`, s.table), key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("postgres read %s: %w", key, err)
	}

	v, err := decode(raw)
	if err != nil {
		return nil, false, fmt.Errorf("postgres read %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) Write(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(tree.Compact(tree.Normalize(value)))
	if err != nil {
		return fmt.Errorf("postgres write %s: %w", key, err)
	}

	_, err = s.pool.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (name, value) VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, s.table), key, raw)
	if err != nil {
		return fmt.Errorf("postgres write %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE name = $1`, s.table), key); err != nil {
		return fmt.Errorf("postgres delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) ReadAll(ctx context.Context) (map[string]any, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT name, value FROM %s`, s.table))
	if err != nil {
		return nil, fmt.Errorf("postgres scan: %w", err)
	}
	defer rows.Close()

	out := map[string]any{}
	for rows.Next() {
		var name string
		var raw []byte
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, fmt.Errorf("postgres scan: %w", err)
		}
		v, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("postgres scan %s: %w", name, err)
		}
		out[name] = v
	}
	return out, rows.Err()
}

// decode unmarshals a JSONB column. The value is marshaled by us rather than
// handed to pgx as a Go value because pgx treats a bare string as raw JSON.
func decode(raw []byte) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return tree.Normalize(v), nil
}
