// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package store defines the persistent backend for the settings layer. Values
// are kept per top-level key; the settings engine addresses everything below
// the first path segment itself.
//
// Implementations live in subpackages: yamlfile (a single YAML document),
// badger (embedded), postgres (one row per key) and s3 (one object per key).
package store
