// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package settings resolves dot-path settings by merging a persisted layer
// over a read-only defaults layer, fronted by a tag-scoped cache.
//
// A path addresses into a tree whose first segment is the storage key. Reads
// combine both layers: two Nodes deep-merge with persisted leaves winning, two
// scalars resolve to the persisted scalar, and when the kinds differ the
// scalar wins. Every mutation flushes the whole cache tag.
//
// A literal "." inside a key is a path separator. {"a.b": 1} and
// {"a": {"b": 1}} are the same assignment.
package settings
