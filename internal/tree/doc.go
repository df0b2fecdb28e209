// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package tree implements the value model shared by the settings and defaults
// layers. A value is either a scalar (string, bool, number or nil) or a Node,
// a mapping from segment name to value. Lists are stored as Nodes keyed by
// decimal index and compacted back into slices on the way out.
package tree
