// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package keypath converts dotted setting paths (e.g. "backend.s3.region") to
// and from their segments.
//
// There is no escaping. A key that contains a literal "." cannot be told apart
// from a nested path and is always read back as nested.
package keypath
