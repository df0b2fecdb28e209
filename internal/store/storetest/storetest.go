// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package storetest holds the shared contract test for store backends.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/tfset/internal/store"
)

// Conformance exercises the Store contract against s, which must start empty.
// Backend packages call it from their own tests.
func Conformance(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Read(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok, "missing key reads as absent")

	require.NoError(t, s.Delete(ctx, "missing"), "deleting a missing key is not an error")

	node := map[string]any{"key1": "data1", "key2": map[string]any{"key3": "data3"}}
	require.NoError(t, s.Write(ctx, "test", node))
	require.NoError(t, s.Write(ctx, "scalar", "value"))

	v, ok, err := s.Read(ctx, "test")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, node, v)

	v, ok, err = s.Read(ctx, "scalar")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	require.NoError(t, s.Write(ctx, "scalar", "replaced"))
	v, _, err = s.Read(ctx, "scalar")
	require.NoError(t, err)
	assert.Equal(t, "replaced", v)

	all, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"test": node, "scalar": "replaced"}, all)

	require.NoError(t, s.Delete(ctx, "scalar"))
	_, ok, err = s.Read(ctx, "scalar")
	require.NoError(t, err)
	assert.False(t, ok)

	all, err = s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"test": node}, all)
}
