// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cacheutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useTempCache points the cache at a fresh directory with caching enabled.
func useTempCache(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TFSET_CACHE_DIR", dir)
	t.Setenv("TFSET_CACHE", "1")
	return dir
}

// TestDir_WithTFSET_CACHE_DIR verifies Dir() respects TFSET_CACHE_DIR.
func TestDir_WithTFSET_CACHE_DIR(t *testing.T) {
	customDir := t.TempDir()
	t.Setenv("TFSET_CACHE_DIR", customDir)

	result, ok := Dir()

	assert.True(t, ok)
	assert.Equal(t, customDir, result)
}

// TestDir_WithoutTFSET_CACHE_DIR verifies Dir() falls back to
// os.UserCacheDir/tfset.
func TestDir_WithoutTFSET_CACHE_DIR(t *testing.T) {
	t.Setenv("TFSET_CACHE_DIR", "")

	result, ok := Dir()

	if ok {
		assert.True(t, filepath.IsAbs(result))
		assert.Equal(t, "tfset", filepath.Base(result))
	}
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected bool
	}{
		{"1", "1", true},
		{"true", "true", true},
		{"yes", "yes", true},
		{"empty string", "", true},
		{"0", "0", false},
		{"false", "false", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TFSET_CACHE", tt.value)
			assert.Equal(t, tt.expected, Enabled())
		})
	}
}

func TestEnsureBaseDir_CachingDisabled(t *testing.T) {
	t.Setenv("TFSET_CACHE", "0")

	base, ok, err := EnsureBaseDir()

	assert.False(t, ok)
	assert.Empty(t, base)
	assert.NoError(t, err)
}

func TestEnsureBaseDir_CreatesDirectory(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "cache", "nested")
	t.Setenv("TFSET_CACHE_DIR", cacheDir)
	t.Setenv("TFSET_CACHE", "1")

	assert.NoDirExists(t, cacheDir)

	base, ok, err := EnsureBaseDir()

	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, cacheDir, base)
	assert.DirExists(t, cacheDir)
}

func TestEntryPath(t *testing.T) {
	dir := useTempCache(t)

	path, exists := EntryPath("settings", "my.key")
	assert.False(t, exists)
	assert.Equal(t, filepath.Join(dir, "settings", encodeKey("my.key")), path)

	require.NoError(t, Write("settings", "my.key", []byte("data")))
	path2, exists := EntryPath("settings", "my.key")
	assert.True(t, exists)
	assert.Equal(t, path, path2)
}

func TestRead_CachingDisabled(t *testing.T) {
	useTempCache(t)
	require.NoError(t, Write("settings", "key", []byte("data")))
	t.Setenv("TFSET_CACHE", "0")

	entry, found := Read("settings", "key")

	assert.False(t, found)
	assert.Nil(t, entry)
}

func TestRead_FileNotFound(t *testing.T) {
	useTempCache(t)

	entry, found := Read("settings", "nonexistent-key")

	assert.False(t, found)
	assert.Nil(t, entry)
}

// TestRead_PreservesBytes verifies entries come back byte for byte, including
// surrounding whitespace.
func TestRead_PreservesBytes(t *testing.T) {
	useTempCache(t)
	data := []byte("  \n\x00binary\xff\n ")
	require.NoError(t, Write("settings", "k", data))

	entry, found := Read("settings", "k")

	require.True(t, found)
	assert.Equal(t, "k", entry.Key)
	assert.Equal(t, encodeKey("k"), entry.EncodedKey)
	assert.Equal(t, data, entry.Data)
}

func TestWrite_CachingDisabled(t *testing.T) {
	dir := useTempCache(t)
	t.Setenv("TFSET_CACHE", "0")

	assert.NoError(t, Write("settings", "key", []byte("data")))
	assert.NoDirExists(t, filepath.Join(dir, "settings"))
}

// TestWrite_FilePermissions verifies entries are user read/write only and no
// temp file is left behind.
func TestWrite_FilePermissions(t *testing.T) {
	dir := useTempCache(t)

	require.NoError(t, Write("settings", "perm", []byte("x")))

	info, err := os.Stat(filepath.Join(dir, "settings", encodeKey("perm")))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	files, err := os.ReadDir(filepath.Join(dir, "settings"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestWrite_OverwritesExisting(t *testing.T) {
	useTempCache(t)

	require.NoError(t, Write("settings", "k", []byte("old")))
	require.NoError(t, Write("settings", "k", []byte("new")))

	entry, found := Read("settings", "k")
	require.True(t, found)
	assert.Equal(t, []byte("new"), entry.Data)
}

func TestFlushTag(t *testing.T) {
	useTempCache(t)
	require.NoError(t, Write("settings", "a", []byte("1")))
	require.NoError(t, Write("settings", "b", []byte("2")))
	require.NoError(t, Write("other", "a", []byte("3")))

	require.NoError(t, FlushTag("settings"))

	_, found := Read("settings", "a")
	assert.False(t, found)
	_, found = Read("settings", "b")
	assert.False(t, found)
	_, found = Read("other", "a")
	assert.True(t, found, "other tags survive")

	assert.NoError(t, FlushTag("settings"), "flushing an empty tag is fine")
}

func TestFlushTag_EmptyTagIsNoop(t *testing.T) {
	dir := useTempCache(t)
	require.NoError(t, Write("settings", "a", []byte("1")))

	require.NoError(t, FlushTag(""))
	assert.DirExists(t, filepath.Join(dir, "settings"))
}

func TestPurge(t *testing.T) {
	dir := useTempCache(t)
	require.NoError(t, Write("settings", "old", []byte("1")))
	require.NoError(t, Write("settings", "new", []byte("2")))

	oldPath := filepath.Join(dir, "settings", encodeKey("old"))
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, past, past))

	removed, err := Purge(24)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, oldPath)

	_, found := Read("settings", "new")
	assert.True(t, found)
}

func TestPurge_Disabled(t *testing.T) {
	useTempCache(t)
	require.NoError(t, Write("settings", "k", []byte("1")))

	removed, err := Purge(0)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestPurge_MissingDir(t *testing.T) {
	t.Setenv("TFSET_CACHE_DIR", filepath.Join(t.TempDir(), "absent"))

	removed, err := Purge(1)
	assert.NoError(t, err)
	assert.Zero(t, removed)
}

func TestCollect(t *testing.T) {
	dir := useTempCache(t)

	s, err := Collect()
	require.NoError(t, err)
	assert.Equal(t, Stats{Base: dir}, s)

	require.NoError(t, Write("settings", "a", []byte("12345")))
	require.NoError(t, Write("settings", "b", []byte("123")))
	require.NoError(t, Write("other", "a", []byte("1")))

	s, err = Collect()
	require.NoError(t, err)
	assert.Equal(t, dir, s.Base)
	assert.Equal(t, 2, s.Tags)
	assert.Equal(t, 3, s.Entries)
	assert.Equal(t, int64(9), s.Bytes)
	assert.False(t, s.Oldest.IsZero())
	assert.False(t, s.Newest.Before(s.Oldest))
}

func TestEncodeKey(t *testing.T) {
	assert.Len(t, encodeKey("a.b.c"), 64)
	assert.Equal(t, encodeKey("a.b.c"), encodeKey("a.b.c"))
	assert.NotEqual(t, encodeKey("a.b.c"), encodeKey("a.b.d"))
}
