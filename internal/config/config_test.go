// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestConfig points TFSET_CFG_FILE at a testdata file.
func setupTestConfig(t *testing.T, testdataFile string) {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join("testdata", testdataFile))
	require.NoError(t, err, "failed to get absolute path for test config")

	t.Setenv("TFSET_CFG_FILE", absPath)
}

// withConfig loads a testdata config and hands it to fn.
func withConfig(t *testing.T, testFile string, fn func(t *testing.T, cfg *Type)) {
	t.Helper()
	setupTestConfig(t, testFile)
	cfg, err := Load()
	require.NoError(t, err)
	fn(t, cfg)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		testFile  string
		checkFunc func(*testing.T, *Type)
	}{
		{
			name:     "simple string values",
			testFile: "simple.yaml",
			checkFunc: func(t *testing.T, cfg *Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Equal(t, "us-east-1", cfg.Data["region"])
			},
		},
		{
			name:     "nested structure",
			testFile: "nested.yaml",
			checkFunc: func(t *testing.T, cfg *Type) {
				store, ok := cfg.Data["store"].(map[string]interface{})
				assert.True(t, ok, "store should be a map")
				assert.Equal(t, "badger", store["kind"])
			},
		},
		{
			name:     "mixed types",
			testFile: "mixed-types.yaml",
			checkFunc: func(t *testing.T, cfg *Type) {
				assert.Equal(t, "test-project", cfg.Data["name"])
				assert.Equal(t, 1, cfg.Data["version"])
				assert.Equal(t, true, cfg.Data["enabled"])
				assert.Equal(t, 30.5, cfg.Data["timeout"])
			},
		},
		{
			name:     "empty file",
			testFile: "empty.yaml",
			checkFunc: func(t *testing.T, cfg *Type) {
				assert.NotEmpty(t, cfg.Source, "should have a source path")
				assert.Empty(t, cfg.Data)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withConfig(t, tt.testFile, tt.checkFunc)
		})
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "simple.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", cfg.Data["region"])
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("TFSET_CFG_FILE", "/nonexistent/path/tfset.yaml")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotNil(t, cfg, "a usable empty config is returned")
}

func TestLoad_TFSET_CFG_FILE_IsDirectory(t *testing.T) {
	t.Setenv("TFSET_CFG_FILE", "testdata")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "points to a directory")
}

func TestGetString(t *testing.T) {
	tests := []struct {
		name         string
		testFile     string
		key          string
		defaultValue []string
		want         string
		wantErr      bool
	}{
		{name: "simple string value", testFile: "simple.yaml", key: "region", want: "us-east-1"},
		{name: "nested string value", testFile: "nested.yaml", key: "store.path", want: "/var/lib/tfset"},
		{name: "missing key with default", testFile: "simple.yaml", key: "missing", defaultValue: []string{"default-value"}, want: "default-value"},
		{name: "missing key without default", testFile: "simple.yaml", key: "missing", wantErr: true},
		{name: "non-string value", testFile: "mixed-types.yaml", key: "version", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withConfig(t, tt.testFile, func(t *testing.T, cfg *Type) {
				got, err := cfg.GetString(tt.key, tt.defaultValue...)
				if tt.wantErr {
					assert.Error(t, err)
					return
				}
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		})
	}
}

func TestGetInt(t *testing.T) {
	tests := []struct {
		name         string
		testFile     string
		key          string
		defaultValue []int
		want         int
		wantErr      bool
	}{
		{name: "int value", testFile: "mixed-types.yaml", key: "version", want: 1},
		{name: "float value converted to int", testFile: "mixed-types.yaml", key: "timeout", want: 30},
		{name: "nested int value", testFile: "nested.yaml", key: "store.retries", want: 5},
		{name: "missing key with default", testFile: "simple.yaml", key: "missing", defaultValue: []int{60}, want: 60},
		{name: "missing key without default", testFile: "simple.yaml", key: "missing", wantErr: true},
		{name: "non-int value", testFile: "simple.yaml", key: "region", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withConfig(t, tt.testFile, func(t *testing.T, cfg *Type) {
				got, err := cfg.GetInt(tt.key, tt.defaultValue...)
				if tt.wantErr {
					assert.Error(t, err)
					return
				}
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		})
	}
}

func TestGetDuration(t *testing.T) {
	withConfig(t, "nested.yaml", func(t *testing.T, cfg *Type) {
		got, err := cfg.GetDuration("cache.ttl")
		assert.NoError(t, err)
		assert.Equal(t, 90*time.Second, got)

		got, err = cfg.GetDuration("cache.clean")
		assert.NoError(t, err)
		assert.Equal(t, 24*time.Second, got)

		got, err = cfg.GetDuration("cache.missing", time.Minute)
		assert.NoError(t, err)
		assert.Equal(t, time.Minute, got)

		_, err = cfg.GetDuration("store.kind")
		assert.Error(t, err)
	})
}

func TestGetStringSlice(t *testing.T) {
	withConfig(t, "mixed-types.yaml", func(t *testing.T, cfg *Type) {
		got, err := cfg.GetStringSlice("tags")
		assert.NoError(t, err)
		assert.Equal(t, []string{"alpha", "beta"}, got)

		_, err = cfg.GetStringSlice("numbers")
		assert.Error(t, err)

		_, err = cfg.GetStringSlice("name")
		assert.Error(t, err)

		got, err = cfg.GetStringSlice("missing", []string{"x"})
		assert.NoError(t, err)
		assert.Equal(t, []string{"x"}, got)
	})
}

func TestNamespace(t *testing.T) {
	withConfig(t, "nested.yaml", func(t *testing.T, cfg *Type) {
		cfg.Namespace = "watch"

		got, err := cfg.GetString("store.path")
		assert.NoError(t, err)
		assert.Equal(t, "/srv/tfset", got, "namespaced key wins")

		got, err = cfg.GetString("store.kind")
		assert.NoError(t, err)
		assert.Equal(t, "badger", got, "falls back to the global key")
	})
}

func TestNilConfig(t *testing.T) {
	var cfg *Type

	got, err := cfg.GetString("store.kind", "file")
	assert.NoError(t, err)
	assert.Equal(t, "file", got)

	v, ok := cfg.Defaults().Get("")
	assert.True(t, ok)
	assert.Equal(t, map[string]any{}, v)
}
