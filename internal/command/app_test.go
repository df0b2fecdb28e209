// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

const testConfig = `store:
  kind: file
  path: %s
cache:
  kind: memory
  clean: 48
watch:
  cache:
    kind: none
defaults:
  color: %s
  app:
    name: demo
    tags:
      - a
      - b
`

// setupCLI writes a config file with a file store under a temp dir and points
// the environment at it. It returns the config and settings file paths.
func setupCLI(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	settingsFile := filepath.Join(dir, "settings.yaml")
	cfgFile := filepath.Join(dir, "tfset.yaml")
	writeConfig(t, cfgFile, settingsFile, "blue")

	t.Setenv("TFSET_CFG_FILE", cfgFile)
	t.Setenv("TFSET_CACHE_DIR", filepath.Join(dir, "cache"))
	t.Setenv("TFSET_DATA_DIR", filepath.Join(dir, "data"))

	return cfgFile, settingsFile
}

func writeConfig(t *testing.T, cfgFile, settingsFile, color string) {
	t.Helper()
	require.NoError(t, replaceConfig(cfgFile, settingsFile, color))
}

// replaceConfig swaps the config file in with a rename so readers never see
// it half written.
func replaceConfig(cfgFile, settingsFile, color string) error {
	tmp := cfgFile + ".tmp"
	if err := os.WriteFile(tmp, []byte(fmt.Sprintf(testConfig, settingsFile, color)), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, cfgFile)
}

// runCLI builds and runs the app the way main does, returning stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLIContext(t, context.Background(), args...)
}

func runCLIContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	full := append([]string{"tfset"}, args...)

	app, err := InitApp(ctx, full)
	require.NoError(t, err)

	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard

	err = app.Run(ctx, full)
	return out.String(), err
}

func TestInitApp(t *testing.T) {
	setupCLI(t)

	app, err := InitApp(context.Background(), []string{"tfset", "get"})
	require.NoError(t, err)

	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"get", "set", "has", "forget", "all", "flush", "diff", "watch", "cache", "completion"}, names)

	m := GetMeta(app.Commands[0])
	assert.Equal(t, "get", m.Namespace)
	require.NotNil(t, m.Config)
	assert.Equal(t, "get", m.Config.Namespace)

	for _, c := range app.Commands {
		for i := 1; i < len(c.Flags); i++ {
			assert.LessOrEqual(t, c.Flags[i-1].Names()[0], c.Flags[i].Names()[0], "flags of %s are sorted", c.Name)
		}
	}
}

func TestInitAppConfig(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		t.Setenv("TFSET_CFG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := InitApp(context.Background(), []string{"tfset", "all"})
		assert.NoError(t, err)
	})

	t.Run("broken", func(t *testing.T) {
		cfg := filepath.Join(t.TempDir(), "tfset.yaml")
		require.NoError(t, os.WriteFile(cfg, []byte("store: [unclosed"), 0o600))
		t.Setenv("TFSET_CFG_FILE", cfg)

		_, err := InitApp(context.Background(), []string{"tfset", "all"})
		assert.ErrorContains(t, err, "failed to parse")
	})
}

func TestGetSet(t *testing.T) {
	_, settingsFile := setupCLI(t)

	out, err := runCLI(t, "get", "color")
	require.NoError(t, err)
	assert.Equal(t, "blue\n", out)

	_, err = runCLI(t, "set", "color", "red")
	require.NoError(t, err)

	out, err = runCLI(t, "get", "color")
	require.NoError(t, err)
	assert.Equal(t, "red\n", out)

	b, err := os.ReadFile(settingsFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), "color: red")
}

func TestGetNode(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "get", "app")
	require.NoError(t, err)
	assert.Equal(t, "app.name = demo\napp.tags.0 = a\napp.tags.1 = b\n", out)

	out, err = runCLI(t, "get", "app", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "demo", "tags": ["a", "b"]}`, out)
}

func TestGetDefault(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "get", "missing.key", "--default", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback\n", out)

	out, err = runCLI(t, "get", "missing.key")
	require.NoError(t, err)
	assert.Equal(t, "null\n", out)

	out, err = runCLI(t, "get", "color", "--default", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "blue\n", out)
}

func TestGetArgs(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "get")
	assert.ErrorContains(t, err, "get: expected 1 argument, got 0")

	_, err = runCLI(t, "get", "a", "b")
	assert.ErrorContains(t, err, "got 2")
}

func TestSetExpr(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "set", "app.port", "8080", "--expr")
	require.NoError(t, err)
	_, err = runCLI(t, "set", "app.extra", `{ debug = true, hosts = ["x", "y"] }`, "-e")
	require.NoError(t, err)

	out, err := runCLI(t, "get", "app", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "demo",
		"port": 8080,
		"tags": ["a", "b"],
		"extra": {"debug": true, "hosts": ["x", "y"]}
	}`, out)
}

func TestSetYAML(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "set", "db", "{host: localhost, port: 5432}", "--yaml")
	require.NoError(t, err)

	out, err := runCLI(t, "get", "db.port")
	require.NoError(t, err)
	assert.Equal(t, "5432\n", out)
}

func TestSetConflict(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "set", "db", "localhost")
	require.NoError(t, err)

	_, err = runCLI(t, "set", "db.port", "5432")
	assert.ErrorContains(t, err, "attempting to set node value to existing scalar value at the key 'db'")

	out, err := runCLI(t, "get", "db")
	require.NoError(t, err)
	assert.Equal(t, "localhost\n", out)
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue("42", false, false)
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	v, err = ParseValue("42", true, false)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = ParseValue("[1, two]", false, true)
	require.NoError(t, err)
	assert.Equal(t, []any{1, "two"}, v)

	_, err = ParseValue("x", true, true)
	assert.ErrorContains(t, err, "mutually exclusive")

	_, err = ParseValue("{", false, true)
	assert.ErrorContains(t, err, "failed to parse yaml value")
}

func TestHas(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "has", "app.name")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = runCLI(t, "has", "nope")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	out, err = runCLI(t, "has", "nope", "--quiet")
	require.Error(t, err)
	assert.Empty(t, out)
	var ec cli.ExitCoder
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, 1, ec.ExitCode())

	out, err = runCLI(t, "has", "color", "-q")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestForget(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "set", "color", "red")
	require.NoError(t, err)
	_, err = runCLI(t, "set", "size", "xl")
	require.NoError(t, err)

	_, err = runCLI(t, "forget", "color")
	require.NoError(t, err)

	out, err := runCLI(t, "get", "color")
	require.NoError(t, err)
	assert.Equal(t, "blue\n", out, "falls back to the default")

	_, err = runCLI(t, "forget", "--all")
	require.NoError(t, err)

	out, err = runCLI(t, "has", "size")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)
}

func TestForgetArgs(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "forget")
	assert.ErrorContains(t, err, "PATH or --all is required")

	_, err = runCLI(t, "forget", ".")
	assert.ErrorContains(t, err, "PATH or --all is required")

	_, err = runCLI(t, "forget", "color", "--all")
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestAll(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "set", "color", "red")
	require.NoError(t, err)

	out, err := runCLI(t, "all")
	require.NoError(t, err)
	assert.Equal(t, "app.name = demo\napp.tags.0 = a\napp.tags.1 = b\ncolor = red\n", out)

	out, err = runCLI(t, "all", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "color: red\n")
	assert.Contains(t, out, "    - a\n")

	out, err = runCLI(t, "all", "--filter", "path^app.tags")
	require.NoError(t, err)
	assert.Equal(t, "app.tags.0 = a\napp.tags.1 = b\n", out)

	out, err = runCLI(t, "all", "--sort", "-path")
	require.NoError(t, err)
	assert.Equal(t, "color = red\napp.tags.1 = b\napp.tags.0 = a\napp.name = demo\n", out)
}

func TestFlush(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "flush", "--cache", "file")
	assert.NoError(t, err)

	_, err = runCLI(t, "flush", "extra")
	assert.ErrorContains(t, err, "expected 0 arguments")
}

func TestDiff(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "diff", "color")
	require.NoError(t, err)
	assert.Contains(t, out, "The settings match their defaults.")

	_, err = runCLI(t, "set", "color", "red")
	require.NoError(t, err)

	out, err = runCLI(t, "diff", "color")
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^-\s+"color": "blue"$`, out)
	assert.Regexp(t, `(?m)^\+\s+"color": "red"$`, out)

	_, err = runCLI(t, "diff", "--exit-code")
	var ec cli.ExitCoder
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, 1, ec.ExitCode())
}

func TestFileCache(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "get", "color", "--cache", "file")
	require.NoError(t, err)
	assert.Equal(t, "blue\n", out)

	out, err = runCLI(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "entries: 1\n")
	assert.Contains(t, out, "tags:    1\n")

	out, err = runCLI(t, "cache", "stats", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"entries": 1`)

	// A mutation flushes the settings tag.
	_, err = runCLI(t, "set", "color", "red", "-c", "file")
	require.NoError(t, err)

	out, err = runCLI(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "entries: 0\n")

	out, err = runCLI(t, "get", "color", "-c", "file")
	require.NoError(t, err)
	assert.Equal(t, "red\n", out)
}

func TestCachePurge(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "get", "color", "--cache", "file")
	require.NoError(t, err)

	out, err := runCLI(t, "cache", "purge")
	require.NoError(t, err)
	assert.Equal(t, "removed 0 entries older than 48 hours\n", out)

	out, err = runCLI(t, "cache", "purge", "--hours", "0")
	require.NoError(t, err)
	assert.Equal(t, "removed 0 entries older than 0 hours\n", out)
}

func TestStoreKinds(t *testing.T) {
	setupCLI(t)

	t.Run("memory", func(t *testing.T) {
		_, err := runCLI(t, "set", "color", "red", "--store", "memory")
		require.NoError(t, err)

		out, err := runCLI(t, "get", "color", "-s", "memory")
		require.NoError(t, err)
		assert.Equal(t, "blue\n", out, "nothing outlives the process")
	})

	t.Run("badger", func(t *testing.T) {
		db := filepath.Join(t.TempDir(), "badger")
		_, err := runCLI(t, "set", "color", "green", "--store", "badger", "--store-path", db)
		require.NoError(t, err)

		out, err := runCLI(t, "get", "color", "--store", "badger", "--store-path", db)
		require.NoError(t, err)
		assert.Equal(t, "green\n", out)

		out, err = runCLI(t, "get", "color")
		require.NoError(t, err)
		assert.Equal(t, "blue\n", out, "the file store is separate")
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("TFSET_STORE", "memory")
		_, err := runCLI(t, "set", "color", "red")
		require.NoError(t, err)

		out, err := runCLI(t, "get", "color")
		require.NoError(t, err)
		assert.Equal(t, "blue\n", out)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := runCLI(t, "get", "color", "--store", "floppy")
		assert.ErrorContains(t, err, "must be one of")
	})

	t.Run("postgres_needs_dsn", func(t *testing.T) {
		_, err := runCLI(t, "get", "color", "--store", "postgres")
		assert.ErrorContains(t, err, "--dsn is required")
	})

	t.Run("s3_needs_bucket", func(t *testing.T) {
		_, err := runCLI(t, "get", "color", "--store", "s3")
		assert.ErrorContains(t, err, "--bucket is required")
	})
}

func TestDefaultsFlag(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "get", "test.key", "--defaults", filepath.Join("..", "config", "testdata", "defaults.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "value\n", out)

	_, err = runCLI(t, "get", "color", "-d", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to load defaults")
}

func TestWatch(t *testing.T) {
	cfgFile, settingsFile := setupCLI(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		tick := time.NewTicker(100 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case <-tick.C:
				_ = replaceConfig(cfgFile, settingsFile, "green")
			}
		}
	}()

	out, err := runCLIContext(t, ctx, "watch", "color", "--count", "1", "--debounce", "20ms")
	close(done)
	require.NoError(t, err)
	assert.Contains(t, out, "green\n")
	assert.NoError(t, ctx.Err(), "stopped by --count, not the timeout")
}

func TestCompletion(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "complete -F _tfset tfset")

	out, err = runCLI(t, "completion", "zsh")
	require.NoError(t, err)
	assert.Contains(t, out, "#compdef tfset")

	t.Setenv("SHELL", "/bin/fish")
	_, err = runCLI(t, "completion")
	assert.ErrorContains(t, err, "usage: tfset completion")
}
