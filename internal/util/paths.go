// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package util

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a user supplied file path. A leading ~ is replaced with
// the home directory and relative paths are made absolute against the CWD.
// The empty string is returned unchanged.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		path = abs
	}

	return filepath.Clean(path), nil
}

// DataDir returns the directory tfset keeps its own files in. TFSET_DATA_DIR
// overrides the OS user config directory.
func DataDir() (string, error) {
	if dir := os.Getenv("TFSET_DATA_DIR"); dir != "" {
		return ExpandPath(dir)
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tfset"), nil
}
