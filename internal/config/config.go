// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tfctl/tfset/internal/keypath"
	"github.com/tfctl/tfset/internal/log"
	"github.com/tfctl/tfset/internal/tree"
)

// DefaultsKey is the subtree of the configuration holding default settings.
const DefaultsKey = "defaults"

// ErrNotFound is returned by Load when there is no config file to read.
var ErrNotFound = errors.New("config file not found")

// Type is the in-memory representation of the loaded configuration.
//
// Fields:
//   - Source: absolute path of the YAML file loaded.
//   - Namespace: optional dot-prefixed keyspace used to prefer namespaced
//     lookups (e.g. "store.path" under namespace "watch").
//   - Data: raw key/value tree unmarshaled from YAML.
type Type struct {
	Source    string
	Namespace string
	Data      map[string]interface{}
}

// Load reads the YAML configuration file. When cfgFilePath is given it is used
// as is, otherwise the file is located with getConfigFile.
//
// Returns the loaded Type or an error if the file could not be located or
// parsed. The returned Type is always usable, even on error.
func Load(cfgFilePath ...string) (*Type, error) {
	var path string
	var err error
	if len(cfgFilePath) > 0 && cfgFilePath[0] != "" {
		path = cfgFilePath[0]
	} else if path, err = getConfigFile(); err != nil {
		return &Type{}, err
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return &Type{}, err
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(bytes, &data); err != nil {
		return &Type{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &Type{
		Source: path,
		Data:   data}, nil
}

// Defaults returns the defaults layer held under DefaultsKey.
func (cfg *Type) Defaults() *Defaults {
	d := NewDefaults(nil)
	if cfg == nil {
		return d
	}
	if sub, ok := cfg.Data[DefaultsKey].(map[string]interface{}); ok {
		d.replace(sub)
	}
	d.source = cfg.Source
	d.subtree = DefaultsKey
	return d
}

// GetInt returns the integer value for the given dotted key path. A single
// defaultValue may be provided and is returned when the key is missing.
// YAML numbers may decode as int, int64, or float64; common cases are handled.
func (cfg *Type) GetInt(key string, defaultValue ...int) (int, error) {
	val, err := cfg.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return 0, err
	}

	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, errors.New("value is not an int")
	}
}

// GetString returns the string value for the given dotted key path. If the key
// is not found and a single defaultValue is provided, the default is returned.
// Returns an error if the value exists but is not a string.
func (cfg *Type) GetString(key string, defaultValue ...string) (string, error) {
	val, err := cfg.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return "", err
	}

	s, ok := val.(string)
	if !ok {
		return "", errors.New("value is not a string")
	}

	return s, nil
}

// GetDuration returns a duration for the given dotted key path. Strings are
// parsed with time.ParseDuration and bare numbers are read as seconds.
func (cfg *Type) GetDuration(key string, defaultValue ...time.Duration) (time.Duration, error) {
	val, err := cfg.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return 0, err
	}

	switch v := val.(type) {
	case string:
		return time.ParseDuration(v)
	case int:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	default:
		return 0, errors.New("value is not a duration")
	}
}

// GetStringSlice returns the string slice value for the given dotted key path.
// If the key is not found and a single default slice is provided, that default
// is returned. Returns an error if the value exists but is not a string slice.
func (cfg *Type) GetStringSlice(key string, defaultValue ...[]string) ([]string, error) {
	val, err := cfg.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return nil, err
	}

	switch v := val.(type) {
	case []string:
		return v, nil
	case []interface{}:
		result := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.New("slice element is not a string")
			}
			result[i] = s
		}
		return result, nil
	default:
		return nil, errors.New("value is not a slice")
	}
}

// get traverses the configuration tree using a dotted key path (e.g.
// "store.path"). If Namespace is set, a namespaced candidate key is attempted
// first (Namespace + "." + kspec), then the unnamespaced key.
func (cfg *Type) get(kspec string) (any, error) {
	if cfg == nil || len(cfg.Data) == 0 {
		return nil, fmt.Errorf("no configuration loaded")
	}

	candidateKeys := []string{kspec}
	if cfg.Namespace != "" {
		candidateKeys = []string{cfg.Namespace + "." + kspec, kspec}
	}

	root := tree.Node(cfg.Data)
	for _, key := range candidateKeys {
		if v, ok := tree.Lookup(root, keypath.Split(key)); ok {
			return v, nil
		}
	}

	return nil, fmt.Errorf("no valid path found among: %v", candidateKeys)
}

// getConfigFile returns the absolute path to the YAML config file. If the
// TFSET_CFG_FILE environment variable is set, it is treated as the full path to
// the config file. Otherwise, the OS-specific user configuration directory
// returned by os.UserConfigDir is used with the filename "tfset.yaml". The file
// must exist and not be a directory.
func getConfigFile() (string, error) {
	if cfgPath := os.Getenv("TFSET_CFG_FILE"); cfgPath != "" {
		if fileInfo, err := os.Stat(cfgPath); err == nil {
			if !fileInfo.IsDir() {
				log.Debugf("using config file from TFSET_CFG_FILE: %s", cfgPath)
				return cfgPath, nil
			}
			return "", fmt.Errorf("TFSET_CFG_FILE points to a directory: %s", cfgPath)
		}
		return "", fmt.Errorf("%w at TFSET_CFG_FILE path: %s", ErrNotFound, cfgPath)
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	file := filepath.Join(dir, "tfset.yaml")
	if fileInfo, err := os.Stat(file); err == nil {
		if !fileInfo.IsDir() {
			log.Debugf("using config file: %s", file)
			return file, nil
		}
	}

	return "", fmt.Errorf("%w in standard locations", ErrNotFound)
}

// ext returns the lower-cased extension of path without the dot.
func ext(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
