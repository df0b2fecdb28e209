// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config provides loading and typed accessors for tfset's own
// configuration, and the read-only defaults layer consulted by the settings
// engine.
//
// The configuration is a YAML document located in the user's configuration
// directory, typically:
//   - Linux/macOS: $XDG_CONFIG_HOME/tfset.yaml or $HOME/.config/tfset.yaml
//   - Windows: %APPDATA%/tfset/tfset.yaml
//
// Its "defaults" subtree holds default setting values. A standalone defaults
// file in YAML, JSON or HCL may be used instead.
package config
