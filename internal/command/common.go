// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfset/internal/meta"
	"github.com/tfctl/tfset/internal/output"
)

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// Writer is where command output goes. Tests swap the root Writer.
func Writer(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

// RenderOptions gathers the output flags plus the table palette from the
// config file.
func RenderOptions(cmd *cli.Command, prefix string) output.Options {
	cfg := GetMeta(cmd).Config

	var colors output.Colors
	if cfg != nil {
		colors.Title, _ = cfg.GetString("colors.title", "")
		colors.Even, _ = cfg.GetString("colors.even", "")
		colors.Odd, _ = cfg.GetString("colors.odd", "")
	}

	return output.Options{
		Color:   cmd.Bool("color"),
		Titles:  cmd.Bool("titles"),
		Padding: cmd.Int("padding"),
		Sort:    cmd.String("sort"),
		Filter:  cmd.String("filter"),
		Prefix:  prefix,
		Colors:  colors,
	}
}

// Emit renders v, the value found at path, in the --output format.
func Emit(cmd *cli.Command, path string, v any) error {
	return output.Render(Writer(cmd), cmd.String("output"), v, RenderOptions(cmd, path))
}
