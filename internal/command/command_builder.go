// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfset/internal/meta"
)

// CommandBuilder constructs a cli.Command for the settings subcommands (get,
// set, has, forget, all, flush, diff, watch) using a consistent pattern. The
// builder wires metadata, applies the global flags namespaced to the command
// and sets up validators.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (cb *CommandBuilder) Build() *cli.Command {
	var source string
	if cb.Meta.Config != nil {
		source = cb.Meta.Config.Source
	}

	return &cli.Command{
		Name:      cb.Name,
		Usage:     cb.Usage,
		UsageText: cb.UsageText,
		Metadata: map[string]any{
			"meta": cb.Meta,
		},
		Flags: append(cb.Flags, NewGlobalFlags(cb.Name, source)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: cb.Action,
	}
}
