// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfset/internal/differ"
	"github.com/tfctl/tfset/internal/meta"
)

// diffCommandAction shows how the effective value at PATH (the root when
// omitted) departs from its default.
func diffCommandAction(ctx context.Context, cmd *cli.Command) error {
	return NewActionRunner("diff", 0, 1, func(ctx context.Context, cmd *cli.Command, s *Session) error {
		path := cmd.Args().Get(0)

		defaults, _ := s.Defaults.Get(path)
		effective, err := s.Engine.Get(ctx, path)
		if err != nil {
			return err
		}

		changed, err := differ.Diff(Writer(cmd), path, defaults, effective, cmd.Bool("color"))
		if err != nil {
			return err
		}
		if changed && cmd.Bool("exit-code") {
			return cli.Exit("", 1)
		}
		return nil
	}).Run(ctx, cmd)
}

func diffCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "diff",
		Usage:     "compare the effective settings with their defaults",
		UsageText: "tfset diff [PATH] [options]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "exit-code",
				Usage: "exit status 1 when there are differences",
			},
		},
		Action: diffCommandAction,
		Meta:   meta,
	}).Build()
}
