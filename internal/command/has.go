// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfset/internal/meta"
)

// hasCommandAction prints whether PATH is set in any layer. With --quiet it
// prints nothing and a missing path exits 1.
func hasCommandAction(ctx context.Context, cmd *cli.Command) error {
	return NewActionRunner("has", 1, 1, func(ctx context.Context, cmd *cli.Command, s *Session) error {
		ok, err := s.Engine.Has(ctx, cmd.Args().Get(0))
		if err != nil {
			return err
		}

		if cmd.Bool("quiet") {
			if !ok {
				return cli.Exit("", 1)
			}
			return nil
		}

		_, err = fmt.Fprintln(Writer(cmd), ok)
		return err
	}).Run(ctx, cmd)
}

func hasCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "has",
		Usage:     "report whether a path is set",
		UsageText: "tfset has PATH [options]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "no output, exit status 1 when the path is not set",
			},
		},
		Action: hasCommandAction,
		Meta:   meta,
	}).Build()
}
