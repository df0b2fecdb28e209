// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfset/internal/keypath"
	"github.com/tfctl/tfset/internal/meta"
)

// forgetCommandAction removes PATH from the settings layer. Defaults are
// untouched, so a forgotten path falls back to its default.
func forgetCommandAction(ctx context.Context, cmd *cli.Command) error {
	return NewActionRunner("forget", 0, 1, func(ctx context.Context, cmd *cli.Command, s *Session) error {
		path := cmd.Args().Get(0)
		all := cmd.Bool("all")

		switch {
		case all && path != "":
			return errors.New("forget: PATH and --all are mutually exclusive")
		case !all && len(keypath.Split(path)) == 0:
			return errors.New("forget: PATH or --all is required")
		}

		return s.Engine.Forget(ctx, path)
	}).Run(ctx, cmd)
}

func forgetCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "forget",
		Usage:     "remove a path from the settings",
		UsageText: "tfset forget PATH|--all [options]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "remove every setting",
			},
		},
		Action: forgetCommandAction,
		Meta:   meta,
	}).Build()
}
