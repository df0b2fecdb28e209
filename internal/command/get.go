// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfset/internal/meta"
)

// getCommandAction prints the effective value at PATH. --default is printed
// when neither layer has the path.
func getCommandAction(ctx context.Context, cmd *cli.Command) error {
	return NewActionRunner("get", 1, 1, func(ctx context.Context, cmd *cli.Command, s *Session) error {
		path := cmd.Args().Get(0)

		var def []any
		if cmd.IsSet("default") {
			def = append(def, cmd.String("default"))
		}

		v, err := s.Engine.Get(ctx, path, def...)
		if err != nil {
			return err
		}
		return Emit(cmd, path, v)
	}).Run(ctx, cmd)
}

func getCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "get",
		Usage:     "print the effective value at a path",
		UsageText: "tfset get PATH [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "default",
				Usage: "value to print when the path is not set anywhere",
			},
		},
		Action: getCommandAction,
		Meta:   meta,
	}).Build()
}
