// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfset/internal/meta"
)

func allCommandAction(ctx context.Context, cmd *cli.Command) error {
	return NewActionRunner("all", 0, 0, func(ctx context.Context, cmd *cli.Command, s *Session) error {
		root, err := s.Engine.All(ctx)
		if err != nil {
			return err
		}
		return Emit(cmd, "", root)
	}).Run(ctx, cmd)
}

func allCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "all",
		Usage:     "print every effective setting",
		UsageText: "tfset all [options]",
		Action:    allCommandAction,
		Meta:      meta,
	}).Build()
}

func flushCommandAction(ctx context.Context, cmd *cli.Command) error {
	return NewActionRunner("flush", 0, 0, func(_ context.Context, _ *cli.Command, s *Session) error {
		return s.Engine.Flush()
	}).Run(ctx, cmd)
}

func flushCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "flush",
		Usage:     "drop every cached settings value",
		UsageText: "tfset flush [options]",
		Action:    flushCommandAction,
		Meta:      meta,
	}).Build()
}
