// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfset/internal/config"
	"github.com/tfctl/tfset/internal/log"
	"github.com/tfctl/tfset/internal/settings"
)

// Session is what an action works against: an open engine and the defaults
// layer behind it.
type Session struct {
	Engine   *settings.Engine
	Defaults *config.Defaults
}

// ActionRunner encapsulates the common settings action pattern. It checks the
// positional argument count, opens the engine, runs Fn and closes the engine
// again.
type ActionRunner struct {
	CommandName string
	MinArgs     int
	MaxArgs     int
	Fn          func(context.Context, *cli.Command, *Session) error
}

// Run executes the action with the provided context and command.
func (ar *ActionRunner) Run(ctx context.Context, cmd *cli.Command) (err error) {
	log.Debugf("Executing action for %s: args=%v", ar.CommandName, cmd.Args().Slice())

	if n := cmd.NArg(); n < ar.MinArgs || n > ar.MaxArgs {
		return fmt.Errorf("%s: expected %s, got %d", ar.CommandName, argCount(ar.MinArgs, ar.MaxArgs), n)
	}

	eng, defaults, err := OpenEngine(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := eng.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return ar.Fn(ctx, cmd, &Session{Engine: eng, Defaults: defaults})
}

// NewActionRunner creates an ActionRunner for a command taking between min
// and max positional arguments.
func NewActionRunner(
	commandName string,
	minArgs, maxArgs int,
	fn func(context.Context, *cli.Command, *Session) error,
) *ActionRunner {
	return &ActionRunner{
		CommandName: commandName,
		MinArgs:     minArgs,
		MaxArgs:     maxArgs,
		Fn:          fn,
	}
}

func argCount(lo, hi int) string {
	switch {
	case lo == hi && lo == 1:
		return "1 argument"
	case lo == hi:
		return fmt.Sprintf("%d arguments", lo)
	default:
		return fmt.Sprintf("%d to %d arguments", lo, hi)
	}
}
