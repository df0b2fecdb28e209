// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfset/internal/config"
	"github.com/tfctl/tfset/internal/log"
	"github.com/tfctl/tfset/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, _ := os.Getwd()

	// The arg[1] immediately following the binary (arg[0]) is the tfset
	// subcommand and also represents the namespace key to be used when retrieving
	// config values. arg[1] could be -h/--help, so ignore it if it appears to be
	// a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	// A missing config file is fine. A broken one is not.
	cfg, err := config.Load()
	if err != nil {
		if !errors.Is(err, config.ErrNotFound) {
			return nil, err
		}
		log.Debugf("no config file: %v", err)
	}
	cfg.Namespace = ns

	meta := meta.Meta{
		Args:        args,
		Config:      cfg,
		Context:     ctx,
		Namespace:   ns,
		StartingDir: sd,
	}

	app := &cli.Command{
		Name:   "tfset",
		Usage:  "hierarchical settings over defaults",
		Writer: os.Stdout,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "tfset version info",
				HideDefault: true,
			},
		},
		// Exit codes are mapped by the caller, never by os.Exit inside the app.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}

	app.Commands = append(app.Commands,
		getCommandBuilder(meta),
		setCommandBuilder(meta),
		hasCommandBuilder(meta),
		forgetCommandBuilder(meta),
		allCommandBuilder(meta),
		flushCommandBuilder(meta),
		diffCommandBuilder(meta),
		watchCommandBuilder(meta),
		cacheCommandBuilder(meta),
		completionCommandBuilder(meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
