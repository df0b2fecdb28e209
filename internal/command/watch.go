// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfset/internal/log"
	"github.com/tfctl/tfset/internal/meta"
	"github.com/tfctl/tfset/internal/watcher"
)

// watchCommandAction prints the value at PATH, then prints it again every time
// the defaults file or the settings file changes. It runs until interrupted
// or, with --count, until that many changes have been reported.
func watchCommandAction(ctx context.Context, cmd *cli.Command) error {
	return NewActionRunner("watch", 1, 1, func(ctx context.Context, cmd *cli.Command, s *Session) error {
		path := cmd.Args().Get(0)

		files := []string{s.Defaults.Source()}
		if kind := strings.ToLower(cmd.String("store")); kind == StoreFile || kind == "" {
			p, err := StorePath(cmd)
			if err != nil {
				return err
			}
			files = append(files, p)
		}

		w, err := watcher.New(files, cmd.Duration("debounce"))
		if err != nil {
			if errors.Is(err, watcher.ErrNothingToWatch) {
				return errors.New("watch: there is no defaults or settings file to watch")
			}
			return err
		}
		defer w.Close() //nolint:errcheck
		log.Debugf("watch: path=%s, files=%v", path, w.Files())

		show := func() error {
			v, err := s.Engine.Get(ctx, path)
			if err != nil {
				return err
			}
			return Emit(cmd, path, v)
		}
		if err := show(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		limit := cmd.Int("count")
		seen := 0
		var showErr error
		err = w.Run(ctx, func(changed []string) {
			log.Debugf("watch: changed=%v", changed)
			if err := s.Defaults.Reload(); err != nil {
				log.WithError(err).Warnf("failed to reload defaults")
				return
			}
			if err := s.Engine.Flush(); err != nil {
				log.WithError(err).Warnf("failed to flush cache")
			}
			if showErr = show(); showErr != nil {
				stop()
				return
			}
			seen++
			if limit > 0 && seen >= limit {
				stop()
			}
		})
		if err != nil {
			return err
		}
		return showErr
	}).Run(ctx, cmd)
}

func watchCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "watch",
		Usage:     "print a value whenever its files change",
		UsageText: "tfset watch PATH [options]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "count",
				Usage: "stop after this many changes, 0 for no limit",
			},
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "quiet period before a batch of changes is reported",
				Value: watcher.DefaultDebounce,
			},
		},
		Action: watchCommandAction,
		Meta:   meta,
	}).Build()
}
