// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfset/internal/cacheutil"
	"github.com/tfctl/tfset/internal/meta"
	"github.com/tfctl/tfset/internal/output"
)

// defaultCleanHours is used when the config has no cache.clean entry.
const defaultCleanHours = 24

func cacheStatsCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, err := cacheutil.Collect()
	if err != nil {
		return err
	}

	w := Writer(cmd)
	if f := cmd.String("output"); f != output.FormatText {
		return output.Render(w, f, map[string]any{
			"base":    s.Base,
			"tags":    s.Tags,
			"entries": s.Entries,
			"bytes":   s.Bytes,
			"oldest":  timestamp(s.Oldest),
			"newest":  timestamp(s.Newest),
		}, RenderOptions(cmd, ""))
	}

	fmt.Fprintf(w, "base:    %s\n", s.Base)
	fmt.Fprintf(w, "enabled: %t\n", cacheutil.Enabled())
	fmt.Fprintf(w, "tags:    %d\n", s.Tags)
	fmt.Fprintf(w, "entries: %s\n", humanize.Comma(int64(s.Entries)))
	fmt.Fprintf(w, "size:    %s\n", humanize.Bytes(uint64(s.Bytes))) //nolint:gosec
	if s.Entries > 0 {
		fmt.Fprintf(w, "oldest:  %s\n", humanize.Time(s.Oldest))
		fmt.Fprintf(w, "newest:  %s\n", humanize.Time(s.Newest))
	}
	return nil
}

func cachePurgeCommandAction(ctx context.Context, cmd *cli.Command) error {
	hours := cmd.Int("hours")
	if !cmd.IsSet("hours") {
		hours, _ = GetMeta(cmd).Config.GetInt("cache.clean", defaultCleanHours)
	}

	removed, err := cacheutil.Purge(hours)
	if err != nil {
		return err
	}

	fmt.Fprintf(Writer(cmd), "removed %s %s older than %d hours\n",
		humanize.Comma(int64(removed)), plural(removed, "entry", "entries"), hours)
	return nil
}

func cacheCommandBuilder(meta meta.Meta) *cli.Command {
	outputFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Value:   output.FormatText,
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		}
	}

	return &cli.Command{
		Name:      "cache",
		Usage:     "inspect or clean the file cache",
		UsageText: "tfset cache stats|purge [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "summarize the file cache",
				Flags:  []cli.Flag{outputFlag()},
				Action: cacheStatsCommandAction,
				Metadata: map[string]any{
					"meta": meta,
				},
			},
			{
				Name:  "purge",
				Usage: "remove cache entries older than --hours",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "hours",
						Usage: "age in hours, 0 disables (default: cache.clean or 24)",
					},
				},
				Action: cachePurgeCommandAction,
				Metadata: map[string]any{
					"meta": meta,
				},
			},
		},
	}
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
