// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfset/internal/cacheutil"
	"github.com/tfctl/tfset/internal/command"
	"github.com/tfctl/tfset/internal/config"
	"github.com/tfctl/tfset/internal/log"
	"github.com/tfctl/tfset/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

// handleVersion checks for --version/-v and returns whether it was handled.
func handleVersion(args []string) bool {
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.String())
			return true
		}
	}
	return false
}

// handleNakedCommand appends --help if no command is provided.
func handleNakedCommand(args []string) []string {
	if len(args) <= 1 {
		return append(args, "--help")
	}
	return args
}

// processCommandArgs handles command-specific argument processing.
func processCommandArgs(args []string) []string {
	switch {
	case len(args) > 1 && args[1] == "completion":
		// Short-circuit completion: pass args directly.
		return args
	default:
		cfg, _ := config.Load()
		args = processSetOnly(args, cfg)
		log.Debugf("args after set processing: args=%v", args)

		args = deduplicateFlags(args)
		log.Debugf("args after dedup: args=%v", args)
		return args
	}
}

// initAndRunApp initializes the app and runs it, returning the exit code.
func initAndRunApp(args []string) int {
	// Pre-create cache directory when caching is enabled.
	if _, ok, err := cacheutil.EnsureBaseDir(); err != nil && ok {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("cache ensure err: err=%v", err)
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app init err: err=%v", err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		return exitCode(err)
	}

	return 0
}

// exitCode reports err and maps it to a process exit status. Errors carrying
// their own code (has --quiet, diff --exit-code) keep it.
func exitCode(err error) int {
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		if msg := ec.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		return ec.ExitCode()
	}

	fmt.Fprintln(os.Stderr, err)
	log.Debugf("app run err: err=%v", err)
	return 2
}

func realMain() int {
	log.InitLogger()

	args := os.Args
	log.Debugf("args captured: args=%v", args)

	if handleVersion(args) {
		return 0
	}

	args = handleNakedCommand(args)

	// If --help appears anywhere, skip command processing and let the CLI handle it.
	helpFound := false
	for _, a := range args {
		if a == "--help" || a == "-h" {
			helpFound = true
			break
		}
	}

	if !helpFound {
		args = processCommandArgs(args)
	}

	return initAndRunApp(args)
}

// processSetOnly expands an @set argument into the flags listed under
// <command>.<set> in the config file. An @word with no matching set is left
// alone, so values may still start with @.
func processSetOnly(args []string, cfg *config.Type) []string {
	if len(args) < 3 { //nolint:mnd
		return args
	}

	for i := 2; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "@") || len(a) == 1 {
			continue
		}

		entries, err := cfg.GetStringSlice(args[1] + "." + a[1:])
		if err != nil {
			log.Debugf("no set for %s: %v", a, err)
			continue
		}

		rest := append(append([]string{}, args[:i]...), args[i+1:]...)
		return injectConfigSet(rest, entries, i)
	}
	return args
}

// injectConfigSet splits each entry on whitespace and inserts the fields at
// insertIdx.
func injectConfigSet(args []string, entries []string, insertIdx int) []string {
	if len(entries) == 0 {
		return args
	}

	var expanded []string
	for _, entry := range entries {
		expanded = append(expanded, strings.Fields(entry)...)
	}

	out := make([]string, 0, len(args)+len(expanded))
	out = append(out, args[:insertIdx]...)
	out = append(out, expanded...)
	return append(out, args[insertIdx:]...)
}

// deduplicateFlags drops all but the last occurrence of each flag after the
// subcommand, so a flag from an @set can be overridden on the command line. A
// flag without "=" owns the following token when that token is not a flag.
func deduplicateFlags(args []string) []string {
	if len(args) <= 2 { //nolint:mnd
		return args
	}

	type group struct {
		name   string
		tokens []string
	}

	var groups []group
	for i := 2; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			groups = append(groups, group{tokens: args[i:]})
			break
		}
		if !strings.HasPrefix(a, "-") || a == "-" {
			groups = append(groups, group{tokens: []string{a}})
			continue
		}

		name := strings.TrimLeft(a, "-")
		g := group{tokens: []string{a}}
		if eq := strings.Index(name, "="); eq >= 0 {
			name = name[:eq]
		} else if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			g.tokens = append(g.tokens, args[i+1])
			i++
		}
		g.name = name
		groups = append(groups, g)
	}

	last := map[string]int{}
	for i, g := range groups {
		if g.name != "" {
			last[g.name] = i
		}
	}

	out := append([]string{}, args[:2]...)
	for i, g := range groups {
		if g.name != "" && last[g.name] != i {
			continue
		}
		out = append(out, g.tokens...)
	}
	return out
}
