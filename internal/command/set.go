// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/tfctl/tfset/internal/hclexpr"
	"github.com/tfctl/tfset/internal/log"
	"github.com/tfctl/tfset/internal/meta"
)

// setCommandAction stores VALUE at PATH. VALUE is a plain string unless --expr
// or --yaml says how to decode it.
func setCommandAction(ctx context.Context, cmd *cli.Command) error {
	return NewActionRunner("set", 2, 2, func(ctx context.Context, cmd *cli.Command, s *Session) error {
		path := cmd.Args().Get(0)

		value, err := ParseValue(cmd.Args().Get(1), cmd.Bool("expr"), cmd.Bool("yaml"))
		if err != nil {
			return err
		}
		log.Debugf("set: path=%s, value=%#v", path, value)

		return s.Engine.Set(ctx, path, value)
	}).Run(ctx, cmd)
}

// ParseValue decodes a command line value. expr evaluates it as an HCL
// expression and asYAML as a YAML document. Otherwise it is kept as a string.
func ParseValue(raw string, expr, asYAML bool) (any, error) {
	switch {
	case expr && asYAML:
		return nil, errors.New("--expr and --yaml are mutually exclusive")
	case expr:
		return hclexpr.Eval(raw)
	case asYAML:
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("failed to parse yaml value: %w", err)
		}
		return v, nil
	default:
		return raw, nil
	}
}

func setCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "set",
		Usage:     "store a value at a path",
		UsageText: "tfset set PATH VALUE [options]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "expr",
				Aliases: []string{"e"},
				Usage:   "evaluate VALUE as an HCL expression",
			},
			&cli.BoolFlag{
				Name:    "yaml",
				Aliases: []string{"y"},
				Usage:   "parse VALUE as YAML",
			},
		},
		Action: setCommandAction,
		Meta:   meta,
	}).Build()
}
