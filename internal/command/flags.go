// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfset/internal/cache"
	"github.com/tfctl/tfset/internal/output"
	"github.com/tfctl/tfset/internal/store/postgres"
)

// Store kinds accepted by --store.
const (
	StoreFile     = "file"
	StoreBadger   = "badger"
	StorePostgres = "postgres"
	StoreS3       = "s3"
	StoreMemory   = "memory"
)

// StoreKinds lists the valid --store values.
var StoreKinds = []string{StoreFile, StoreBadger, StorePostgres, StoreS3, StoreMemory}

// NewGlobalFlags returns the flags every settings subcommand accepts. ns is the
// subcommand name and path the tool config file. Values come from the command
// line, then the environment, then ns.<key> and <key> in the config file.
func NewGlobalFlags(ns string, path string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "store",
			Aliases: []string{"s"},
			Usage:   "settings store backend",
			Value:   StoreFile,
			Sources: configSources(ns, path, []string{"TFSET_STORE"}, "store.kind"),
			Validator: func(value string) error {
				return FlagValidators(value, StoreValidator)
			},
		},
		&cli.StringFlag{
			Name:    "store-path",
			Usage:   "settings file (file) or database directory (badger)",
			Sources: configSources(ns, path, []string{"TFSET_STORE_PATH"}, "store.path"),
		},
		&cli.StringFlag{
			Name:    "dsn",
			Usage:   "postgres connection string",
			Sources: configSources(ns, path, []string{"TFSET_DSN", "DATABASE_URL"}, "store.dsn"),
		},
		&cli.StringFlag{
			Name:    "table",
			Usage:   "postgres settings table",
			Value:   postgres.DefaultTable,
			Sources: configSources(ns, path, []string{"TFSET_TABLE"}, "store.table"),
		},
		&cli.StringFlag{
			Name:    "bucket",
			Usage:   "s3 bucket holding the settings",
			Sources: configSources(ns, path, []string{"TFSET_BUCKET"}, "store.bucket"),
		},
		&cli.StringFlag{
			Name:    "prefix",
			Usage:   "s3 key prefix",
			Sources: configSources(ns, path, []string{"TFSET_PREFIX"}, "store.prefix"),
		},
		&cli.StringFlag{
			Name:    "region",
			Usage:   "aws region",
			Sources: configSources(ns, path, []string{"TFSET_REGION", "AWS_REGION"}, "store.region"),
		},
		&cli.StringFlag{
			Name:    "profile",
			Usage:   "aws shared config profile",
			Sources: configSources(ns, path, []string{"TFSET_PROFILE", "AWS_PROFILE"}, "store.profile"),
		},
		&cli.StringFlag{
			Name:    "endpoint",
			Usage:   "s3 compatible endpoint url",
			Sources: configSources(ns, path, []string{"TFSET_ENDPOINT"}, "store.endpoint"),
		},
		&cli.BoolFlag{
			Name:    "path-style",
			Usage:   "use path style s3 addressing",
			Sources: configSources(ns, path, []string{"TFSET_PATH_STYLE"}, "store.path_style"),
		},
		&cli.StringFlag{
			Name:    "defaults",
			Aliases: []string{"d"},
			Usage:   "defaults file (yaml, json or hcl). Overrides the config defaults",
			Sources: configSources(ns, path, []string{"TFSET_DEFAULTS"}, "defaults_file"),
		},
		&cli.StringFlag{
			Name:    "cache",
			Aliases: []string{"c"},
			Usage:   "cache layer",
			Value:   cache.KindMemory,
			Sources: configSources(ns, path, []string{"TFSET_CACHE_KIND"}, "cache.kind"),
			Validator: func(value string) error {
				return FlagValidators(value, CacheValidator)
			},
		},
		&cli.DurationFlag{
			Name:    "cache-ttl",
			Usage:   "memory cache entry lifetime, 0 for none",
			Sources: configSources(ns, path, []string{"TFSET_CACHE_TTL"}, "cache.ttl"),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Value:   output.FormatText,
			Sources: configSources(ns, path, nil, "output"),
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.BoolFlag{
			Name:  "color",
			Usage: "enable colored output",
			Value: false,
		},
		&cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with table output",
			Value:   false,
		},
		&cli.IntFlag{
			Name:    "padding",
			Usage:   "table cell padding",
			Value:   1,
			Sources: configSources(ns, path, nil, "padding"),
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of path/value filters to apply to the output",
		},
		&cli.StringFlag{
			Name:  "sort",
			Usage: "comma-separated list of path/value to sort rows by",
		},
	}

	return
}

// configSources builds a source chain from env vars followed by the namespaced
// and global config file keys.
func configSources(ns string, path string, envs []string, key string) cli.ValueSourceChain {
	chain := cli.EnvVars(envs...)
	if path == "" {
		return chain
	}
	return NameSpacedValueChainFromConfigFile(ns, path, key, chain)
}

// NameSpacedValueChainFromConfigFile adds namespaced and global config file
// sources for key to the given chain.
func NameSpacedValueChainFromConfigFile(ns string, path string, key string, chain cli.ValueSourceChain) cli.ValueSourceChain {
	if ns != "" {
		chain.Chain = append(chain.Chain, yaml.YAML(ns+"."+key, altsrc.StringSourcer(path)))
	}
	chain.Chain = append(chain.Chain, yaml.YAML(key, altsrc.StringSourcer(path)))

	return chain
}
