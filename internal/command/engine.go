// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfset/internal/aws"
	"github.com/tfctl/tfset/internal/cache"
	"github.com/tfctl/tfset/internal/config"
	"github.com/tfctl/tfset/internal/log"
	"github.com/tfctl/tfset/internal/settings"
	"github.com/tfctl/tfset/internal/store"
	"github.com/tfctl/tfset/internal/store/badger"
	"github.com/tfctl/tfset/internal/store/postgres"
	s3store "github.com/tfctl/tfset/internal/store/s3"
	"github.com/tfctl/tfset/internal/store/yamlfile"
	"github.com/tfctl/tfset/internal/util"
)

// OpenEngine builds the settings engine described by the command's flags. The
// defaults layer is returned as well so callers can reload or diff against it.
func OpenEngine(ctx context.Context, cmd *cli.Command) (*settings.Engine, *config.Defaults, error) {
	defaults, err := openDefaults(cmd)
	if err != nil {
		return nil, nil, err
	}

	st, err := openStore(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}

	layer, err := openCache(cmd)
	if err != nil {
		closeStore(st)
		return nil, nil, err
	}

	return settings.New(st, defaults, layer), defaults, nil
}

// openDefaults loads --defaults when given, otherwise the defaults subtree of
// the tool config.
func openDefaults(cmd *cli.Command) (*config.Defaults, error) {
	if p := cmd.String("defaults"); p != "" {
		path, err := util.ExpandPath(p)
		if err != nil {
			return nil, err
		}
		d, err := config.LoadDefaults(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load defaults: %w", err)
		}
		return d, nil
	}

	return GetMeta(cmd).Config.Defaults(), nil
}

func openStore(ctx context.Context, cmd *cli.Command) (store.Store, error) {
	kind := strings.ToLower(cmd.String("store"))
	log.Debugf("opening store: kind=%s", kind)

	switch kind {
	case StoreMemory:
		return store.NewMemory(), nil

	case StoreFile, "":
		path, err := StorePath(cmd)
		if err != nil {
			return nil, err
		}
		return yamlfile.New(path), nil

	case StoreBadger:
		path, err := StorePath(cmd)
		if err != nil {
			return nil, err
		}
		db, err := badger.Open(badger.Config{Path: path})
		if err != nil {
			return nil, err
		}
		return db, nil

	case StorePostgres:
		db, err := postgres.Open(ctx, cmd.String("dsn"), cmd.String("table"))
		if err != nil {
			return nil, err
		}
		return db, nil

	case StoreS3:
		client, err := aws.NewS3(ctx,
			aws.WithProfile(cmd.String("profile")),
			aws.WithRegion(cmd.String("region")),
			aws.WithEndpoint(cmd.String("endpoint")),
			aws.WithPathStyle(cmd.Bool("path-style")),
		)
		if err != nil {
			return nil, err
		}
		return s3store.New(client, cmd.String("bucket"), cmd.String("prefix")), nil

	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}

// StorePath resolves --store-path, falling back to a per-kind location in the
// tfset data directory. Only the file and badger stores have a path.
func StorePath(cmd *cli.Command) (string, error) {
	if p := cmd.String("store-path"); p != "" {
		return util.ExpandPath(p)
	}

	dir, err := util.DataDir()
	if err != nil {
		return "", err
	}

	switch strings.ToLower(cmd.String("store")) {
	case StoreBadger:
		return filepath.Join(dir, "badger"), nil
	case StoreFile, "":
		return filepath.Join(dir, "settings.yaml"), nil
	default:
		return "", nil
	}
}

func openCache(cmd *cli.Command) (cache.Layer, error) {
	kind := strings.ToLower(cmd.String("cache"))
	if kind == cache.KindMemory {
		return cache.NewMemory(cmd.Duration("cache-ttl")).Tag(settings.CacheTag), nil
	}
	return cache.New(kind, settings.CacheTag)
}

func closeStore(st store.Store) {
	if c, ok := st.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			log.WithError(err).Warnf("failed to close store")
		}
	}
}
