// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfset/internal/cache"
	"github.com/tfctl/tfset/internal/output"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// GlobalFlagsValidator checks the combinations the individual validators
// cannot see.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	switch c.String("store") {
	case StorePostgres:
		if c.String("dsn") == "" {
			return fmt.Errorf("--dsn is required with --store %s", StorePostgres)
		}
	case StoreS3:
		if c.String("bucket") == "" {
			return fmt.Errorf("--bucket is required with --store %s", StoreS3)
		}
	}
	return nil
}

func OutputValidator(value any) error {
	return oneOf(value, output.Formats)
}

func StoreValidator(value any) error {
	return oneOf(value, StoreKinds)
}

func CacheValidator(value any) error {
	return oneOf(value, cache.Kinds)
}

func oneOf(value any, valid []string) error {
	s, _ := value.(string)
	if !slices.Contains(valid, strings.ToLower(s)) {
		return fmt.Errorf("must be one of %v", valid)
	}
	return nil
}
