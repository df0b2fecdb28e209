// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"

	"github.com/tfctl/tfset/internal/config"
)

// Meta contains runtime metadata shared by commands. It carries CLI arguments,
// the loaded tool configuration, context, the namespace (the subcommand name
// used to prefer namespaced config keys) and the starting working directory.
type Meta struct {
	Args        []string
	Config      *config.Type
	Context     context.Context
	Namespace   string
	StartingDir string
}
