// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Do not import any other tfset packages to avoid import cycles.

package version

import (
	"runtime/debug"
)

// Version is the module version, or "dev" for local builds.
var Version = func() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}()

// Commit is the short VCS revision recorded at build time, if any.
var Commit = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 { //nolint:mnd
			return s.Value[:7]
		}
	}
	return ""
}()

// String is what `tfset --version` prints.
func String() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
