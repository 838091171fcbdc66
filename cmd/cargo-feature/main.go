// Package main is the entry point for the cargo-feature binary.
//
// cargo runs it as `cargo feature <crate> [features...]`. All functionality
// lives in internal/cli.
//
// Build-time variables (version, commit, date) are injected via ldflags,
// e.g. -ldflags "-X main.version=0.6.0".
package main

import (
	"github.com/mmr-tortoise/cargo-feature/internal/cli"
)

// version, commit, and date are overridden at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	cli.Execute(cli.NewRootCommand())
}
