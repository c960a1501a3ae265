// Package main is the entry point for the condense CLI tool.
package main

import (
	"os"

	"github.com/condense-dev/condense/internal/buildinfo"
	"github.com/condense-dev/condense/internal/cli"
)

// Build-time metadata injected via ldflags, copied into internal/buildinfo
// before the command tree runs so every subcommand sees the same values.
//
//	go build -ldflags "-X main.version=... -X main.commit=... -X main.date=..."
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	buildinfo.Version = version
	buildinfo.Commit = commit
	buildinfo.Date = date

	os.Exit(cli.Execute())
}
