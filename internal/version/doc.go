// Package version exposes build metadata for the wake-up alarm binaries.
//
// Version, Commit and BuildTime are injected with -ldflags -X at build time.
// Every binary gets a `version` subcommand and logs Fields on startup.
package version
