// Package cli assembles the gitlab-cloner command hierarchy, wiring
// configuration loading, structured logging, and token resolution around the
// projects, clone, and tui subcommands.
package cli
