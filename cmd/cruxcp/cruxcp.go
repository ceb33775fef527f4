package main

import (
	"log/slog"
	"os"

	"github.com/cruciblehq/cruxcp/internal"
	"github.com/cruciblehq/cruxcp/internal/cli"
	"github.com/cruciblehq/cruxcp/internal/logging"
)

// The entry point for cruxcp.
//
// Initializes logging, displays startup information, and executes the root
// command. If any error occurs during execution, it exits with a non-zero code.
func main() {
	slog.SetDefault(logger())

	slog.Debug("build", "version", internal.VersionString())

	slog.Debug("cruxcp is running",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// Creates a logger seeded from build-time linker flags.
//
// The logger is replaced after flag parsing via cli.Execute.
func logger() *slog.Logger {
	return logging.New(os.Stderr, logging.Options{
		Level:   logging.Level(internal.IsQuiet(), internal.IsDebug()),
		Verbose: internal.IsVerbose(),
		Group:   internal.Name,
	})
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
