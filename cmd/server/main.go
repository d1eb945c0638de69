// Command notes-server runs the notes HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/and161185/notes-keeper/internal/config"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp(newLogger).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "notes-server:", err)
		os.Exit(1)
	}
}

// loggerFactory builds the process logger once flags are parsed.
type loggerFactory func(dev bool) (*zap.Logger, error)

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newApp(mkLog loggerFactory) *cli.App {
	cfg := config.Defaults()
	return &cli.App{
		Name:           "notes-server",
		Usage:          "Notes API backend",
		Version:        version,
		Flags:          config.Flags(&cfg),
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			serveCmd(&cfg, mkLog),
			migrateCmd(&cfg, mkLog),
		},
	}
}

// withLogger wraps a command action with a logger built from cfg.
func withLogger(cfg *config.Config, mkLog loggerFactory, fn func(ctx context.Context, log *zap.Logger) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		log, err := mkLog(cfg.Dev)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer func() { _ = log.Sync() }()
		return fn(c.Context, log)
	}
}
