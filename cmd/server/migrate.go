package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/and161185/notes-keeper/internal/config"
	"github.com/and161185/notes-keeper/internal/migrate"
)

func migrateCmd(cfg *config.Config, mkLog loggerFactory) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending schema migrations and exit",
		Action: withLogger(cfg, mkLog, func(ctx context.Context, log *zap.Logger) error {
			if err := cfg.ValidateDB(); err != nil {
				return err
			}
			if err := migrate.Up(ctx, cfg.DB.Driver, cfg.DSN()); err != nil {
				return fmt.Errorf("migrate up: %w", err)
			}
			log.Info("migrations applied", zap.String("storage", cfg.SafeDSN()))
			return nil
		}),
	}
}
