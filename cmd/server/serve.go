package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/and161185/notes-keeper/internal/config"
	"github.com/and161185/notes-keeper/internal/crypto"
	"github.com/and161185/notes-keeper/internal/metrics"
	"github.com/and161185/notes-keeper/internal/migrate"
	"github.com/and161185/notes-keeper/internal/repository"
	"github.com/and161185/notes-keeper/internal/repository/postgres"
	"github.com/and161185/notes-keeper/internal/repository/sqlite"
	httpserver "github.com/and161185/notes-keeper/internal/server/http"
	"github.com/and161185/notes-keeper/internal/service"
	"github.com/and161185/notes-keeper/internal/token"
)

func serveCmd(cfg *config.Config, mkLog loggerFactory) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Apply migrations and start the HTTP API",
		Action: withLogger(cfg, mkLog, func(ctx context.Context, log *zap.Logger) error {
			return runServe(ctx, cfg, log)
		}),
	}
}

func runServe(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	tokens, err := token.NewManager(cfg.TokenConfig())
	if err != nil {
		return err
	}

	log.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("storage", cfg.SafeDSN()),
	)

	dsn := cfg.DSN()
	if err := migrate.Up(ctx, cfg.DB.Driver, dsn); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	st, err := openStorage(ctx, cfg.DB.Driver, dsn)
	if err != nil {
		return err
	}
	defer st.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := httpserver.NewRouter(httpserver.Deps{
		Auth:              service.NewAuthService(st.users, crypto.NewHasher(crypto.DefaultParams), tokens),
		Users:             service.NewUserService(st.users),
		Notes:             service.NewNoteService(st.notes, nil),
		DB:                st.pinger,
		Metrics:           metrics.NewCollector(reg),
		Gatherer:          reg,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		Log:               log,
	})

	if err := httpserver.Serve(ctx, cfg.HTTPAddr, handler, log); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

type storage struct {
	users  repository.UserRepository
	notes  repository.NoteRepository
	pinger httpserver.Pinger
	close  func()
}

// openStorage connects to the configured backend. Both constructors ping, so an
// unreachable database fails startup.
func openStorage(ctx context.Context, driver, dsn string) (*storage, error) {
	switch driver {
	case migrate.DriverPostgres:
		db, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return &storage{
			users:  postgres.NewUserRepo(db),
			notes:  postgres.NewNoteRepo(db),
			pinger: db,
			close:  db.Close,
		}, nil
	case migrate.DriverSQLite:
		db, err := sqlite.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return &storage{
			users:  sqlite.NewUserRepo(db),
			notes:  sqlite.NewNoteRepo(db),
			pinger: db,
			close:  db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}
