// Package migrate applies embedded SQL migrations on startup.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/and161185/notes-keeper/migrations"
)

// Supported storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Up opens a dedicated connection for driver/dsn and runs all pending migrations.
func Up(ctx context.Context, driver, dsn string) error {
	sqlDriver, err := sqlDriverName(driver)
	if err != nil {
		return err
	}
	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return fmt.Errorf("open %s: %w", driver, err)
	}
	defer db.Close()

	return UpDB(ctx, db, driver)
}

// UpDB runs all pending migrations for driver on an already opened db.
func UpDB(ctx context.Context, db *sql.DB, driver string) error {
	p, err := newProvider(db, driver)
	if err != nil {
		return err
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("migrate %s: %w", driver, err)
	}
	return nil
}

// Version reports the current schema version of db.
func Version(ctx context.Context, db *sql.DB, driver string) (int64, error) {
	p, err := newProvider(db, driver)
	if err != nil {
		return 0, err
	}
	return p.GetDBVersion(ctx)
}

func newProvider(db *sql.DB, driver string) (*goose.Provider, error) {
	var dialect goose.Dialect
	switch driver {
	case DriverPostgres:
		dialect = goose.DialectPostgres
	case DriverSQLite:
		dialect = goose.DialectSQLite3
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	sub, err := fs.Sub(migrations.FS, driver)
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(dialect, db, sub)
}

func sqlDriverName(driver string) (string, error) {
	switch driver {
	case DriverPostgres:
		return "pgx", nil
	case DriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}
