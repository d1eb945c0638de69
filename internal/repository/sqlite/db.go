// Package sqlite contains SQLite implementations of repository interfaces,
// used for local development and integration tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// driverName is go-sqlite3 with a casefold(text) SQL function registered on
// every connection. SQLite's lower() folds ASCII only.
const driverName = "sqlite3_notes"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(c *sqlite3.SQLiteConn) error {
			return c.RegisterFunc("casefold", casefold, true)
		},
	})
}

func casefold(s string) string { return strings.ToLower(s) }

// DBTX is the subset of database/sql used by the repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps a *sql.DB opened with the sqlite3 driver.
type DB struct{ SQL *sql.DB }

// Open opens dsn and verifies the connection. Foreign keys are enforced.
func Open(ctx context.Context, dsn string) (*DB, error) {
	if !strings.Contains(dsn, "_foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_foreign_keys=on"
	}
	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
	conn.SetMaxOpenConns(1)
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &DB{SQL: conn}, nil
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error { return db.SQL.PingContext(ctx) }

// Close closes the underlying database.
func (db *DB) Close() { _ = db.SQL.Close() }

// withTx runs fn inside a transaction, committing on success and rolling back
// on error or panic. Panics are rethrown.
func withTx(ctx context.Context, db *sql.DB, fn func(tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(tx)
}

// uniqueField reports whether err is a UNIQUE constraint failure and which
// users column caused it. The driver reports it as "UNIQUE constraint failed: users.email".
func uniqueField(err error) (string, bool) {
	var se sqlite3.Error
	if !errors.As(err, &se) || se.ExtendedCode != sqlite3.ErrConstraintUnique {
		return "", false
	}
	msg := se.Error()
	switch {
	case strings.Contains(msg, "users.email"):
		return "email", true
	case strings.Contains(msg, "users.username"):
		return "username", true
	default:
		return "unknown", true
	}
}
