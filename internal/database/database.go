// Package database applies the schema with goose. Migrations are embedded at
// compile time and rendered per table prefix, so dev, test and prod tables can
// share one database.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// prefixEnv is read by the ENVSUB blocks in migrations/*.sql
const prefixEnv = "SCRIPTDESK_TABLE_PREFIX"

// goose keeps its settings in package globals
var gooseMu sync.Mutex

// Migrate runs all pending migrations for the given table prefix
func Migrate(ctx context.Context, pool *pgxpool.Pool, prefix string, logger *slog.Logger) error {
	err := withGoose(pool, prefix, func(db *sql.DB) error {
		return goose.UpContext(ctx, db, "migrations")
	})
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	logger.Info("database migrations applied", "prefix", prefix)
	return nil
}

// Reset rolls every migration back, dropping the prefixed tables
func Reset(ctx context.Context, pool *pgxpool.Pool, prefix string, logger *slog.Logger) error {
	err := withGoose(pool, prefix, func(db *sql.DB) error {
		return goose.ResetContext(ctx, db, "migrations")
	})
	if err != nil {
		return fmt.Errorf("goose reset: %w", err)
	}

	logger.Warn("database reset", "prefix", prefix)
	return nil
}

// Version returns the current schema version for the prefix
func Version(ctx context.Context, pool *pgxpool.Pool, prefix string) (int64, error) {
	var version int64
	err := withGoose(pool, prefix, func(db *sql.DB) error {
		v, err := goose.GetDBVersionContext(ctx, db)
		version = v
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("goose version: %w", err)
	}
	return version, nil
}

func withGoose(pool *pgxpool.Pool, prefix string, fn func(db *sql.DB) error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	defer goose.SetBaseFS(nil)
	goose.SetTableName(prefix + "goose_db_version")
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	previous, hadPrevious := os.LookupEnv(prefixEnv)
	if err := os.Setenv(prefixEnv, prefix); err != nil {
		return fmt.Errorf("set %s: %w", prefixEnv, err)
	}
	defer func() {
		if hadPrevious {
			_ = os.Setenv(prefixEnv, previous)
		} else {
			_ = os.Unsetenv(prefixEnv)
		}
	}()

	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	return fn(db)
}
