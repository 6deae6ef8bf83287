// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package db // import "github.com/toeirei/keychain/internal/db"

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// sqlOpenFunc allows tests to override database opening behavior.
var sqlOpenFunc = sql.Open

// NewStoreFromDSN opens a sql.DB for the given DSN, creates the schema and
// returns a Store backed by a long-lived *bun.DB.
func NewStoreFromDSN(dbType, dsn string) (Store, error) {
	switch dbType {
	case "sqlite", "postgres", "mysql":
	default:
		return nil, fmt.Errorf("unsupported database type for store creation: '%s'", dbType)
	}

	driverName := dbType
	// The pgx stdlib registers driver name "pgx"; map "postgres" to that driver.
	if dbType == "postgres" {
		driverName = "pgx"
	}
	start := time.Now()
	sqlDB, err := sqlOpenFunc(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	const (
		defaultMaxOpenConns    = 10
		defaultMaxIdleConns    = 10
		defaultConnMaxLifetime = 5 * time.Minute
	)

	maxOpen := envInt("KEYCHAIN_DB_MAX_OPEN_CONNS", defaultMaxOpenConns)
	maxIdle := envInt("KEYCHAIN_DB_MAX_IDLE_CONNS", defaultMaxIdleConns)

	// In-memory SQLite databases are per connection; keep a single one so the
	// schema stays visible.
	if dbType == "sqlite" && (dsn == ":memory:" || strings.Contains(dsn, "mode=memory")) {
		maxOpen = 1
		maxIdle = 1
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(defaultConnMaxLifetime)

	dbLogf("db: opened %s driver in %s (conn max open=%d, idle=%d)", driverName, time.Since(start), maxOpen, maxIdle)

	bunDB := createBunDB(sqlDB, dbType)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	schemaStart := time.Now()
	if err := ensureSchema(ctx, bunDB, dbType); err != nil {
		_ = bunDB.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	dbLogf("db: schema for %s ready in %s", dbType, time.Since(schemaStart))

	return &BunStore{bun: bunDB, dbType: dbType}, nil
}

// createBunDB constructs a *bun.DB for the provided *sql.DB and dbType.
func createBunDB(sqlDB *sql.DB, dbType string) *bun.DB {
	switch dbType {
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New())
	case "mysql":
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}

// ensureSchema creates the snapshot tables when they do not exist yet.
func ensureSchema(ctx context.Context, db *bun.DB, dbType string) error {
	models := []any{(*snapshotRow)(nil), (*snapshotHostRow)(nil)}
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	// MySQL has no CREATE INDEX IF NOT EXISTS.
	if dbType == "mysql" {
		return nil
	}
	_, err := db.NewCreateIndex().
		Model((*snapshotHostRow)(nil)).
		Index("snapshot_hosts_position_idx").
		Unique().
		IfNotExists().
		Column("snapshot_id", "position").
		Exec(ctx)
	return err
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
