package bunstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// OpenPostgres opens a bun DB over PostgreSQL using pgdriver.
func OpenPostgres(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("board/bun: ping postgres: %w", err)
	}
	return db, nil
}

// OpenSQLite opens a bun DB over a local SQLite file, creating parent
// directories as needed. ":memory:" opens a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*bun.DB, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}

	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("board/bun: open sqlite: %w", err)
	}
	// A single connection keeps an in-memory database alive and avoids
	// SQLITE_BUSY between writers.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("board/bun: ping sqlite: %w", err)
	}

	if dsn != ":memory:" {
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		var journalMode string
		if err := db.QueryRowContext(pctx, "PRAGMA journal_mode=WAL").Scan(&journalMode); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("board/bun: enable WAL mode: %w", err)
		}
		var busyTimeout int
		if err := db.QueryRowContext(pctx, "PRAGMA busy_timeout=5000").Scan(&busyTimeout); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("board/bun: set busy timeout: %w", err)
		}
	}
	return db, nil
}

func sqliteDSN(path string) (string, error) {
	path = strings.TrimSpace(path)
	switch {
	case path == "":
		return "", fmt.Errorf("board/bun: sqlite path is required")
	case path == ":memory:", strings.HasPrefix(path, "file:"):
		return path, nil
	}

	dir := filepath.Dir(filepath.Clean(path))
	if dir != "." && dir != string(filepath.Separator) {
		// #nosec G301 -- data directories use 0755 for multi-user access compatibility
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("board/bun: create store directory: %w", err)
		}
	}
	return "file:" + filepath.Clean(path), nil
}
