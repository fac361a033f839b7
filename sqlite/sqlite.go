// Package sqlite provides SQLite-based storage implementations for saletrack services.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	// Verify connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set busy timeout to wait 5 seconds before failing on lock contention.
	// This prevents immediate "database is locked" errors.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Enable WAL mode for file-based databases for better write performance.
	// WAL is ~7x faster for writes and allows concurrent reads during writes.
	// Trade-off: creates additional -wal and -shm files alongside the database.
	// Note: WAL mode is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Enable foreign key constraints
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	// Create schema
	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, opts)
}

// Stats returns database statistics.
func (db *DB) Stats() sql.DBStats {
	return db.db.Stats()
}

// createSchema creates the database tables if they don't exist.
// Listing and sale uniqueness is enforced here rather than in application
// logic: re-saving a day's snapshot replaces its rows, and a sale can only be
// recorded once per (platform, listing, detection date).
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS daily_inventory (
			platform TEXT NOT NULL,
			target TEXT NOT NULL,
			listing_id TEXT NOT NULL,
			snapshot_date TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			price REAL NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT '',
			condition TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			seen_at_page INTEGER NOT NULL DEFAULT 0,
			content_hash TEXT NOT NULL DEFAULT '',
			UNIQUE(platform, listing_id, snapshot_date)
		);

		CREATE INDEX IF NOT EXISTS idx_daily_inventory_day ON daily_inventory(platform, target, snapshot_date);
		CREATE INDEX IF NOT EXISTS idx_daily_inventory_listing ON daily_inventory(platform, listing_id);

		CREATE TABLE IF NOT EXISTS detected_sales (
			platform TEXT NOT NULL,
			listing_id TEXT NOT NULL,
			detection_date TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			last_seen_price REAL NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			days_listed INTEGER,
			UNIQUE(platform, listing_id, detection_date)
		);

		CREATE INDEX IF NOT EXISTS idx_detected_sales_day ON detected_sales(platform, detection_date);

		CREATE TABLE IF NOT EXISTS scrape_runs (
			id TEXT PRIMARY KEY,
			platform TEXT NOT NULL,
			target TEXT NOT NULL,
			pages_attempted INTEGER NOT NULL DEFAULT 0,
			pages_total INTEGER NOT NULL DEFAULT 0,
			items_collected INTEGER NOT NULL DEFAULT 0,
			items_expected INTEGER NOT NULL DEFAULT 0,
			consecutive_failures INTEGER NOT NULL DEFAULT 0,
			terminated_reason TEXT NOT NULL DEFAULT '',
			recorded_at TEXT NOT NULL
		);
	`

	_, err := db.db.Exec(schema)
	return err
}
