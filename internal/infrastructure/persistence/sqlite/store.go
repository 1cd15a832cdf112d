// Package sqlite implements the engine's durable local persistence on an
// embedded SQLite database: the versioned-JSON document store for progress,
// challenge and leaderboard snapshots, and the offline mutation queue.
// SQLite is the right shape here because the store must survive restarts on
// a single device without assuming any server-side infrastructure.
package sqlite

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// documentVersion is the schema version written with every JSON document.
// Bump it when a stored shape changes incompatibly.
const documentVersion = 1

// DB wraps the sqlx handle shared by the repositories.
type DB struct {
	*sqlx.DB
}

// Open opens (creating if necessary) the database at path and runs the
// schema migration. The parent directory is created when missing.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?%s", path, url.Values{
		"_foreign_keys": {"on"},
		"_journal_mode": {"WAL"},
		"_busy_timeout": {"5000"},
		"_loc":          {"UTC"},
	}.Encode())

	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}

	// SQLite doesn't support multiple writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &DB{DB: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// migrate creates the tables if they don't exist.
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		key        TEXT PRIMARY KEY,
		version    INTEGER NOT NULL,
		data       BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS mutation_queue (
		seq             INTEGER PRIMARY KEY AUTOINCREMENT,
		id              TEXT NOT NULL UNIQUE,
		idempotency_key TEXT NOT NULL,
		user_id         TEXT NOT NULL,
		kind            TEXT NOT NULL,
		payload         BLOB NOT NULL,
		created_at      DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS credentials (
		name       TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Close closes the underlying handle.
func (db *DB) Close() error {
	return db.DB.Close()
}
