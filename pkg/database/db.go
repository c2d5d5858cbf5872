package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// BusyTimeout is how long a writer waits on a lock held by another process,
// such as a second catalogctl recording a run.
const BusyTimeout = 5 * time.Second

type Config struct {
	Path string
}

// DefaultConfig points at ~/.productcatalog/history.db.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return Config{
		Path: filepath.Join(home, ".productcatalog", "history.db"),
	}
}

// DSN sets the pragmas per connection so every pooled connection gets them.
func (c Config) DSN() string {
	q := url.Values{}
	q.Set("_busy_timeout", fmt.Sprint(BusyTimeout.Milliseconds()))
	q.Set("_foreign_keys", "on")
	q.Set("_journal_mode", "WAL")
	q.Set("_txlock", "immediate")
	return "file:" + c.Path + "?" + q.Encode()
}

// Open opens the history database, creating its directory first. The pool
// holds a single connection: history has one writer per process.
func Open(cfg Config) (*sql.DB, error) {
	if cfg.Path == "" {
		cfg = DefaultConfig()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history db %s: %w", cfg.Path, err)
	}
	return db, nil
}

// OpenAndMigrate opens the history database and applies the schema.
func OpenAndMigrate(cfg Config) (*sql.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
