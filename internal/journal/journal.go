package journal

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"

	"conveyor/internal/config"
)

// Journal manages outcome persistence backed by SQLite.
type Journal struct {
	db   *sql.DB
	path string
}

// PathFor reports where the journal database lives for the given config
// without opening it.
func PathFor(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}
	return filepath.Join(cfg.Paths.DataDir, "journal.db")
}

// Open initializes or connects to the journal database.
func Open(cfg *config.Config) (*Journal, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := PathFor(cfg)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	journal := &Journal{db: db, path: dbPath}
	if err := journal.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return journal, nil
}

// Path returns the database file location.
func (j *Journal) Path() string {
	if j == nil {
		return ""
	}
	return j.path
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}
