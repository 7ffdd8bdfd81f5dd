package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Storage handles database operations
type Storage struct {
	db *sql.DB
}

// NewStorage opens (or creates) the run-history database at dbPath.
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &Storage{db: db}
	if err := storage.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema creates the database tables and handles migrations
func (s *Storage) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			status TEXT NOT NULL,
			package TEXT NOT NULL DEFAULT '',
			version TEXT NOT NULL DEFAULT '',
			commit_id TEXT NOT NULL DEFAULT '',
			branch TEXT NOT NULL DEFAULT '',
			started_at DATETIME NOT NULL,
			finished_at DATETIME,
			duration TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS stage_executions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			exit_code INTEGER,
			reason TEXT NOT NULL DEFAULT '',
			output TEXT,
			started_at DATETIME NOT NULL,
			duration TEXT NOT NULL DEFAULT '',
			FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_branch ON runs(branch)`,
		`CREATE INDEX IF NOT EXISTS idx_stage_executions_run_id ON stage_executions(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_stage_executions_name ON stage_executions(name)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}

	if err := s.migrateSchema(); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return nil
}

// migrateSchema adds new columns to existing tables if they don't exist
func (s *Storage) migrateSchema() error {
	migrations := []string{
		`ALTER TABLE runs ADD COLUMN package TEXT NOT NULL DEFAULT ''`,
		`ALTER TABLE runs ADD COLUMN version TEXT NOT NULL DEFAULT ''`,
		`ALTER TABLE runs ADD COLUMN commit_id TEXT NOT NULL DEFAULT ''`,
		`ALTER TABLE runs ADD COLUMN branch TEXT NOT NULL DEFAULT ''`,
		`ALTER TABLE stage_executions ADD COLUMN reason TEXT NOT NULL DEFAULT ''`,
	}

	for _, migration := range migrations {
		// Ignore errors if column already exists
		s.db.Exec(migration)
	}

	return nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}
