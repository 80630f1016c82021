package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the database connection with pooling configuration.
type DB struct {
	*sql.DB
}

// NewDB opens the SQLite database under dataDir, configures pooling and runs
// migrations. Foreign keys are enforced so Thesis and Metrics rows cascade
// with their owners.
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "bibliometer.db")
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	database := &DB{DB: db}
	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("Database initialized", "path", dbPath)
	return database, nil
}

// migrate creates the necessary tables.
func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			university TEXT NOT NULL DEFAULT '',
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS theses (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			author TEXT NOT NULL,
			year INTEGER NOT NULL,
			predicted_score REAL NOT NULL,
			category TEXT NOT NULL,
			indicators TEXT NOT NULL DEFAULT '{}',
			file_path TEXT NOT NULL DEFAULT '',
			file_name TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS metrics (
			id TEXT PRIMARY KEY,
			thesis_id TEXT NOT NULL UNIQUE REFERENCES theses(id) ON DELETE CASCADE,
			citation REAL NOT NULL DEFAULT 0,
			methodology REAL NOT NULL DEFAULT 0,
			innovation REAL NOT NULL DEFAULT 0,
			techniques REAL NOT NULL DEFAULT 0,
			results REAL NOT NULL DEFAULT 0,
			total REAL NOT NULL DEFAULT 0,
			category TEXT NOT NULL,
			confidence REAL NOT NULL DEFAULT 0,
			model_version TEXT NOT NULL DEFAULT '1.0',
			ml_score REAL NOT NULL DEFAULT 0,
			comparison TEXT NOT NULL DEFAULT '{}',
			recommendations TEXT NOT NULL DEFAULT '[]',
			analyzed_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_theses_user_year ON theses(user_id, year DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_theses_created ON theses(created_at DESC)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
