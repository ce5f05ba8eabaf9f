package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		first_name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS email_clusters (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		user_id INTEGER NOT NULL,
		cluster_id INTEGER NOT NULL,
		summary TEXT NOT NULL,
		keywords TEXT NOT NULL,
		language TEXT NOT NULL,
		email_ids TEXT NOT NULL,
		email_count INTEGER NOT NULL,
		start_date TIMESTAMP NOT NULL,
		processed_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clusters_user ON email_clusters(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_clusters_processed_at ON email_clusters(processed_at)`,
}

// SQLiteStore is a SQLite implementation of the ports.Store interface
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string, logger *zap.Logger, retention, cleanupFreq time.Duration) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{sqlStore{db: db, logger: logger, isDuplicate: isSQLiteDuplicate}}
	if err := s.migrate(sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	s.janitor = startJanitor(s, logger, retention, cleanupFreq)
	return s, nil
}

func isSQLiteDuplicate(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
