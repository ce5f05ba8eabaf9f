package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// duplicate entry error number of the MySQL server
const mysqlDuplicateEntry = 1062

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		first_name VARCHAR(150) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at DATETIME(6) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS email_clusters (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		run_id VARCHAR(26) NOT NULL,
		user_id BIGINT NOT NULL,
		cluster_id INT NOT NULL,
		summary TEXT NOT NULL,
		keywords TEXT NOT NULL,
		language VARCHAR(8) NOT NULL,
		email_ids MEDIUMTEXT NOT NULL,
		email_count INT NOT NULL,
		start_date DATETIME(6) NOT NULL,
		processed_at DATETIME(6) NOT NULL,
		INDEX idx_clusters_user (user_id),
		INDEX idx_clusters_processed_at (processed_at)
	)`,
}

// MySQLStore is a MySQL implementation of the ports.Store interface
type MySQLStore struct {
	sqlStore
}

// NewMySQLStore creates a new MySQL store. The DSN must enable parseTime.
func NewMySQLStore(dsn string, logger *zap.Logger, retention, cleanupFreq time.Duration) (*MySQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	s := &MySQLStore{sqlStore{db: db, logger: logger, isDuplicate: isMySQLDuplicate}}
	if err := s.migrate(mysqlSchema); err != nil {
		db.Close()
		return nil, err
	}
	s.janitor = startJanitor(s, logger, retention, cleanupFreq)
	return s, nil
}

func isMySQLDuplicate(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
