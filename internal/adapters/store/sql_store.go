package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/inbox-clusterer/internal/core"
	"go.uber.org/zap"
)

// sqlStore holds the queries shared by the SQLite and MySQL stores
type sqlStore struct {
	db          *sql.DB
	logger      *zap.Logger
	isDuplicate func(error) bool
	janitor     *janitor
}

func (s *sqlStore) migrate(statements []string) error {
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// CreateUser stores a new user and assigns its ID
func (s *sqlStore) CreateUser(ctx context.Context, user *core.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (email, first_name, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, user.Email, user.FirstName, user.PasswordHash, user.CreatedAt.UTC())
	if err != nil {
		if s.isDuplicate(err) {
			return fmt.Errorf("%w: %s", core.ErrUserExists, user.Email)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	user.ID = id
	return nil
}

// GetUserByEmail retrieves a user by email, case-insensitively
func (s *sqlStore) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.getUser(ctx, `
		SELECT id, email, first_name, password_hash, created_at
		FROM users
		WHERE LOWER(email) = LOWER(?)
	`, email)
}

// GetUser retrieves a user by ID
func (s *sqlStore) GetUser(ctx context.Context, id int64) (*core.User, error) {
	return s.getUser(ctx, `
		SELECT id, email, first_name, password_hash, created_at
		FROM users
		WHERE id = ?
	`, id)
}

func (s *sqlStore) getUser(ctx context.Context, query string, arg interface{}) (*core.User, error) {
	var u core.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.FirstName, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// SaveClusters stores the clusters of one run in a single transaction
func (s *sqlStore) SaveClusters(ctx context.Context, records []*core.ClusterRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		keywords, err := json.Marshal(r.Keywords)
		if err != nil {
			return fmt.Errorf("failed to encode keywords: %w", err)
		}
		emailIDs, err := json.Marshal(r.EmailIDs)
		if err != nil {
			return fmt.Errorf("failed to encode email ids: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO email_clusters
				(run_id, user_id, cluster_id, summary, keywords, language, email_ids, email_count, start_date, processed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.RunID, r.UserID, r.ClusterID, r.Summary, string(keywords), r.Language, string(emailIDs),
			r.EmailCount, r.StartDate.UTC(), r.ProcessedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert cluster: %w", err)
		}
		if id, err := res.LastInsertId(); err == nil {
			r.ID = id
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clusters: %w", err)
	}
	return nil
}

// ListClusters returns the clusters of a user, newest run first
func (s *sqlStore) ListClusters(ctx context.Context, userID int64) ([]*core.ClusterRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, user_id, cluster_id, summary, keywords, language, email_ids, email_count, start_date, processed_at
		FROM email_clusters
		WHERE user_id = ?
		ORDER BY processed_at DESC, run_id DESC, cluster_id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query clusters: %w", err)
	}
	defer rows.Close()

	var out []*core.ClusterRecord
	for rows.Next() {
		var r core.ClusterRecord
		var keywords, emailIDs string
		if err := rows.Scan(&r.ID, &r.RunID, &r.UserID, &r.ClusterID, &r.Summary, &keywords, &r.Language,
			&emailIDs, &r.EmailCount, &r.StartDate, &r.ProcessedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cluster: %w", err)
		}
		if err := json.Unmarshal([]byte(keywords), &r.Keywords); err != nil {
			s.logger.Warn("Failed to decode cluster keywords", zap.Int64("id", r.ID), zap.Error(err))
		}
		if err := json.Unmarshal([]byte(emailIDs), &r.EmailIDs); err != nil {
			s.logger.Warn("Failed to decode cluster email ids", zap.Int64("id", r.ID), zap.Error(err))
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clusters: %w", err)
	}
	return out, nil
}

// DeleteClusters removes every cluster of a user
func (s *sqlStore) DeleteClusters(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM email_clusters WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete clusters: %w", err)
	}
	return nil
}

// Cleanup removes clusters processed before the cutoff
func (s *sqlStore) Cleanup(ctx context.Context, cutoff time.Time) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM email_clusters WHERE processed_at < ?`, cutoff.UTC())
	if err != nil {
		return fmt.Errorf("failed to clean up expired clusters: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		s.logger.Debug("Cleaned up expired clusters", zap.Int64("expired_count", rowsAffected))
	}
	return nil
}

// Close stops the background cleanup task and closes the database connection
func (s *sqlStore) Close() error {
	s.janitor.stop()
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
