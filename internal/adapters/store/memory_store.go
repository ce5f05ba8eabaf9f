package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mikey/inbox-clusterer/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the ports.Store interface
type MemoryStore struct {
	users    map[int64]*core.User
	clusters []*core.ClusterRecord
	nextUser int64
	nextID   int64
	mu       sync.RWMutex
	logger   *zap.Logger
	janitor  *janitor
}

// NewMemoryStore creates a new in-memory store. Clusters older than retention
// are removed every cleanupFreq; a zero retention keeps them forever.
func NewMemoryStore(logger *zap.Logger, retention, cleanupFreq time.Duration) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &MemoryStore{
		users:  make(map[int64]*core.User),
		logger: logger,
	}
	s.janitor = startJanitor(s, logger, retention, cleanupFreq)
	return s
}

// CreateUser stores a new user and assigns its ID
func (s *MemoryStore) CreateUser(ctx context.Context, user *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, u := range s.users {
		if strings.ToLower(u.Email) == email {
			return fmt.Errorf("%w: %s", core.ErrUserExists, user.Email)
		}
	}

	s.nextUser++
	user.ID = s.nextUser
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

// GetUserByEmail retrieves a user by email, case-insensitively
func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			found := *u
			return &found, nil
		}
	}
	return nil, core.ErrNotFound
}

// GetUser retrieves a user by ID
func (s *MemoryStore) GetUser(ctx context.Context, id int64) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	found := *u
	return &found, nil
}

// SaveClusters stores the clusters of one run
func (s *MemoryStore) SaveClusters(ctx context.Context, records []*core.ClusterRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		s.nextID++
		r.ID = s.nextID
		stored := *r
		stored.Keywords = append([]string(nil), r.Keywords...)
		stored.EmailIDs = append([]string(nil), r.EmailIDs...)
		s.clusters = append(s.clusters, &stored)
	}
	return nil
}

// ListClusters returns the clusters of a user, newest run first
func (s *MemoryStore) ListClusters(ctx context.Context, userID int64) ([]*core.ClusterRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.ClusterRecord
	for _, r := range s.clusters {
		if r.UserID == userID {
			found := *r
			out = append(out, &found)
		}
	}
	sortRecords(out)
	return out, nil
}

// DeleteClusters removes every cluster of a user
func (s *MemoryStore) DeleteClusters(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.clusters[:0]
	for _, r := range s.clusters {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	s.clusters = kept
	return nil
}

// Cleanup removes clusters processed before the cutoff
func (s *MemoryStore) Cleanup(ctx context.Context, cutoff time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.clusters[:0]
	removed := 0
	for _, r := range s.clusters {
		if r.ProcessedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.clusters = kept

	s.logger.Debug("Cleaned up expired clusters", zap.Int("expired_count", removed))
	return nil
}

// Close stops the background cleanup task
func (s *MemoryStore) Close() error {
	s.janitor.stop()
	return nil
}

// sortRecords orders records newest run first, then by cluster ID
func sortRecords(records []*core.ClusterRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.ProcessedAt.Equal(b.ProcessedAt) {
			return a.ProcessedAt.After(b.ProcessedAt)
		}
		if a.RunID != b.RunID {
			return a.RunID > b.RunID
		}
		return a.ClusterID < b.ClusterID
	})
}
