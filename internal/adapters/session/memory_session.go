package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/inbox-clusterer/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the ports.SessionStore interface
type MemoryStore struct {
	sessions    map[string]*core.Session
	mu          sync.RWMutex
	ttl         time.Duration
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore(logger *zap.Logger, ttl, cleanupFreq time.Duration) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &MemoryStore{
		sessions:    make(map[string]*core.Session),
		ttl:         ttl,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
		now:         time.Now,
	}

	if cleanupFreq > 0 {
		go s.startCleanupTask()
	}

	return s
}

// Create opens a new session for a user
func (s *MemoryStore) Create(ctx context.Context, userID int64) (*core.Session, error) {
	sess := &core.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()

	found := *sess
	return &found, nil
}

// Get retrieves a live session by token
func (s *MemoryStore) Get(ctx context.Context, token string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[token]
	if !ok || s.now().After(sess.ExpiresAt) {
		return nil, core.ErrNotFound
	}
	found := *sess
	return &found, nil
}

// Delete removes a session
func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

// Cleanup removes expired sessions
func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expiredCount := 0
	for token, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, token)
			expiredCount++
		}
	}

	s.logger.Debug("Cleaned up expired sessions", zap.Int("expired_count", expiredCount))
	return nil
}

// startCleanupTask starts a background task to clean up expired sessions
func (s *MemoryStore) startCleanupTask() {
	ticker := time.NewTicker(s.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Cleanup(context.Background()); err != nil {
				s.logger.Error("Failed to clean up sessions", zap.Error(err))
			}
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}
