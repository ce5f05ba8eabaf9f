package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mikey/inbox-clusterer/internal/core"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil, time.Hour, 0)
	defer s.Stop()

	sess, err := s.Create(ctx, 7)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sess.Token == "" || sess.UserID != 7 {
		t.Fatalf("unexpected session: %+v", sess)
	}

	got, err := s.Get(ctx, sess.Token)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.UserID != 7 {
		t.Fatalf("expected user 7, got %d", got.UserID)
	}

	if err := s.Delete(ctx, sess.Token); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, sess.Token); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil, time.Minute, 0)
	defer s.Stop()

	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	sess, _ := s.Create(ctx, 1)
	now = now.Add(2 * time.Minute)

	if _, err := s.Get(ctx, sess.Token); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected expired session to be missing, got %v", err)
	}
	if err := s.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if len(s.sessions) != 0 {
		t.Fatalf("expected cleanup to drop expired sessions, %d left", len(s.sessions))
	}
}
