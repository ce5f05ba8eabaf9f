package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mikey/inbox-clusterer/internal/adapters/store"
	"github.com/mikey/inbox-clusterer/internal/core"
)

type fakeRunner struct {
	mu   sync.Mutex
	reqs []core.RunRequest
	done chan struct{}
}

func (f *fakeRunner) Run(ctx context.Context, req core.RunRequest) (*core.RunResult, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.done != nil {
		f.done <- struct{}{}
	}
	return &core.RunResult{RunID: "01HSCHED"}, nil
}

type fakeNotifier struct {
	runs []string
}

func (f *fakeNotifier) NotifyRun(ctx context.Context, user *core.User, result *core.RunResult) error {
	f.runs = append(f.runs, user.Email+"/"+result.RunID)
	return nil
}

func newUsers(t *testing.T) *store.MemoryStore {
	t.Helper()
	st := store.NewMemoryStore(nil, 0, 0)
	t.Cleanup(func() { st.Close() })
	if err := st.CreateUser(context.Background(), &core.User{Email: "ops@example.com", FirstName: "Ops", PasswordHash: "x"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return st
}

func TestInvalidCron(t *testing.T) {
	if _, err := New(&fakeRunner{}, newUsers(t), nil, nil, Options{Cron: "every day"}); err == nil {
		t.Fatalf("expected error for invalid cron expression")
	}
}

func TestRunOnce(t *testing.T) {
	runner := &fakeRunner{}
	notifier := &fakeNotifier{}
	s, err := New(runner, newUsers(t), notifier, nil, Options{
		Cron:      "0 9 * * 1-5",
		UserEmail: "ops@example.com",
		Lookback:  48 * time.Hour,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if _, err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if len(runner.reqs) != 1 || !runner.reqs[0].Since.Equal(now.Add(-48*time.Hour)) || runner.reqs[0].UserID != 1 {
		t.Fatalf("unexpected run requests %+v", runner.reqs)
	}
	if len(notifier.runs) != 1 || notifier.runs[0] != "ops@example.com/01HSCHED" {
		t.Fatalf("unexpected notifications %v", notifier.runs)
	}
}

func TestRunOnceUnknownUser(t *testing.T) {
	s, err := New(&fakeRunner{}, newUsers(t), nil, nil, Options{UserEmail: "nobody@example.com"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := s.RunOnce(context.Background()); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	s, _ = New(&fakeRunner{}, newUsers(t), nil, nil, Options{})
	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected error without a configured user")
	}
}

func TestTrigger(t *testing.T) {
	runner := &fakeRunner{done: make(chan struct{}, 1)}
	s, err := New(runner, newUsers(t), nil, nil, Options{UserEmail: "ops@example.com"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	s.Trigger()
	select {
	case <-runner.done:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected a triggered run")
	}
}
