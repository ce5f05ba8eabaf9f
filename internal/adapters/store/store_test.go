package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/inbox-clusterer/internal/core"
	"github.com/mikey/inbox-clusterer/internal/ports"
)

func newStores(t *testing.T) map[string]ports.Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "clusters.db"), nil, 0, 0)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	stores := map[string]ports.Store{
		"memory": NewMemoryStore(nil, 0, 0),
		"sqlite": sqlite,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			u := &core.User{Email: "alice@example.com", FirstName: "Alice", PasswordHash: "hash"}
			if err := s.CreateUser(ctx, u); err != nil {
				t.Fatalf("CreateUser failed: %v", err)
			}
			if u.ID == 0 {
				t.Fatalf("expected an assigned user id")
			}

			dup := &core.User{Email: "ALICE@example.com", FirstName: "Other", PasswordHash: "x"}
			if err := s.CreateUser(ctx, dup); !errors.Is(err, core.ErrUserExists) {
				t.Fatalf("expected ErrUserExists, got %v", err)
			}

			got, err := s.GetUserByEmail(ctx, "Alice@Example.com")
			if err != nil {
				t.Fatalf("GetUserByEmail failed: %v", err)
			}
			if got.ID != u.ID || got.FirstName != "Alice" || got.PasswordHash != "hash" {
				t.Fatalf("unexpected user: %+v", got)
			}

			if _, err := s.GetUser(ctx, u.ID); err != nil {
				t.Fatalf("GetUser failed: %v", err)
			}
			if _, err := s.GetUser(ctx, u.ID+100); !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if _, err := s.GetUserByEmail(ctx, "bob@example.com"); !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func clusterRun(runID string, userID int64, processedAt time.Time, n int) []*core.ClusterRecord {
	records := make([]*core.ClusterRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, &core.ClusterRecord{
			RunID:       runID,
			UserID:      userID,
			ClusterID:   i,
			Summary:     "summary",
			Keywords:    []string{"budget", "finance"},
			Language:    "en",
			EmailIDs:    []string{"1", "2"},
			EmailCount:  2,
			StartDate:   processedAt.Add(-24 * time.Hour),
			ProcessedAt: processedAt,
		})
	}
	return records
}

func TestClusters(t *testing.T) {
	ctx := context.Background()
	old := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)

	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.SaveClusters(ctx, clusterRun("01A", 1, old, 2)); err != nil {
				t.Fatalf("SaveClusters failed: %v", err)
			}
			if err := s.SaveClusters(ctx, clusterRun("01B", 1, recent, 3)); err != nil {
				t.Fatalf("SaveClusters failed: %v", err)
			}
			if err := s.SaveClusters(ctx, clusterRun("01C", 2, recent, 1)); err != nil {
				t.Fatalf("SaveClusters failed: %v", err)
			}

			list, err := s.ListClusters(ctx, 1)
			if err != nil {
				t.Fatalf("ListClusters failed: %v", err)
			}
			if len(list) != 5 {
				t.Fatalf("expected 5 clusters, got %d", len(list))
			}
			if list[0].RunID != "01B" || list[0].ClusterID != 0 || list[3].RunID != "01A" {
				t.Fatalf("unexpected order: first=%s/%d fourth=%s", list[0].RunID, list[0].ClusterID, list[3].RunID)
			}
			if len(list[0].Keywords) != 2 || list[0].EmailIDs[1] != "2" || list[0].Language != "en" {
				t.Fatalf("unexpected record contents: %+v", list[0])
			}
			if !list[0].ProcessedAt.Equal(recent) {
				t.Fatalf("expected processed_at %v, got %v", recent, list[0].ProcessedAt)
			}

			if err := s.Cleanup(ctx, recent.Add(-time.Hour)); err != nil {
				t.Fatalf("Cleanup failed: %v", err)
			}
			list, _ = s.ListClusters(ctx, 1)
			if len(list) != 3 {
				t.Fatalf("expected 3 clusters after cleanup, got %d", len(list))
			}

			if err := s.DeleteClusters(ctx, 1); err != nil {
				t.Fatalf("DeleteClusters failed: %v", err)
			}
			list, _ = s.ListClusters(ctx, 1)
			if len(list) != 0 {
				t.Fatalf("expected no clusters for user 1, got %d", len(list))
			}
			other, _ := s.ListClusters(ctx, 2)
			if len(other) != 1 {
				t.Fatalf("expected user 2 clusters to survive, got %d", len(other))
			}
		})
	}
}
