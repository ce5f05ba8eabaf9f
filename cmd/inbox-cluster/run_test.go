package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mikey/inbox-clusterer/internal/core"
)

func TestParseSince(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	got, err := parseSince("", now)
	if err != nil || !got.Equal(now.Add(-24*time.Hour)) {
		t.Fatalf("expected default lookback, got %v (%v)", got, err)
	}

	got, err = parseSince("2024-03-01", now)
	if err != nil || !got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v (%v)", got, err)
	}

	if _, err := parseSince("03/01/2024", now); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestPrintResult(t *testing.T) {
	result := &core.RunResult{
		RunID:   "01HRUN",
		Fetched: 3,
		Labels:  []int{0, 1, 0},
		Report: []core.ReportRow{
			{Bucket: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), ClusterID: 0, Count: 2},
		},
		Clusters: []core.ClusterResult{
			{ClusterID: 0, Count: 2, Keywords: []string{"invoice", "payment"}, Summary: "Billing reminders."},
			{ClusterID: 1, Count: 1},
		},
	}

	var buf bytes.Buffer
	printResult(&buf, result)
	out := buf.String()

	for _, want := range []string{
		"Run 01HRUN: 3 emails fetched, 3 clustered into 2 clusters",
		"2024-03-01 09:00  cluster 0  2",
		"Cluster 0 (2 emails) [invoice, payment]",
		"  Billing reminders.",
		"Cluster 1 (1 emails)\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
