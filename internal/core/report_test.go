package core

import (
	"errors"
	"testing"
	"time"
)

func hour(h int) time.Time {
	return time.Date(2024, 1, 1, h, 0, 0, 0, time.UTC)
}

func assertRows(t *testing.T, got, want []ReportRow) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Report = %+v, want %+v", got, want)
	}
	for i := range got {
		if !got[i].Bucket.Equal(want[i].Bucket) || got[i].ClusterID != want[i].ClusterID || got[i].Count != want[i].Count {
			t.Fatalf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReportGroupsByHourAndCluster(t *testing.T) {
	records := []EmailRecord{
		{Subject: "A", Timestamp: "2024-01-01T10:00:00"},
		{Subject: "B", Timestamp: "2024-01-01T10:00:00"},
		{Subject: "C", Timestamp: "2024-01-01T10:00:00"},
	}
	rows, err := Report(records, []int{0, 0, 1})
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	want := []ReportRow{
		{Bucket: hour(10), ClusterID: 0, Count: 2},
		{Bucket: hour(10), ClusterID: 1, Count: 1},
	}
	assertRows(t, rows, want)
}

func TestReportOrderingAndTotals(t *testing.T) {
	records := []EmailRecord{
		{Timestamp: "2024-01-01T11:59:59"},
		{Timestamp: "2024-01-01T10:15:00Z"},
		{Timestamp: "2024-01-01 10:45:00"},
		{Timestamp: "Mon, 01 Jan 2024 13:00:00 +0200"},
		{Timestamp: "2024-01-01T11:00:00"},
	}
	labels := []int{0, 1, 0, 1, 1}

	rows, err := Report(records, labels)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	want := []ReportRow{
		{Bucket: hour(10), ClusterID: 0, Count: 1},
		{Bucket: hour(10), ClusterID: 1, Count: 1},
		{Bucket: hour(11), ClusterID: 0, Count: 1},
		{Bucket: hour(11), ClusterID: 1, Count: 2},
	}
	assertRows(t, rows, want)

	total := 0
	for _, r := range rows {
		total += r.Count
	}
	if total != len(records) {
		t.Fatalf("counts sum to %d, want %d", total, len(records))
	}
}

func TestReportErrors(t *testing.T) {
	_, err := Report([]EmailRecord{{Timestamp: "2024-01-01T10:00:00"}}, []int{0, 1})
	if !errors.Is(err, ErrMismatchedLength) {
		t.Fatalf("expected ErrMismatchedLength, got %v", err)
	}

	_, err = Report([]EmailRecord{
		{Timestamp: "2024-01-01T10:00:00"},
		{Timestamp: "yesterday-ish"},
	}, []int{0, 1})
	if !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}
}

func TestReportEmpty(t *testing.T) {
	rows, err := Report(nil, nil)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %+v", rows)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01T10:15:00", time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)},
		{"2024-01-01T10:15:00+01:00", time.Date(2024, 1, 1, 9, 15, 0, 0, time.UTC)},
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"Tue, 2 Jan 2024 08:30:00 -0500", time.Date(2024, 1, 2, 13, 30, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		got, err := ParseTimestamp(tc.in)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q) failed: %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("ParseTimestamp(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := ParseTimestamp(""); !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp for empty input, got %v", err)
	}
}

func TestReportBucketsInUTC(t *testing.T) {
	records := []EmailRecord{
		{Subject: "A", Timestamp: "2024-03-04T09:50:00+05:30"},
		{Subject: "B", Timestamp: "2024-03-04T04:05:00Z"},
	}
	rows, err := Report(records, []int{0, 0})
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	assertRows(t, rows, []ReportRow{
		{Bucket: time.Date(2024, 3, 4, 4, 0, 0, 0, time.UTC), ClusterID: 0, Count: 2},
	})
	if loc := rows[0].Bucket.Location(); loc != time.UTC {
		t.Fatalf("expected UTC bucket, got %v", loc)
	}
}
