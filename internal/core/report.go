package core

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"
)

// timestampLayouts are tried in order before falling back to RFC 5322 dates
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses an email timestamp. Timestamps without a zone are
// taken as UTC; all results are returned in UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", ErrInvalidTimestamp)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	if t, err := mail.ParseDate(value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
}

// HourBucket truncates t to the top of its hour in UTC. Timestamps with a
// non-whole-hour offset therefore fall in the UTC hour, not their local one.
func HourBucket(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}

type bucketKey struct {
	bucket  int64
	cluster int
}

// Report counts records per (hour, cluster) and returns the rows ordered by
// hour then cluster id. Any unparseable timestamp fails the whole report.
func Report(records []EmailRecord, labels []int) ([]ReportRow, error) {
	if len(records) != len(labels) {
		return nil, fmt.Errorf("%w: %d records, %d labels", ErrMismatchedLength, len(records), len(labels))
	}

	counts := make(map[bucketKey]int)
	for i, rec := range records {
		ts, err := ParseTimestamp(rec.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		counts[bucketKey{bucket: HourBucket(ts).Unix(), cluster: labels[i]}]++
	}

	rows := make([]ReportRow, 0, len(counts))
	for key, count := range counts {
		rows = append(rows, ReportRow{
			Bucket:    time.Unix(key.bucket, 0).UTC(),
			ClusterID: key.cluster,
			Count:     count,
		})
	}
	sort.Slice(rows, func(a, b int) bool {
		if !rows[a].Bucket.Equal(rows[b].Bucket) {
			return rows[a].Bucket.Before(rows[b].Bucket)
		}
		return rows[a].ClusterID < rows[b].ClusterID
	})
	return rows, nil
}
