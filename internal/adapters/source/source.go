// Package source provides the email sources feeding the clustering pipeline.
package source

import (
	"fmt"
	"sort"
	"time"

	"github.com/mikey/inbox-clusterer/internal/core"
)

// validateSince rejects a lower bound in the future
func validateSince(since, now time.Time) error {
	if since.After(now) {
		return fmt.Errorf("%w: start date %s is in the future", core.ErrInvalidDate, since.Format("2006-01-02"))
	}
	return nil
}

// selectNewest keeps the records received at or after since and returns the
// newest max of them in chronological order. Records whose timestamp cannot be
// parsed are kept and lead the result; the reporter rejects them.
func selectNewest(records []core.EmailRecord, since time.Time, max int) []core.EmailRecord {
	type dated struct {
		record core.EmailRecord
		at     time.Time
		ok     bool
	}

	kept := make([]dated, 0, len(records))
	for _, r := range records {
		at, err := core.ParseTimestamp(r.Timestamp)
		if err == nil && at.Before(since) {
			continue
		}
		kept = append(kept, dated{record: r, at: at, ok: err == nil})
	}

	// newest first, unparseable last
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].ok != kept[j].ok {
			return kept[i].ok
		}
		return kept[i].at.After(kept[j].at)
	})
	if max > 0 && len(kept) > max {
		kept = kept[:max]
	}

	out := make([]core.EmailRecord, len(kept))
	for i, d := range kept {
		out[len(kept)-1-i] = d.record
	}
	return out
}
