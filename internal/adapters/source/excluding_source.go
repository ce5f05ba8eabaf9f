package source

import (
	"context"
	"time"

	"github.com/mikey/inbox-clusterer/internal/core"
	"github.com/mikey/inbox-clusterer/internal/senderlist"
	"go.uber.org/zap"
)

// ExcludingSource drops emails from listed sender domains before they reach the pipeline
type ExcludingSource struct {
	next     core.EmailSource
	excluded *senderlist.Checker
	logger   *zap.Logger
}

// NewExcludingSource wraps next, removing emails whose sender matches excluded
func NewExcludingSource(next core.EmailSource, excluded *senderlist.Checker, logger *zap.Logger) *ExcludingSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExcludingSource{next: next, excluded: excluded, logger: logger}
}

// FetchEmails fetches from the wrapped source and filters the result
func (s *ExcludingSource) FetchEmails(ctx context.Context, since time.Time, max int) ([]core.EmailRecord, error) {
	records, err := s.next.FetchEmails(ctx, since, max)
	if err != nil {
		return nil, err
	}

	kept := records[:0]
	for _, r := range records {
		if s.excluded.Matches(r.Sender) {
			continue
		}
		kept = append(kept, r)
	}
	if dropped := len(records) - len(kept); dropped > 0 {
		s.logger.Info("Excluded emails from listed sender domains", zap.Int("excluded", dropped))
	}
	return kept, nil
}
