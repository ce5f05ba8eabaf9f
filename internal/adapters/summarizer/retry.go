package summarizer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mikey/inbox-clusterer/internal/core"
	"go.uber.org/zap"
)

// RetrySummarizer retries a failing summarizer a fixed number of times
type RetrySummarizer struct {
	next     core.Summarizer
	attempts int
	wait     time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

// NewRetrySummarizer wraps next with retries. Each attempt is bounded by
// timeout when it is positive.
func NewRetrySummarizer(next core.Summarizer, attempts int, wait, timeout time.Duration, logger *zap.Logger) *RetrySummarizer {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetrySummarizer{
		next:     next,
		attempts: attempts,
		wait:     wait,
		timeout:  timeout,
		logger:   logger,
	}
}

// Summarize calls the wrapped summarizer until it succeeds or attempts run out
func (r *RetrySummarizer) Summarize(ctx context.Context, text string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		summary, err := r.try(ctx, text)
		if err == nil {
			return summary, nil
		}
		lastErr = err

		if attempt == r.attempts {
			break
		}
		r.logger.Warn("Summarization attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.attempts),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.wait):
		}
	}
	return "", fmt.Errorf("summarization failed after %d attempts: %w", r.attempts, lastErr)
}

func (r *RetrySummarizer) try(ctx context.Context, text string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.next.Summarize(ctx, text)
}

// Close closes the wrapped summarizer when it holds resources
func (r *RetrySummarizer) Close() error {
	if c, ok := r.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
