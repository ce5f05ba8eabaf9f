package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type cleaner interface {
	Cleanup(ctx context.Context, cutoff time.Time) error
}

// janitor periodically removes clusters older than the retention period
type janitor struct {
	stopCh   chan struct{}
	stopOnce sync.Once
}

// startJanitor starts the background cleanup task. It returns an idle janitor
// when retention or frequency is not positive.
func startJanitor(c cleaner, logger *zap.Logger, retention, cleanupFreq time.Duration) *janitor {
	j := &janitor{stopCh: make(chan struct{})}
	if retention <= 0 || cleanupFreq <= 0 {
		return j
	}

	go func() {
		ticker := time.NewTicker(cleanupFreq)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := c.Cleanup(context.Background(), time.Now().Add(-retention)); err != nil {
					logger.Error("Failed to clean up clusters", zap.Error(err))
				}
			case <-j.stopCh:
				return
			}
		}
	}()
	return j
}

func (j *janitor) stop() {
	j.stopOnce.Do(func() { close(j.stopCh) })
}
