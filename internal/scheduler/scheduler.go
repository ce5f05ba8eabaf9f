// Package scheduler triggers clustering runs on a cron schedule or on demand.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mikey/inbox-clusterer/internal/core"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner runs the clustering pipeline for a user
type Runner interface {
	Run(ctx context.Context, req core.RunRequest) (*core.RunResult, error)
}

// Options configures the scheduler
type Options struct {
	// Cron is a standard 5-field cron expression; empty disables timed runs
	Cron string
	// UserEmail is the account the scheduled clusters are stored for
	UserEmail string
	// Lookback is how far back each run fetches emails
	Lookback time.Duration
	// RunTimeout bounds a single run
	RunTimeout time.Duration
}

// Scheduler runs the pipeline on a schedule and on explicit triggers
type Scheduler struct {
	runner   Runner
	users    core.UserRepository
	notifier core.Notifier
	logger   *zap.Logger
	opts     Options
	schedule cron.Schedule
	now      func() time.Time

	triggerCh chan struct{}
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// New creates a new scheduler. The notifier may be nil.
func New(runner Runner, users core.UserRepository, notifier core.Notifier, logger *zap.Logger, opts Options) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Lookback <= 0 {
		opts.Lookback = 24 * time.Hour
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 10 * time.Minute
	}

	s := &Scheduler{
		runner:    runner,
		users:     users,
		notifier:  notifier,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}

	if expr := strings.TrimSpace(opts.Cron); expr != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		sched, err := parser.Parse(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid cron schedule %q: %w", expr, err)
		}
		s.schedule = sched
	}
	return s, nil
}

// Start starts the scheduling loop
func (s *Scheduler) Start() error {
	if s.schedule != nil {
		s.logger.Info("Scheduled clustering enabled",
			zap.String("cron", s.opts.Cron),
			zap.String("user", s.opts.UserEmail),
			zap.Duration("lookback", s.opts.Lookback))
	}

	s.wg.Add(1)
	go s.loop()
	return nil
}

// Stop stops the scheduling loop and waits for a running job to finish
func (s *Scheduler) Stop() error {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
	return nil
}

// Trigger requests a run as soon as possible. Requests arriving while one is
// pending are coalesced.
func (s *Scheduler) Trigger() {
	select {
	case s.triggerCh <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	for {
		var timer *time.Timer
		var timerC <-chan time.Time
		if s.schedule != nil {
			now := s.now()
			next := s.schedule.Next(now)
			s.logger.Info("Next scheduled run", zap.Time("at", next), zap.Duration("in", next.Sub(now).Round(time.Minute)))
			timer = time.NewTimer(next.Sub(now))
			timerC = timer.C
		}

		select {
		case <-s.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-timerC:
		case <-s.triggerCh:
			if timer != nil {
				timer.Stop()
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.opts.RunTimeout)
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("Scheduled run failed", zap.String("kind", core.ErrorKind(err)), zap.Error(err))
		}
		cancel()
	}
}

// RunOnce runs the pipeline for the configured user over the lookback window
// and posts the result to the notifier
func (s *Scheduler) RunOnce(ctx context.Context) (*core.RunResult, error) {
	if s.opts.UserEmail == "" {
		return nil, errors.New("no user configured for scheduled runs")
	}
	user, err := s.users.GetUserByEmail(ctx, s.opts.UserEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scheduled run user %s: %w", s.opts.UserEmail, err)
	}

	since := s.now().Add(-s.opts.Lookback)
	result, err := s.runner.Run(ctx, core.RunRequest{UserID: user.ID, Since: since})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Scheduled run complete",
		zap.String("run_id", result.RunID),
		zap.Int("fetched", result.Fetched),
		zap.Int("clusters", len(result.Clusters)))

	if s.notifier != nil {
		if err := s.notifier.NotifyRun(ctx, user, result); err != nil {
			s.logger.Warn("Failed to notify run", zap.Error(err))
		}
	}
	return result, nil
}
