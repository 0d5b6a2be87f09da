// Package scheduler runs jobs on cron schedules inside the worker process.
// A job guarded by a distributed lock runs on at most one replica per tick.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ghuser/lendingdesk/pkg/logger"
)

// Job is a scheduled task.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Locker is held for the duration of one job run.
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Scheduler wraps a robfig cron instance evaluated in UTC.
type Scheduler struct {
	cron    *cron.Cron
	log     logger.Logger
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
}

// New returns a Scheduler whose job runs are cancelled after timeout.
// Overlapping runs of the same job are skipped.
func New(log logger.Logger, timeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:     log,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add schedules job on spec (standard 5-field cron or a descriptor such as
// "@hourly" or "@every 15m"). lock may be nil.
func (s *Scheduler) Add(spec string, job Job, lock Locker) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(s.ctx, job, lock) }); err != nil {
		return fmt.Errorf("schedule %s %q: %w", job.Name(), spec, err)
	}
	s.log.Info("job scheduled", "job", job.Name(), "schedule", spec)
	return nil
}

// Start begins evaluating schedules in the background.
func (s *Scheduler) Start() {
	s.log.Info("starting scheduler")
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	s.log.Info("stopping scheduler")
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}

func (s *Scheduler) run(ctx context.Context, job Job, lock Locker) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	log := s.log.With("job", job.Name())

	if lock != nil {
		locked, err := lock.Acquire(ctx)
		if err != nil {
			log.ErrorContext(ctx, "job lock acquire failed", "error", err)
			return
		}
		if !locked {
			log.InfoContext(ctx, "job running elsewhere; skipping this tick")
			return
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				log.ErrorContext(ctx, "job lock release failed", "error", err)
			}
		}()
	}

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		log.ErrorContext(ctx, "job failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	log.InfoContext(ctx, "job completed", "duration_ms", time.Since(start).Milliseconds())
}
