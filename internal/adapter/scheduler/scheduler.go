// Package scheduler runs the periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// JobFunc is one maintenance job run.
type JobFunc func(ctx context.Context) error

// Options configures one registered job.
type Options struct {
	Name    string
	Timeout time.Duration // 0 means no per-run timeout
}

// cronLogger bridges cron's logging interface onto slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, kv ...any) {
	l.log.Debug(msg, kv...)
}

func (l cronLogger) Error(err error, msg string, kv ...any) {
	l.log.Error(msg, append([]any{"error", err}, kv...)...)
}

// Scheduler wraps cron with per-job timeouts and overlap skipping. A run
// that is still going when the next tick fires wins the slot; the tick is
// skipped rather than queued, so a slow database can never pile up
// concurrent maintenance runs.
type Scheduler struct {
	cron   *cron.Cron
	log    *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a Scheduler.
func New(log *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithChain(cron.Recover(cronLogger{log: log})),
			cron.WithLogger(cronLogger{log: log}),
		),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers a job under a cron spec.
func (s *Scheduler) Add(spec string, job JobFunc, opts Options) error {
	if opts.Name == "" {
		opts.Name = "job"
	}
	wrapped := s.wrap(job, opts)
	if _, err := s.cron.AddFunc(spec, wrapped); err != nil {
		return fmt.Errorf("add job %q: %w", opts.Name, err)
	}
	return nil
}

func (s *Scheduler) wrap(job JobFunc, opts Options) func() {
	var running sync.Mutex
	return func() {
		if !running.TryLock() {
			s.log.Warn("job still running, skipping tick", "job", opts.Name)
			return
		}
		defer running.Unlock()

		s.wg.Add(1)
		defer s.wg.Done()

		ctx := s.ctx
		if opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
			defer cancel()
		}

		start := time.Now()
		err := job(ctx)
		elapsed := time.Since(start)
		if err != nil {
			s.log.Error("job failed", "job", opts.Name, "duration", elapsed, "error", err)
			return
		}
		s.log.Info("job finished", "job", opts.Name, "duration", elapsed)
	}
}

// Start launches the cron loop. Safe to call once.
func (s *Scheduler) Start() {
	s.startOnce.Do(s.cron.Start)
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		<-s.cron.Stop().Done()
		s.cancel()
		s.wg.Wait()
	})
}
