// Package jobs runs periodic maintenance tasks on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"inkpost/internal/middleware"
	"inkpost/internal/service"

	"github.com/robfig/cron/v3"
)

// SweepRunner removes unreferenced tags and categories.
type SweepRunner interface {
	Sweep(ctx context.Context, trigger string) (service.SweepResult, error)
}

// Scheduler triggers the taxonomy sweep on a cron schedule. Runs never
// overlap: a tick that fires while the previous sweep is still running is
// skipped.
type Scheduler struct {
	cron    *cron.Cron
	sweeper SweepRunner
	timeout time.Duration
}

// NewScheduler registers the sweep under schedule, which accepts the
// standard five-field syntax and descriptors such as "@every 1h".
func NewScheduler(schedule string, sweeper SweepRunner) (*Scheduler, error) {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(middleware.Logger.Handler(), slog.LevelWarn))
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		)),
		sweeper: sweeper,
		timeout: 5 * time.Minute,
	}
	if _, err := s.cron.AddFunc(schedule, s.runSweep); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	middleware.Logger.Info("sweep scheduler started", slog.Int("jobs", len(s.cron.Entries())))
}

// Stop prevents new runs and waits for a running sweep to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	result, err := s.sweeper.Sweep(ctx, service.SweepTriggerSchedule)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "scheduled sweep failed", slog.String("error", err.Error()))
		return
	}
	middleware.Logger.InfoContext(ctx, "scheduled sweep finished",
		slog.Int64("tags_removed", result.Tags),
		slog.Int64("categories_removed", result.Categories),
	)
}
