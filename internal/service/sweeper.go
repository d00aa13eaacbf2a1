package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"inkpost/internal/models"
	"inkpost/internal/observability"
	"inkpost/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// Sweep triggers.
const (
	SweepTriggerPostDelete = "post_delete"
	SweepTriggerSchedule   = "schedule"
)

// SweepResult reports how many unreferenced records a sweep removed.
type SweepResult struct {
	Tags       int64
	Categories int64
}

// Sweeper removes tags and categories no post refers to any more.
type Sweeper struct {
	names repository.NameRepository
	wg    sync.WaitGroup
}

func NewSweeper(names repository.NameRepository) *Sweeper {
	return &Sweeper{names: names}
}

// Sweep deletes unreferenced tags, then unreferenced categories.
func (s *Sweeper) Sweep(ctx context.Context, trigger string) (result SweepResult, err error) {
	ctx, span := observability.StartSpan(ctx, "sweeper", "sweep", attribute.String("sweep.trigger", trigger))
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		observability.SweepRuns.WithLabelValues(trigger, outcome).Inc()
		observability.EndSpan(span, err)
	}()

	result.Tags, err = s.names.DeleteUnreferenced(ctx, models.KindTag)
	if err != nil {
		return result, fmt.Errorf("sweep tags: %w", err)
	}
	observability.SweepRemoved.WithLabelValues(string(models.KindTag)).Add(float64(result.Tags))

	result.Categories, err = s.names.DeleteUnreferenced(ctx, models.KindCategory)
	if err != nil {
		return result, fmt.Errorf("sweep categories: %w", err)
	}
	observability.SweepRemoved.WithLabelValues(string(models.KindCategory)).Add(float64(result.Categories))
	return result, nil
}

// SweepAsync runs Sweep in the background, detached from ctx cancellation.
// Failures are logged and never reported to the caller.
func (s *Sweeper) SweepAsync(ctx context.Context, trigger string) {
	if s == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(bg, time.Minute)
		defer cancel()

		started := time.Now()
		fields := map[string]any{"trigger": trigger}
		observability.LogAsyncOperationStart(ctx, "taxonomy_sweep", fields)
		result, err := s.Sweep(ctx, trigger)
		if err != nil {
			observability.LogAsyncOperationError(ctx, "taxonomy_sweep", err, fields)
			return
		}
		fields["tags_removed"] = result.Tags
		fields["categories_removed"] = result.Categories
		observability.LogAsyncOperationEnd(ctx, "taxonomy_sweep", started, fields)
	}()
}

// Wait blocks until every background sweep has finished.
func (s *Sweeper) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}
