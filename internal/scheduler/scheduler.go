// Package scheduler walks every place in an area and drives the
// enrichment service for each, pacing requests against the external
// scrape API.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/change-of-scenery/placesync/internal/enrich"
	"github.com/change-of-scenery/placesync/internal/model"
	"github.com/change-of-scenery/placesync/internal/status"
	"github.com/change-of-scenery/placesync/internal/store"
)

// DefaultInterval is the pacing between places within one area.
const DefaultInterval = 5 * time.Second

// Enricher runs one place's refresh cycle.
type Enricher interface {
	EnrichPlace(ctx context.Context, place model.Place) enrich.Outcome
}

// RunResult summarizes one area refresh run. Counters are carried on
// the run itself rather than process-wide state, so overlapping runs
// cannot corrupt each other's progress tracking.
type RunResult struct {
	RunID     string        `json:"run_id"`
	Area      string        `json:"area"`
	Processed int           `json:"processed"`
	Enriched  int           `json:"enriched"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Option configures the Scheduler.
type Option func(*Scheduler)

// WithInterval sets the pacing between places.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithGate replaces the default address-empty refresh gate.
func WithGate(gate model.RefreshGate) Option {
	return func(s *Scheduler) {
		s.gate = gate
	}
}

// Scheduler refreshes all places within named areas.
type Scheduler struct {
	store    store.Store
	enricher Enricher
	feed     *status.Feed
	gate     model.RefreshGate
	interval time.Duration
	log      *zap.Logger
}

// New creates a Scheduler with the default gate and pacing.
func New(st store.Store, enricher Enricher, feed *status.Feed, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:    st,
		enricher: enricher,
		feed:     feed,
		gate:     model.AddressEmpty,
		interval: DefaultInterval,
		log:      zap.L().With(zap.String("component", "scheduler")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RefreshArea enumerates the area's places and runs the refresh cycle
// for each one passing the gate, spacing requests by the configured
// interval. A place's failure is counted and logged, never fatal; the
// walk stops early only on context cancellation.
func (s *Scheduler) RefreshArea(ctx context.Context, area string) (*RunResult, error) {
	run := &RunResult{
		RunID: uuid.NewString(),
		Area:  area,
	}
	start := time.Now()
	log := s.log.With(zap.String("run_id", run.RunID), zap.String("area", area))

	places, err := s.store.ListPlacesByArea(ctx, area)
	if err != nil {
		return nil, eris.Wrapf(err, "scheduler: list places for area %s", area)
	}
	if len(places) == 0 {
		log.Info("no places in area")
		run.Duration = time.Since(start)
		return run, nil
	}

	s.feed.Set("Loading reviews for %s...", area)
	log.Info("starting area refresh", zap.Int("places", len(places)))

	var processed, enriched, skipped, failed atomic.Int64
	limiter := rate.NewLimiter(rate.Every(s.interval), 1)

	for _, place := range places {
		processed.Add(1)

		if !s.gate(place) {
			skipped.Add(1)
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			run.fill(&processed, &enriched, &skipped, &failed, time.Since(start))
			return run, eris.Wrap(err, "scheduler: refresh cancelled")
		}

		out := s.enricher.EnrichPlace(ctx, place)
		if out.Failed() {
			failed.Add(1)
			continue
		}
		if out.GoogleDone || out.YelpDone {
			enriched.Add(1)
		}
	}

	run.fill(&processed, &enriched, &skipped, &failed, time.Since(start))
	s.feed.Set("Finished %s: %d of %d places refreshed", area, run.Enriched, run.Processed)
	log.Info("area refresh complete",
		zap.Int("processed", run.Processed),
		zap.Int("enriched", run.Enriched),
		zap.Int("skipped", run.Skipped),
		zap.Int("failed", run.Failed),
		zap.Duration("duration", run.Duration),
	)

	return run, nil
}

// RefreshAreas refreshes several areas with at most maxConcurrent in
// flight. One area's failure does not abort its siblings.
func (s *Scheduler) RefreshAreas(ctx context.Context, areas []string, maxConcurrent int) ([]RunResult, error) {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	results := make([]RunResult, len(areas))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, area := range areas {
		i, area := i, area
		g.Go(func() error {
			res, err := s.RefreshArea(gctx, area)
			if err != nil {
				s.log.Error("area refresh failed",
					zap.String("area", area),
					zap.Error(err),
				)
				if gctx.Err() != nil {
					return gctx.Err()
				}
				return nil
			}
			results[i] = *res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, eris.Wrap(err, "scheduler: refresh areas")
	}
	return results, nil
}

func (r *RunResult) fill(processed, enriched, skipped, failed *atomic.Int64, d time.Duration) {
	r.Processed = int(processed.Load())
	r.Enriched = int(enriched.Load())
	r.Skipped = int(skipped.Load())
	r.Failed = int(failed.Load())
	r.Duration = d
}
