package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/change-of-scenery/placesync/internal/enrich"
	"github.com/change-of-scenery/placesync/internal/model"
	"github.com/change-of-scenery/placesync/internal/status"
	"github.com/change-of-scenery/placesync/internal/store"
)

// mockEnricher records which places were enriched.
type mockEnricher struct {
	mu       sync.Mutex
	enriched []string
	outcome  func(place model.Place) enrich.Outcome
}

func (m *mockEnricher) EnrichPlace(_ context.Context, place model.Place) enrich.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enriched = append(m.enriched, place.Name)
	if m.outcome != nil {
		return m.outcome(place)
	}
	return enrich.Outcome{Place: place.Name, GoogleDone: true, YelpDone: true}
}

func (m *mockEnricher) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.enriched...)
}

func seedArea(t *testing.T) *store.MemoryStore {
	t.Helper()
	st := store.NewMemoryStore()
	st.SeedPlace(model.Place{Name: "Tatte Bakery", Area: "Beacon Hill", GooglePlaceID: "g-1"})
	st.SeedPlace(model.Place{Name: "Charles Street Supply", Area: "Beacon Hill", GooglePlaceID: "g-2", Address: "54 Charles St"})
	st.SeedPlace(model.Place{Name: "The Paramount", Area: "Beacon Hill", GooglePlaceID: "g-3"})
	st.SeedPlace(model.Place{Name: "Union Oyster House", Area: "Downtown", GooglePlaceID: "g-4"})
	return st
}

func newScheduler(st *store.MemoryStore, e Enricher, opts ...Option) *Scheduler {
	opts = append([]Option{WithInterval(time.Millisecond)}, opts...)
	return New(st, e, status.NewFeed(nil), opts...)
}

func TestRefreshArea_SkipsEnrichedPlaces(t *testing.T) {
	st := seedArea(t)
	enricher := &mockEnricher{}
	s := newScheduler(st, enricher)

	run, err := s.RefreshArea(context.Background(), "Beacon Hill")
	require.NoError(t, err)

	// The place with a populated address is never re-enriched but
	// still counts toward the processed total.
	assert.Equal(t, 3, run.Processed)
	assert.Equal(t, 2, run.Enriched)
	assert.Equal(t, 1, run.Skipped)
	assert.NotContains(t, enricher.names(), "Charles Street Supply")
	assert.ElementsMatch(t, []string{"Tatte Bakery", "The Paramount"}, enricher.names())
}

func TestRefreshArea_ForceGateEnrichesEverything(t *testing.T) {
	st := seedArea(t)
	enricher := &mockEnricher{}
	s := newScheduler(st, enricher, WithGate(model.Always))

	run, err := s.RefreshArea(context.Background(), "Beacon Hill")
	require.NoError(t, err)
	assert.Equal(t, 3, run.Enriched)
	assert.Equal(t, 0, run.Skipped)
	assert.Contains(t, enricher.names(), "Charles Street Supply")
}

func TestRefreshArea_CountsFailures(t *testing.T) {
	st := seedArea(t)
	enricher := &mockEnricher{
		outcome: func(place model.Place) enrich.Outcome {
			if place.Name == "Tatte Bakery" {
				return enrich.Outcome{Place: place.Name, GoogleErr: assert.AnError}
			}
			return enrich.Outcome{Place: place.Name, GoogleDone: true}
		},
	}
	s := newScheduler(st, enricher)

	run, err := s.RefreshArea(context.Background(), "Beacon Hill")
	require.NoError(t, err)
	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, 1, run.Enriched)

	// A failed place never stops the walk.
	assert.Len(t, enricher.names(), 2)
}

func TestRefreshArea_EmptyArea(t *testing.T) {
	st := store.NewMemoryStore()
	s := newScheduler(st, &mockEnricher{})

	run, err := s.RefreshArea(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.Equal(t, 0, run.Processed)
}

func TestRefreshArea_ContextCancellation(t *testing.T) {
	st := seedArea(t)
	ctx, cancel := context.WithCancel(context.Background())

	enricher := &mockEnricher{
		outcome: func(place model.Place) enrich.Outcome {
			cancel() // cancel mid-run after the first place
			return enrich.Outcome{Place: place.Name, GoogleDone: true}
		},
	}
	// A long interval makes the second limiter wait observe the cancel.
	s := New(st, enricher, status.NewFeed(nil), WithInterval(time.Hour))

	_, err := s.RefreshArea(ctx, "Beacon Hill")
	require.Error(t, err)
	assert.Len(t, enricher.names(), 1)
}

func TestRefreshArea_RunIDsAreDistinct(t *testing.T) {
	st := seedArea(t)
	s := newScheduler(st, &mockEnricher{})

	first, err := s.RefreshArea(context.Background(), "Beacon Hill")
	require.NoError(t, err)
	second, err := s.RefreshArea(context.Background(), "Beacon Hill")
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRefreshAreas_IsolatesAreaFailures(t *testing.T) {
	st := seedArea(t)
	enricher := &mockEnricher{}
	s := newScheduler(st, enricher)

	results, err := s.RefreshAreas(context.Background(), []string{"Beacon Hill", "Downtown"}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Beacon Hill", results[0].Area)
	assert.Equal(t, "Downtown", results[1].Area)
	assert.Contains(t, enricher.names(), "Union Oyster House")
}
