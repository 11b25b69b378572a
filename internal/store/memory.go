package store

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/change-of-scenery/placesync/internal/model"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs tests and
// local dry runs; semantics match the mongo driver.
type MemoryStore struct {
	mu      sync.Mutex
	places  map[string]model.Place
	reviews []model.Review
	nextID  int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{places: make(map[string]model.Place)}
}

// SeedPlace inserts or replaces a place directly, assigning an id when
// absent. Test/setup helper; the pipeline itself never creates places.
func (s *MemoryStore) SeedPlace(p model.Place) model.Place {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		s.nextID++
		p.ID = "place-" + strconv.Itoa(s.nextID)
	}
	s.places[p.ID] = p
	return p
}

func (s *MemoryStore) ListPlacesByArea(_ context.Context, area string) ([]model.Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Place
	for _, p := range s.places {
		if p.Area == area {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) ListAreas(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	var areas []string
	for _, p := range s.places {
		if p.Area == "" {
			continue
		}
		if _, ok := seen[p.Area]; !ok {
			seen[p.Area] = struct{}{}
			areas = append(areas, p.Area)
		}
	}
	sort.Strings(areas)
	return areas, nil
}

func (s *MemoryStore) GetPlaceByName(_ context.Context, name string) (*model.Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.places {
		if p.Name == name {
			out := p
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdatePlaceGoogleData(_ context.Context, id string, d model.GoogleData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.places[id]
	if !ok {
		return ErrNotFound
	}
	p.Website = d.Website
	p.Address = d.Address
	p.Location = d.Location
	p.Description = d.Description
	p.Phone = d.Phone
	p.GoogleRating = d.Rating
	p.GoogleReviews = d.Reviews
	p.Hours = d.Hours
	s.places[id] = p
	return nil
}

func (s *MemoryStore) UpdatePlaceYelpData(_ context.Context, id string, d model.YelpData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.places[id]
	if !ok {
		return ErrNotFound
	}
	p.YelpRating = d.Rating
	p.YelpReviews = d.Reviews
	p.Phone = d.Phone
	p.YelpPrice = d.Price
	p.YelpURL = d.URL
	p.YelpCategory = d.Category
	s.places[id] = p
	return nil
}

func (s *MemoryStore) DeleteReviews(_ context.Context, provider model.Provider, placeID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.reviews[:0]
	deleted := 0
	for _, r := range s.reviews {
		if r.Provider == provider && r.PlaceID == placeID {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.reviews = kept
	return deleted, nil
}

func (s *MemoryStore) InsertReview(_ context.Context, review model.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	review.ID = "review-" + strconv.Itoa(s.nextID)
	s.reviews = append(s.reviews, review)
	return nil
}

func (s *MemoryStore) ListReviews(_ context.Context, provider model.Provider, placeID string) ([]model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Review
	for _, r := range s.reviews {
		if r.Provider == provider && r.PlaceID == placeID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *MemoryStore) Ping(context.Context) error  { return nil }
func (s *MemoryStore) Close(context.Context) error { return nil }
