// Package store persists places and their reviews in a document
// database. The pipeline depends only on this minimal query/write
// contract, not on any particular engine.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/change-of-scenery/placesync/internal/model"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = eris.New("store: not found")

// Store defines the persistence interface for the enrichment pipeline.
type Store interface {
	// Places
	ListPlacesByArea(ctx context.Context, area string) ([]model.Place, error)
	ListAreas(ctx context.Context) ([]string, error)
	GetPlaceByName(ctx context.Context, name string) (*model.Place, error)
	UpdatePlaceGoogleData(ctx context.Context, id string, d model.GoogleData) error
	UpdatePlaceYelpData(ctx context.Context, id string, d model.YelpData) error

	// Reviews. A refresh cycle deletes every review for the
	// (provider, place) pair before inserting the new set; the two
	// steps are deliberately not transactional.
	DeleteReviews(ctx context.Context, provider model.Provider, placeID string) (int, error)
	InsertReview(ctx context.Context, review model.Review) error
	ListReviews(ctx context.Context, provider model.Provider, placeID string) ([]model.Review, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
