// Package model defines the entities shared across the enrichment pipeline.
package model

import (
	"strings"
	"time"
)

// Provider identifies an external review source.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderYelp   Provider = "yelp"
)

// GeoPoint is a latitude/longitude pair.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Place represents one curated point of interest within a named area.
// Places are mutated by the enrichment service and never deleted by it.
type Place struct {
	ID            string   `json:"id" bson:"_id,omitempty"`
	Name          string   `json:"name" bson:"name"`
	Area          string   `json:"area" bson:"area"`
	Address       string   `json:"address" bson:"address"`
	Phone         string   `json:"phone" bson:"phone"`
	Website       string   `json:"website" bson:"website"`
	Description   string   `json:"description" bson:"description"`
	Location      GeoPoint `json:"location" bson:"location"`
	GooglePlaceID string   `json:"google_place_id" bson:"google_place_id"`
	YelpPlaceID   string   `json:"yelp_place_id" bson:"yelp_place_id"`

	GoogleRating  float64 `json:"google_rating" bson:"google_rating"`
	GoogleReviews int     `json:"google_reviews" bson:"google_reviews"`

	YelpRating   float64 `json:"yelp_rating" bson:"yelp_rating"`
	YelpReviews  string  `json:"yelp_reviews" bson:"yelp_reviews"`
	YelpPrice    string  `json:"yelp_price" bson:"yelp_price"`
	YelpCategory string  `json:"yelp_category" bson:"yelp_category"`
	YelpURL      string  `json:"yelp_url" bson:"yelp_url"`

	// Hours is a 7-entry "dayIndex,hours" table joined by ";",
	// Sunday(0) through Saturday(6).
	Hours string `json:"hours" bson:"hours"`
}

// GoogleData holds the place fields refreshed from the Google scrape.
type GoogleData struct {
	Website     string
	Address     string
	Location    GeoPoint
	Description string
	Phone       string
	Rating      float64
	Reviews     int
	Hours       string
}

// YelpData holds the place fields refreshed from the Yelp business search.
type YelpData struct {
	Rating   float64
	Reviews  string
	Phone    string
	Price    string
	URL      string
	Category string
}

// RefreshGate decides whether a place is due for enrichment.
type RefreshGate func(Place) bool

// AddressEmpty is the default refresh gate: a place with a populated
// address is treated as already enriched. There is no last-refreshed
// timestamp, so this is the sole re-enrichment trigger; callers that
// need periodic refresh should supply their own gate.
func AddressEmpty(p Place) bool {
	return strings.TrimSpace(p.Address) == ""
}

// Always is a gate that enriches every place regardless of state.
func Always(Place) bool { return true }

// Review represents one third-party review scoped to a provider.
type Review struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Provider    Provider  `json:"provider" bson:"provider"`
	PlaceID     string    `json:"place_id" bson:"place_id"` // provider place id
	AuthorName  string    `json:"author_name" bson:"author_name"`
	AuthorImage string    `json:"author_image,omitempty" bson:"author_image,omitempty"`
	Date        time.Time `json:"date" bson:"date"`
	Rating      float64   `json:"rating" bson:"rating"`
	Text        string    `json:"text" bson:"text"`
	Link        string    `json:"link,omitempty" bson:"link,omitempty"` // Google permalink, dedup key
}
