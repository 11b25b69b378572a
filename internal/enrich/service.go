// Package enrich runs the per-place refresh cycle: fetch provider
// data through the scrape API, normalize it, and upsert place fields
// and review records.
package enrich

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/change-of-scenery/placesync/internal/model"
	"github.com/change-of-scenery/placesync/internal/normalize"
	"github.com/change-of-scenery/placesync/internal/resilience"
	"github.com/change-of-scenery/placesync/internal/status"
	"github.com/change-of-scenery/placesync/internal/store"
	"github.com/change-of-scenery/placesync/pkg/outscraper"
	"github.com/change-of-scenery/placesync/pkg/yelp"
)

// Outcome summarizes one place's refresh cycle. A failed provider pass
// never aborts the other, and no error propagates past the place; the
// scheduler folds outcomes into run totals.
type Outcome struct {
	Place         string
	GoogleDone    bool
	YelpDone      bool
	GoogleErr     error
	YelpErr       error
	ReviewsStored int
}

// Failed reports whether both provider passes were attempted and failed.
func (o Outcome) Failed() bool {
	return o.GoogleErr != nil && (o.YelpErr != nil || !o.YelpDone)
}

// Option configures the Service.
type Option func(*Service)

// WithRetryConfig overrides the retry settings for scrape submissions.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(s *Service) {
		s.retry = cfg
	}
}

// WithPollOptions overrides the job polling settings.
func WithPollOptions(opts ...outscraper.PollOption) Option {
	return func(s *Service) {
		s.pollOpts = opts
	}
}

// WithRegion overrides the region suffix appended to area names in
// Yelp location queries.
func WithRegion(region string) Option {
	return func(s *Service) {
		s.region = region
	}
}

// Service drives the full refresh cycle for a single place.
type Service struct {
	scraper  outscraper.Client
	yelp     yelp.Client
	store    store.Store
	feed     *status.Feed
	retry    resilience.RetryConfig
	pollOpts []outscraper.PollOption
	region   string
	log      *zap.Logger
}

// NewService creates an enrichment service.
func NewService(scraper outscraper.Client, yelpClient yelp.Client, st store.Store, feed *status.Feed, opts ...Option) *Service {
	s := &Service{
		scraper: scraper,
		yelp:    yelpClient,
		store:   st,
		feed:    feed,
		retry:   resilience.DefaultRetryConfig(),
		region:  "MA",
		log:     zap.L().With(zap.String("component", "enrich")),
	}
	s.retry.OnRetry = resilience.RetryLogger("outscraper", "submit")
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnrichPlace runs the Google pass and then the Yelp pass for one
// place. Each stage that fails is logged and recorded on the Outcome;
// later stages of the same pass are skipped, but the other provider's
// pass still runs. This keeps a single place's failure from ever
// blocking the rest of an area refresh.
func (s *Service) EnrichPlace(ctx context.Context, place model.Place) Outcome {
	out := Outcome{Place: place.Name}

	if place.GooglePlaceID != "" {
		stored, err := s.enrichGoogle(ctx, place)
		out.ReviewsStored += stored
		if err != nil {
			out.GoogleErr = err
			s.log.Warn("google pass failed",
				zap.String("place", place.Name),
				zap.Error(err),
			)
		} else {
			out.GoogleDone = true
		}
	}

	if place.YelpPlaceID != "" {
		stored, err := s.enrichYelp(ctx, place)
		out.ReviewsStored += stored
		if err != nil {
			out.YelpErr = err
			s.log.Warn("yelp pass failed",
				zap.String("place", place.Name),
				zap.Error(err),
			)
		} else {
			out.YelpDone = true
		}
	}

	return out
}

// enrichGoogle runs metadata upsert, stale-review delete, and review
// re-insert for the Google provider. The delete and insert are not
// wrapped in a transaction; a failure in between leaves the place
// temporarily without reviews, which the consuming UI tolerates.
func (s *Service) enrichGoogle(ctx context.Context, place model.Place) (int, error) {
	meta, err := s.fetchGoogle(ctx, place.GooglePlaceID, outscraper.GooglePlaceFields)
	if err != nil {
		return 0, eris.Wrap(err, "fetch place metadata")
	}

	if err := s.store.UpdatePlaceGoogleData(ctx, place.ID, mapGoogleData(meta)); err != nil {
		return 0, eris.Wrap(err, "upsert place metadata")
	}
	s.feed.Set("Processed Google PlaceData for %s", place.Name)

	if _, err := s.store.DeleteReviews(ctx, model.ProviderGoogle, place.GooglePlaceID); err != nil {
		return 0, eris.Wrap(err, "delete stale reviews")
	}

	data, err := s.fetchGoogle(ctx, place.GooglePlaceID, outscraper.GoogleReviewFields)
	if err != nil {
		return 0, eris.Wrap(err, "fetch reviews")
	}

	reviews := normalize.Google(place.GooglePlaceID, data.ReviewsData, len(data.ReviewsData))
	stored := s.insertReviews(ctx, reviews)
	s.feed.Set("Processed Google Reviews for %s", place.Name)

	return stored, nil
}

// fetchGoogle submits a maps/reviews-v3 request and drives the scrape
// job to completion, returning the single queried place.
func (s *Service) fetchGoogle(ctx context.Context, placeID string, fields []string) (*outscraper.GooglePlace, error) {
	resp, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*outscraper.Response, error) {
		return s.scraper.GoogleReviews(ctx, outscraper.GoogleReviewsRequest{
			Query:        placeID,
			Fields:       fields,
			ReviewsLimit: 5,
			Sort:         "newest",
			IgnoreEmpty:  true,
		})
	})
	if err != nil {
		return nil, err
	}

	resp, err = outscraper.Poll(ctx, s.scraper, resp, s.pollOpts...)
	if err != nil {
		return nil, err
	}

	places, err := outscraper.DecodeGooglePlaces(resp)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, eris.Errorf("empty payload for place %s", placeID)
	}
	return &places[0], nil
}

// enrichYelp refreshes Yelp business fields via the Fusion search,
// then replaces the stored Yelp reviews from the scrape API.
func (s *Service) enrichYelp(ctx context.Context, place model.Place) (int, error) {
	search, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*yelp.SearchResponse, error) {
		return s.yelp.SearchBusinesses(ctx, yelp.SearchRequest{
			Term:      simpleName(place.Name, place.Area),
			Location:  place.Area + ", " + s.region,
			Latitude:  place.Location.Latitude,
			Longitude: place.Location.Longitude,
			Radius:    1000,
			Limit:     1,
		})
	})
	if err != nil {
		return 0, eris.Wrap(err, "yelp business search")
	}

	if len(search.Businesses) > 0 {
		b := search.Businesses[0]
		err := s.store.UpdatePlaceYelpData(ctx, place.ID, model.YelpData{
			Rating:   b.Rating,
			Reviews:  strconv.Itoa(b.ReviewCount),
			Phone:    b.DisplayPhone,
			Price:    b.Price,
			URL:      b.URL,
			Category: b.CategoryList(),
		})
		if err != nil {
			return 0, eris.Wrap(err, "upsert yelp fields")
		}
		s.feed.Set("Processed Yelp PlaceData for %s", place.Name)
	}

	if _, err := s.store.DeleteReviews(ctx, model.ProviderYelp, place.YelpPlaceID); err != nil {
		return 0, eris.Wrap(err, "delete stale reviews")
	}

	resp, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*outscraper.Response, error) {
		return s.scraper.YelpReviews(ctx, outscraper.YelpReviewsRequest{
			Query: place.YelpPlaceID,
			Limit: 5,
			Sort:  "date_desc",
		})
	})
	if err != nil {
		return 0, eris.Wrap(err, "fetch reviews")
	}

	resp, err = outscraper.Poll(ctx, s.scraper, resp, s.pollOpts...)
	if err != nil {
		return 0, eris.Wrap(err, "poll reviews")
	}

	raw, err := outscraper.DecodeYelpReviews(resp)
	if err != nil {
		return 0, eris.Wrap(err, "decode reviews")
	}

	stored := s.insertReviews(ctx, normalize.Yelp(place.YelpPlaceID, raw))
	s.feed.Set("Processed Yelp Reviews for %s", place.Name)

	return stored, nil
}

// insertReviews writes each normalized review individually; a failed
// insert is logged and does not abort the remaining inserts.
func (s *Service) insertReviews(ctx context.Context, reviews []model.Review) int {
	stored := 0
	for _, r := range reviews {
		if err := s.store.InsertReview(ctx, r); err != nil {
			s.log.Warn("insert review failed",
				zap.String("provider", string(r.Provider)),
				zap.String("place_id", r.PlaceID),
				zap.String("link", r.Link),
				zap.Error(err),
			)
			continue
		}
		stored++
	}
	return stored
}

// mapGoogleData converts a scrape payload into the stored place fields.
func mapGoogleData(p *outscraper.GooglePlace) model.GoogleData {
	d := model.GoogleData{
		Website:     p.Site,
		Address:     p.Street,
		Description: p.Type,
		Phone:       normalize.FormatPhone(p.Phone),
		Rating:      p.Rating,
		Reviews:     p.Reviews,
		Location: model.GeoPoint{
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
		},
	}
	if len(p.WorkingHours) > 0 {
		d.Hours = normalize.MapHours(p.WorkingHours)
	}
	return d
}

// simpleName strips the trailing area name some curated places carry
// (e.g. "The Paramount Beacon Hill" within Beacon Hill).
func simpleName(name, area string) string {
	return strings.ReplaceAll(name, " "+area, "")
}
