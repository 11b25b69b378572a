package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/change-of-scenery/placesync/internal/enrich"
	"github.com/change-of-scenery/placesync/internal/status"
	"github.com/change-of-scenery/placesync/internal/store"
	"github.com/change-of-scenery/placesync/pkg/outscraper"
	"github.com/change-of-scenery/placesync/pkg/yelp"
)

// initStore opens the configured store backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "mongo":
		st, err := store.NewMongoStore(ctx, cfg.Store.URI, cfg.Store.Database)
		if err != nil {
			return nil, eris.Wrap(err, "connect to mongo store")
		}
		return st, nil
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, eris.Errorf("unsupported store driver: %q", cfg.Store.Driver)
	}
}

// initService wires the enrichment service from config: scraper client,
// yelp client, store, and status feed.
func initService(st store.Store, feed *status.Feed) (*enrich.Service, error) {
	if cfg.Outscraper.Key == "" {
		return nil, eris.New("outscraper API key not configured (set PLACESYNC_OUTSCRAPER_KEY)")
	}
	if cfg.Yelp.Key == "" {
		return nil, eris.New("yelp API key not configured (set PLACESYNC_YELP_KEY)")
	}

	scraper := outscraper.NewClient(cfg.Outscraper.Key,
		outscraper.WithBaseURL(cfg.Outscraper.BaseURL))
	yelpClient := yelp.NewClient(cfg.Yelp.Key,
		yelp.WithBaseURL(cfg.Yelp.BaseURL))

	svc := enrich.NewService(scraper, yelpClient, st, feed,
		enrich.WithRegion(cfg.Refresh.Region),
		enrich.WithPollOptions(
			outscraper.WithPollInterval(time.Duration(cfg.Outscraper.PollIntervalSecs)*time.Second),
			outscraper.WithPollTimeout(time.Duration(cfg.Outscraper.PollTimeoutSecs)*time.Second),
			outscraper.WithMaxAttempts(cfg.Outscraper.PollMaxAttempts),
		))

	return svc, nil
}
