package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/change-of-scenery/placesync/internal/config"
	"github.com/change-of-scenery/placesync/internal/status"
)

func TestInitStoreMemory(t *testing.T) {
	cfg = &config.Config{}
	cfg.Store.Driver = "memory"

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.NoError(t, st.Ping(context.Background()))
	assert.NoError(t, st.Close(context.Background()))
}

func TestInitStoreUnsupportedDriver(t *testing.T) {
	cfg = &config.Config{}
	cfg.Store.Driver = "dynamo"

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestInitServiceRequiresKeys(t *testing.T) {
	cfg = &config.Config{}
	cfg.Store.Driver = "memory"

	st, err := initStore(context.Background())
	require.NoError(t, err)
	feed := status.NewFeed(nil)

	_, err = initService(st, feed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outscraper API key")

	cfg.Outscraper.Key = "os-key"
	_, err = initService(st, feed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yelp API key")

	cfg.Yelp.Key = "yelp-key"
	svc, err := initService(st, feed)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}
