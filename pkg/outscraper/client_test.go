package outscraper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-api-key", WithBaseURL(srv.URL))
}

func TestGoogleReviews(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus string
		wantErr    bool
		wantAPIErr bool
		wantCode   int
	}{
		{
			name: "happy path",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/maps/reviews-v3", r.URL.Path)
				assert.Equal(t, "test-api-key", r.Header.Get("X-API-KEY"))

				q := r.URL.Query()
				assert.Equal(t, "ChIJplace", q.Get("query"))
				assert.Equal(t, "status,id,name,reviews_data", q.Get("fields"))
				assert.Equal(t, "5", q.Get("reviewsLimit"))
				assert.Equal(t, "newest", q.Get("sort"))
				assert.Equal(t, "true", q.Get("ignoreEmpty"))

				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]any{
					"status": StatusSuccess,
					"id":     "req-1",
					"data":   []map[string]any{{"name": "Tatte Bakery"}},
				})
			},
			wantStatus: StatusSuccess,
		},
		{
			name: "pending job",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]any{"status": StatusPending, "id": "req-2"})
			},
			wantStatus: StatusPending,
		},
		{
			name: "auth error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"Unauthorized"}`))
			},
			wantErr:    true,
			wantAPIErr: true,
			wantCode:   401,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"internal server error"}`))
			},
			wantErr:    true,
			wantAPIErr: true,
			wantCode:   500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, tt.handler)
			resp, err := c.GoogleReviews(context.Background(), GoogleReviewsRequest{
				Query:        "ChIJplace",
				Fields:       GoogleReviewFields,
				ReviewsLimit: 5,
				Sort:         "newest",
				IgnoreEmpty:  true,
			})

			if tt.wantErr {
				require.Error(t, err)
				if tt.wantAPIErr {
					var apiErr *APIError
					require.ErrorAs(t, err, &apiErr)
					assert.Equal(t, tt.wantCode, apiErr.StatusCode)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.Status)
		})
	}
}

func TestYelpReviews(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/yelp/reviews", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "yelp-biz-1", q.Get("query"))
		assert.Equal(t, "5", q.Get("limit"))
		assert.Equal(t, "false", q.Get("async"))
		assert.Equal(t, "date_desc", q.Get("sort"))

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status": StatusSuccess,
			"data":   [][]map[string]any{{{"review_text": "Great pastries."}}},
		})
	})

	resp, err := c.YelpReviews(context.Background(), YelpReviewsRequest{
		Query: "yelp-biz-1",
		Limit: 5,
		Sort:  "date_desc",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, resp.Status)

	reviews, err := DecodeYelpReviews(resp)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Great pastries.", reviews[0].Text)
}

func TestGetRequest(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/requests/req-abc", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{"status": StatusPending, "id": "req-abc"})
	})

	resp, err := c.GetRequest(context.Background(), "req-abc")
	require.NoError(t, err)
	assert.True(t, resp.Pending())
	assert.Equal(t, "req-abc", resp.ID)
}

func TestDecodeGooglePlaces(t *testing.T) {
	raw := `{
		"status": "Success",
		"id": "req-1",
		"data": [{
			"name": "Tatte Bakery",
			"site": "https://tattebakery.com",
			"street": "70 Charles St",
			"phone": "+1 301-555-0100",
			"latitude": 42.3582,
			"longitude": -71.0707,
			"type": "Bakery",
			"working_hours": {"Sunday": "8AM-5PM"},
			"rating": 4.6,
			"reviews": 812,
			"reviews_data": [{
				"review_text": "Best almond croissant in Boston.",
				"owner_answer": "Thank you!",
				"review_link": "https://goo.gl/maps/r1",
				"author_title": "Dana",
				"author_image": "https://img/r1.jpg",
				"review_rating": 5,
				"review_datetime_utc": "03/14/2024 10:22:01"
			}]
		}]
	}`

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	places, err := DecodeGooglePlaces(&resp)
	require.NoError(t, err)
	require.Len(t, places, 1)

	p := places[0]
	assert.Equal(t, "Tatte Bakery", p.Name)
	assert.Equal(t, 812, p.Reviews)
	require.Len(t, p.ReviewsData, 1)
	assert.Equal(t, "Dana", p.ReviewsData[0].AuthorName)
	assert.Equal(t, 5.0, p.ReviewsData[0].Rating)
}

func TestDecodeGooglePlaces_NotSuccess(t *testing.T) {
	_, err := DecodeGooglePlaces(&Response{Status: StatusPending})
	assert.Error(t, err)
}

func TestDecodeYelpReviews_EmptyData(t *testing.T) {
	reviews, err := DecodeYelpReviews(&Response{Status: StatusSuccess, Data: []byte(`[]`)})
	require.NoError(t, err)
	assert.Empty(t, reviews)
}
