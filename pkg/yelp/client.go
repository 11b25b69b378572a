// Package yelp is a minimal client for the Yelp Fusion API.
package yelp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.yelp.com/v3"

// Client performs Yelp Fusion API operations.
type Client interface {
	SearchBusinesses(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest is the query for GET /businesses/search.
type SearchRequest struct {
	Term      string
	Location  string // e.g. "Beacon Hill, MA"
	Latitude  float64
	Longitude float64
	Radius    int // meters
	Limit     int
}

// SearchResponse is the response from the business search.
type SearchResponse struct {
	Businesses []Business `json:"businesses"`
	Total      int        `json:"total"`
}

// Business is one matched business.
type Business struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Rating       float64    `json:"rating"`
	ReviewCount  int        `json:"review_count"`
	DisplayPhone string     `json:"display_phone"`
	Price        string     `json:"price"`
	URL          string     `json:"url"`
	Categories   []Category `json:"categories"`
}

// Category is a business category.
type Category struct {
	Alias string `json:"alias"`
	Title string `json:"title"`
}

// CategoryList joins category titles with ", " in encounter order.
func (b Business) CategoryList() string {
	out := ""
	for _, c := range b.Categories {
		if out == "" {
			out = c.Title
		} else {
			out += ", " + c.Title
		}
	}
	return out
}

// APIError is returned when the API responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return "yelp: HTTP " + strconv.Itoa(e.StatusCode) + ": " + e.Body
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Yelp Fusion client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) SearchBusinesses(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("term", req.Term)
	if req.Location != "" {
		q.Set("location", req.Location)
	}
	if req.Latitude != 0 || req.Longitude != 0 {
		q.Set("latitude", strconv.FormatFloat(req.Latitude, 'f', -1, 64))
		q.Set("longitude", strconv.FormatFloat(req.Longitude, 'f', -1, 64))
	}
	if req.Radius > 0 {
		q.Set("radius", strconv.Itoa(req.Radius))
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/businesses/search?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "yelp: create request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "yelp: business search")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "yelp: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var out SearchResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, eris.Wrap(err, "yelp: decode response")
	}
	return &out, nil
}
