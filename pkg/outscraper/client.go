// Package outscraper is a client for the Outscraper reviews API.
//
// Scrape requests are asynchronous server-side: a submission may come
// back Pending with a request id, which is then polled via GetRequest
// until it reaches a terminal Success or Error status (see Poll).
package outscraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.app.outscraper.com"

// Job statuses reported by the API.
const (
	StatusPending = "Pending"
	StatusSuccess = "Success"
	StatusError   = "Error"
)

// Client defines the Outscraper API operations used by the pipeline.
type Client interface {
	GoogleReviews(ctx context.Context, req GoogleReviewsRequest) (*Response, error)
	YelpReviews(ctx context.Context, req YelpReviewsRequest) (*Response, error)
	GetRequest(ctx context.Context, id string) (*Response, error)
}

// GoogleReviewsRequest is the query for GET /maps/reviews-v3.
type GoogleReviewsRequest struct {
	Query        string   // Google place id
	Fields       []string // response field list
	ReviewsLimit int      // max reviews per place; 0 means server default
	Sort         string   // e.g. "newest"
	IgnoreEmpty  bool
}

// YelpReviewsRequest is the query for GET /yelp/reviews.
type YelpReviewsRequest struct {
	Query string // Yelp business id
	Limit int
	Sort  string // e.g. "date_desc"
}

// Response is the common envelope for every Outscraper call. Data is
// left raw because its shape differs per provider; use the Decode
// helpers in types.go.
type Response struct {
	Status string          `json:"status"`
	ID     string          `json:"id"`
	Data   json.RawMessage `json:"data"`
}

// Pending reports whether the job is still running server-side.
func (r *Response) Pending() bool { return r.Status == StatusPending }

// APIError is returned when the API responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("outscraper: HTTP %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Outscraper client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) GoogleReviews(ctx context.Context, req GoogleReviewsRequest) (*Response, error) {
	q := url.Values{}
	q.Set("query", req.Query)
	if len(req.Fields) > 0 {
		q.Set("fields", strings.Join(req.Fields, ","))
	}
	if req.ReviewsLimit > 0 {
		q.Set("reviewsLimit", strconv.Itoa(req.ReviewsLimit))
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	if req.IgnoreEmpty {
		q.Set("ignoreEmpty", "true")
	}

	var resp Response
	if err := c.get(ctx, "/maps/reviews-v3?"+q.Encode(), &resp); err != nil {
		return nil, eris.Wrap(err, "outscraper: google reviews")
	}
	return &resp, nil
}

func (c *httpClient) YelpReviews(ctx context.Context, req YelpReviewsRequest) (*Response, error) {
	q := url.Values{}
	q.Set("query", req.Query)
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	q.Set("async", "false")
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}

	var resp Response
	if err := c.get(ctx, "/yelp/reviews?"+q.Encode(), &resp); err != nil {
		return nil, eris.Wrap(err, "outscraper: yelp reviews")
	}
	return &resp, nil
}

func (c *httpClient) GetRequest(ctx context.Context, id string) (*Response, error) {
	var resp Response
	if err := c.get(ctx, "/requests/"+url.PathEscape(id), &resp); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("outscraper: get request %s", id))
	}
	return &resp, nil
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "decode response")
	}

	return nil
}
