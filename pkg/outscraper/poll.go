package outscraper

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultPollInitial  = 2 * time.Second
	defaultPollCap      = 15 * time.Second
	defaultPollTimeout  = 5 * time.Minute
	defaultPollAttempts = 30
)

// PollOption configures polling behavior.
type PollOption func(*pollConfig)

type pollConfig struct {
	initial     time.Duration
	cap         time.Duration
	timeout     time.Duration
	maxAttempts int
}

func defaultPollConfig() pollConfig {
	return pollConfig{
		initial:     defaultPollInitial,
		cap:         defaultPollCap,
		timeout:     defaultPollTimeout,
		maxAttempts: defaultPollAttempts,
	}
}

// WithPollInterval overrides the initial poll interval.
func WithPollInterval(d time.Duration) PollOption {
	return func(c *pollConfig) {
		c.initial = d
	}
}

// WithPollCap overrides the maximum poll interval.
func WithPollCap(d time.Duration) PollOption {
	return func(c *pollConfig) {
		c.cap = d
	}
}

// WithPollTimeout overrides the default timeout (applied only if the
// parent context has no deadline).
func WithPollTimeout(d time.Duration) PollOption {
	return func(c *pollConfig) {
		c.timeout = d
	}
}

// WithMaxAttempts caps the number of status lookups for one job.
func WithMaxAttempts(n int) PollOption {
	return func(c *pollConfig) {
		c.maxAttempts = n
	}
}

// Poll drives an asynchronous scrape job to a terminal state. resp is
// the response from the initial submission; while it reports Pending,
// Poll re-issues a status lookup using the most recent request id (a
// Pending response may carry a fresh id). Backoff is exponential,
// 2s -> 4s -> 8s -> 15s (capped), bounded by both a maximum attempt
// count and a context deadline.
//
// A Success response is returned as-is; an Error status or an exhausted
// attempt budget is a terminal error for this job.
func Poll(ctx context.Context, client Client, resp *Response, opts ...PollOption) (*Response, error) {
	cfg := defaultPollConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	if resp == nil {
		return nil, eris.New("outscraper: poll on nil response")
	}

	id := resp.ID
	interval := cfg.initial
	for attempt := 0; ; attempt++ {
		switch resp.Status {
		case StatusSuccess:
			return resp, nil
		case StatusError:
			return nil, eris.Errorf("outscraper: request %s failed", id)
		case StatusPending:
			// fall through to re-poll
		default:
			return nil, eris.Errorf("outscraper: request %s returned unknown status %q", id, resp.Status)
		}

		if attempt >= cfg.maxAttempts {
			return nil, eris.Errorf("outscraper: request %s still pending after %d attempts", id, cfg.maxAttempts)
		}

		select {
		case <-ctx.Done():
			return nil, eris.Wrap(ctx.Err(), fmt.Sprintf("outscraper: poll request %s timed out", id))
		case <-time.After(interval):
		}

		var err error
		resp, err = client.GetRequest(ctx, id)
		if err != nil {
			return nil, eris.Wrap(err, fmt.Sprintf("outscraper: poll request %s", id))
		}
		if resp.ID != "" {
			id = resp.ID
		}

		interval *= 2
		if interval > cfg.cap {
			interval = cfg.cap
		}
	}
}
