// Package status exposes the pipeline's single observability surface:
// a current-message string the consuming UI shows in a transient
// banner. Messages are overwritten, never queued.
package status

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Feed holds the current pipeline status message.
type Feed struct {
	mu       sync.Mutex
	current  string
	onChange func(string)
}

// NewFeed creates an empty feed. onChange, when non-nil, is invoked
// with each new message while the feed lock is not held.
func NewFeed(onChange func(string)) *Feed {
	return &Feed{onChange: onChange}
}

// Set formats and publishes a new current message, replacing the
// previous one.
func (f *Feed) Set(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	f.mu.Lock()
	f.current = msg
	onChange := f.onChange
	f.mu.Unlock()

	zap.L().Debug("status", zap.String("message", msg))
	if onChange != nil {
		onChange(msg)
	}
}

// Current returns the most recently published message.
func (f *Feed) Current() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}
