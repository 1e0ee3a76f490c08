// Package throttle paces calls to remote release-note sources.
//
// A Throttle pairs a token bucket with a pause window. The bucket keeps the
// steady rate under the provider quota; the window is opened when the
// provider says the quota is spent and holds every caller until it closes.
package throttle

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultPause applies when a provider rejects a call without saying when to
// retry.
const DefaultPause = time.Minute

// Throttle is safe for concurrent use.
type Throttle struct {
	bucket *rate.Limiter

	mu    sync.Mutex
	until time.Time
}

// New returns a throttle allowing perSecond calls with the given burst.
func New(perSecond float64, burst int) *Throttle {
	return &Throttle{bucket: rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))}
}

// Wait blocks until the pause window has closed and a token is available.
func (t *Throttle) Wait(ctx context.Context) error {
	if d := time.Until(t.PausedUntil()); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return t.bucket.Wait(ctx)
}

// PauseUntil holds callers until at. An earlier time never shortens an
// open window.
func (t *Throttle) PauseUntil(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if at.After(t.until) {
		t.until = at
	}
}

// PauseFor holds callers for d, or DefaultPause when d is not positive.
func (t *Throttle) PauseFor(d time.Duration) {
	if d <= 0 {
		d = DefaultPause
	}
	t.PauseUntil(time.Now().Add(d))
}

// PausedUntil returns the end of the pause window, zero when none was set.
func (t *Throttle) PausedUntil() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.until
}
