// Package limiter implements fixed-decay-window attempt counting backed by a
// shared keyed counter store, so multiple server instances see the same
// counts. The window starts at the first recorded attempt and resets when the
// TTL lapses; this is a counter with expiry, not a sliding log.
package limiter

import (
	"context"
	"fmt"
	"time"
)

// Store is an atomic increment-with-expiry counter keyed by string.
type Store interface {
	// Hit increments the counter for key, starting the decay window on the
	// first hit, and returns the new attempt count.
	Hit(ctx context.Context, key string, decay time.Duration) (int, error)
	// Attempts returns the current count for key (0 if the window lapsed).
	Attempts(ctx context.Context, key string) (int, error)
	// AvailableIn returns the time until the counter for key resets.
	AvailableIn(ctx context.Context, key string) (time.Duration, error)
	// Clear removes the counter for key.
	Clear(ctx context.Context, key string) error
}

// ThrottledError reports a blocked attempt and how long to wait.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("too many attempts, retry in %s", e.RetryAfter)
}

// Limiter enforces a maximum number of attempts per key within a decay window.
type Limiter struct {
	store Store
	max   int
	decay time.Duration
}

func New(store Store, max int, decay time.Duration) *Limiter {
	return &Limiter{
		store: store,
		max:   max,
		decay: decay,
	}
}

// Check fails with a ThrottledError when the count for key has reached the
// maximum. It does not record an attempt; callers hit the counter themselves
// once the guarded action succeeds.
func (l *Limiter) Check(ctx context.Context, key string) error {
	attempts, err := l.store.Attempts(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read attempts: %w", err)
	}

	if attempts < l.max {
		return nil
	}

	retryAfter, err := l.store.AvailableIn(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read reset time: %w", err)
	}

	return &ThrottledError{RetryAfter: retryAfter}
}

// Hit records one attempt for key.
func (l *Limiter) Hit(ctx context.Context, key string) error {
	_, err := l.store.Hit(ctx, key, l.decay)
	return err
}

// Allow combines Check and Hit for callers that count every attempt,
// successful or not.
func (l *Limiter) Allow(ctx context.Context, key string) error {
	err := l.Check(ctx, key)
	if err != nil {
		return err
	}
	return l.Hit(ctx, key)
}

// Clear resets the counter for key.
func (l *Limiter) Clear(ctx context.Context, key string) error {
	return l.store.Clear(ctx, key)
}
