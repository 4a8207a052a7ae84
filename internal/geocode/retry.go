// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wneessen/promoter-route/internal/logger"
	"github.com/wneessen/promoter-route/internal/ratelimit"
)

const (
	// DefaultMaxRetries is the number of retries after the first failed attempt.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the pause before each retry.
	DefaultRetryDelay = time.Second

	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Observer receives geocoding events, e.g. for metrics.
type Observer interface {
	ObserveAttempt(provider, outcome string)
	ObserveCache(provider string, hit bool)
}

type nopObserver struct{}

func (nopObserver) ObserveAttempt(string, string) {}
func (nopObserver) ObserveCache(string, bool)     {}

// RetryPolicy controls how often and how fast failed lookups are repeated.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

// Retrier wraps a Geocoder with rate limiting and a bounded retry loop. Every attempt, including
// retries, waits for the limiter first.
type Retrier struct {
	coder    Geocoder
	limiter  ratelimit.Limiter
	policy   RetryPolicy
	logger   *logger.Logger
	observer Observer
}

// NewRetrier returns a Retrier for coder. A nil limiter disables rate limiting.
func NewRetrier(coder Geocoder, limiter ratelimit.Limiter, policy RetryPolicy, log *logger.Logger) *Retrier {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	return &Retrier{
		coder:    coder,
		limiter:  limiter,
		policy:   policy,
		logger:   log,
		observer: nopObserver{},
	}
}

// WithObserver sets the Observer that is notified about every attempt.
func (r *Retrier) WithObserver(o Observer) *Retrier {
	if o != nil {
		r.observer = o
	}
	return r
}

func (r *Retrier) Name() string {
	return r.coder.Name()
}

// Search looks up query with at most 1+MaxRetries attempts. Once all attempts are used up, the
// returned error wraps ErrAddressNotFound if the last attempt found no match and
// ErrGeocodingService together with the underlying error otherwise.
func (r *Retrier) Search(ctx context.Context, query string) (Location, error) {
	if strings.TrimSpace(query) == "" {
		return Location{}, ErrInvalidInput
	}

	attempts := r.policy.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 && r.policy.Delay > 0 {
			if err := sleepCtx(ctx, r.policy.Delay); err != nil {
				return Location{}, fmt.Errorf("geocoding of %q aborted: %w", query, err)
			}
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return Location{}, fmt.Errorf("geocoding of %q aborted: %w", query, err)
			}
		}

		loc, err := r.coder.Search(ctx, query)
		if err == nil {
			r.observer.ObserveAttempt(r.coder.Name(), OutcomeSuccess)
			return loc, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Location{}, fmt.Errorf("geocoding of %q aborted: %w", query, ctxErr)
		}

		lastErr = err
		outcome := OutcomeError
		if errors.Is(err, ErrAddressNotFound) {
			outcome = OutcomeNotFound
		}
		r.observer.ObserveAttempt(r.coder.Name(), outcome)
		r.logger.Debug("geocoding attempt failed", slog.String("query", query),
			slog.Int("attempt", attempt), slog.Int("attempts", attempts), logger.Err(err))
	}

	if errors.Is(lastErr, ErrAddressNotFound) {
		return Location{}, fmt.Errorf("%w: no match for %q after %d attempt(s)", ErrAddressNotFound, query, attempts)
	}
	return Location{}, fmt.Errorf("%w: %q failed after %d attempt(s): %w", ErrGeocodingService, query, attempts,
		lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
