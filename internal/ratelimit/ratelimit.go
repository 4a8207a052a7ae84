// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package ratelimit spaces outbound geocoding requests according to the usage policy of the
// external service.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultInterval is the minimum spacing required for anonymous Nominatim usage.
	DefaultInterval = time.Second

	ModeFixed   = "fixed"
	ModeSpacing = "spacing"
)

// Limiter suspends the caller until the next outbound call is permitted.
type Limiter interface {
	Wait(ctx context.Context) error
	// Interval is the configured distance between two calls.
	Interval() time.Duration
}

// New returns the Limiter for the given mode.
func New(mode string, interval time.Duration) (Limiter, error) {
	switch strings.ToLower(mode) {
	case ModeFixed, "":
		return NewFixedDelay(interval), nil
	case ModeSpacing:
		return NewSpacing(interval), nil
	default:
		return nil, fmt.Errorf("unsupported rate limit mode: %s", mode)
	}
}

// FixedDelay suspends every caller for the full interval, regardless of how long ago the
// previous call happened. Waiters are served one at a time, so the delays of concurrent callers
// add up instead of overlapping.
type FixedDelay struct {
	interval time.Duration
	sem      chan struct{}
}

// NewFixedDelay returns a FixedDelay limiter. Non-positive intervals fall back to DefaultInterval.
func NewFixedDelay(interval time.Duration) *FixedDelay {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &FixedDelay{
		interval: interval,
		sem:      make(chan struct{}, 1),
	}
}

// Interval returns the configured delay.
func (f *FixedDelay) Interval() time.Duration {
	return f.interval
}

func (f *FixedDelay) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case f.sem <- struct{}{}:
	}
	defer func() { <-f.sem }()

	timer := time.NewTimer(f.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Spacing only enforces a minimum distance between two calls. An idle limiter lets the next
// call through immediately.
type Spacing struct {
	interval time.Duration
	limiter  *rate.Limiter
}

// NewSpacing returns a Spacing limiter. Non-positive intervals fall back to DefaultInterval.
func NewSpacing(interval time.Duration) *Spacing {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Spacing{interval: interval, limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

func (s *Spacing) Interval() time.Duration {
	return s.interval
}

func (s *Spacing) Wait(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}
