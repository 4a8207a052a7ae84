// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package route

import (
	"context"
	"sync"
)

// State is the externally observable state of a route build.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateFailed
	StateMissingInput
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateMissingInput:
		return "missing_input"
	default:
		return "unknown"
	}
}

// Snapshot is the state of a Tracker at one point in time.
type Snapshot struct {
	State      State
	Generation uint64
	Route      Route
	Err        error
}

// Builder builds a single route.
type Builder interface {
	BuildStream(ctx context.Context, req Request, progress ProgressFunc) (Route, error)
}

// Tracker runs route builds in the background and keeps the state of the latest one. Starting
// a new build cancels the previous one and results of superseded builds are dropped.
type Tracker struct {
	builder  Builder
	onChange func(Snapshot)

	mu     sync.Mutex
	wg     sync.WaitGroup
	snap   Snapshot
	cancel context.CancelFunc
}

// NewTracker returns an idle Tracker. onChange may be nil. It is called with the tracker lock
// held, so it must not call back into the Tracker.
func NewTracker(builder Builder, onChange func(Snapshot)) *Tracker {
	if onChange == nil {
		onChange = func(Snapshot) {}
	}
	return &Tracker{builder: builder, onChange: onChange}
}

// Start begins a new build for req and returns its generation. progress only receives
// waypoints while the build is still the current one.
func (t *Tracker) Start(ctx context.Context, req Request, progress ProgressFunc) uint64 {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	gen := t.snap.Generation + 1
	t.snap = Snapshot{State: StateLoading, Generation: gen}
	t.onChange(t.snap)
	t.mu.Unlock()

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer cancel()

		route, err := t.builder.BuildStream(ctx, req, func(index, total int, wp Waypoint) {
			t.mu.Lock()
			defer t.mu.Unlock()
			if progress != nil && t.snap.Generation == gen {
				progress(index, total, wp)
			}
		})

		t.mu.Lock()
		defer t.mu.Unlock()
		if t.snap.Generation != gen {
			return
		}
		snap := Snapshot{Generation: gen, Route: route, Err: err}
		switch {
		case err != nil:
			snap.State = StateFailed
		case route.MissingInput:
			snap.State = StateMissingInput
		default:
			snap.State = StateReady
		}
		t.snap = snap
		t.cancel = nil
		t.onChange(snap)
	}()
	return gen
}

// Cancel abandons the running build, if any, and resets the Tracker to idle. onChange is
// notified of the idle state. The abandoned build can no longer change the Tracker's state.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.snap = Snapshot{State: StateIdle, Generation: t.snap.Generation + 1}
	t.onChange(t.snap)
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// Wait blocks until all started builds have returned.
func (t *Tracker) Wait() {
	t.wg.Wait()
}
