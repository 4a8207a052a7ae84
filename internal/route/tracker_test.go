// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package route

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"
)

// slowBuilder takes a second per build unless its context is canceled first.
type slowBuilder struct {
	mu       sync.Mutex
	canceled int
}

func (s *slowBuilder) BuildStream(ctx context.Context, req Request, progress ProgressFunc) (Route, error) {
	if req.HomeAddress == "" {
		return Route{MissingInput: true}, nil
	}
	progress(0, 2, Waypoint{Label: req.HomeLabel, Kind: KindHome})
	select {
	case <-ctx.Done():
		s.mu.Lock()
		s.canceled++
		s.mu.Unlock()
		return Route{}, ctx.Err()
	case <-time.After(time.Second):
	}
	if req.HomeCity == "fail" {
		return Route{}, errors.New("intentionally failing")
	}
	home := Waypoint{Label: req.HomeLabel, Kind: KindHome}
	progress(1, 2, home)
	return Route{Waypoints: []Waypoint{home, home}}, nil
}

func (s *slowBuilder) Canceled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canceled
}

func TestTracker(t *testing.T) {
	t.Run("new tracker is idle", func(t *testing.T) {
		tracker := NewTracker(&slowBuilder{}, nil)
		if state := tracker.Snapshot().State; state != StateIdle {
			t.Errorf("expected state to be %s, got %s", StateIdle, state)
		}
	})
	t.Run("build goes from loading to ready", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			var states []State
			tracker := NewTracker(&slowBuilder{}, func(s Snapshot) { states = append(states, s.State) })

			gen := tracker.Start(t.Context(), Request{HomeAddress: "a", HomeCity: "b", HomeLabel: "Casa"}, nil)
			if state := tracker.Snapshot().State; state != StateLoading {
				t.Errorf("expected state to be %s, got %s", StateLoading, state)
			}
			tracker.Wait()

			snap := tracker.Snapshot()
			if snap.State != StateReady {
				t.Fatalf("expected state to be %s, got %s", StateReady, snap.State)
			}
			if snap.Generation != gen {
				t.Errorf("expected generation to be %d, got %d", gen, snap.Generation)
			}
			if len(snap.Route.Waypoints) != 2 {
				t.Errorf("expected 2 waypoints, got %d", len(snap.Route.Waypoints))
			}
			if len(states) != 2 || states[0] != StateLoading || states[1] != StateReady {
				t.Errorf("expected loading and ready notifications, got %v", states)
			}
		})
	})
	t.Run("failed and missing input builds", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			tracker := NewTracker(&slowBuilder{}, nil)
			tracker.Start(t.Context(), Request{HomeAddress: "a", HomeCity: "fail"}, nil)
			tracker.Wait()
			if snap := tracker.Snapshot(); snap.State != StateFailed || snap.Err == nil {
				t.Errorf("expected failed state with error, got %s (%v)", snap.State, snap.Err)
			}

			tracker.Start(t.Context(), Request{}, nil)
			tracker.Wait()
			if state := tracker.Snapshot().State; state != StateMissingInput {
				t.Errorf("expected state to be %s, got %s", StateMissingInput, state)
			}
		})
	})
	t.Run("newer build supersedes the running one", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			builder := &slowBuilder{}
			var mu sync.Mutex
			var labels []string
			progress := func(_, _ int, wp Waypoint) {
				mu.Lock()
				defer mu.Unlock()
				labels = append(labels, wp.Label)
			}
			var readyLabels []string
			tracker := NewTracker(builder, func(s Snapshot) {
				if s.State == StateReady {
					readyLabels = append(readyLabels, s.Route.Waypoints[0].Label)
				}
			})

			first := tracker.Start(t.Context(), Request{HomeAddress: "a", HomeCity: "b", HomeLabel: "old"}, progress)
			synctest.Wait()
			second := tracker.Start(t.Context(), Request{HomeAddress: "a", HomeCity: "b", HomeLabel: "new"}, progress)
			tracker.Wait()

			if second <= first {
				t.Errorf("expected generation to increase, got %d after %d", second, first)
			}
			if builder.Canceled() != 1 {
				t.Errorf("expected the first build to be canceled, got %d cancellations", builder.Canceled())
			}
			snap := tracker.Snapshot()
			if snap.State != StateReady || snap.Generation != second {
				t.Errorf("expected ready state of generation %d, got %s of %d", second, snap.State, snap.Generation)
			}
			if len(readyLabels) != 1 || readyLabels[0] != "new" {
				t.Errorf("expected only the new build to become ready, got %v", readyLabels)
			}
			for i, label := range labels[1:] {
				if label != "new" {
					t.Errorf("expected progress %d to belong to the new build, got %q", i+1, label)
				}
			}
		})
	})
	t.Run("cancel abandons the running build", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			builder := &slowBuilder{}
			var states []State
			tracker := NewTracker(builder, func(s Snapshot) { states = append(states, s.State) })
			tracker.Start(t.Context(), Request{HomeAddress: "a", HomeCity: "b"}, nil)
			synctest.Wait()
			tracker.Cancel()
			tracker.Wait()

			if len(states) != 2 || states[0] != StateLoading || states[1] != StateIdle {
				t.Errorf("expected loading and idle notifications, got %v", states)
			}
			if builder.Canceled() != 1 {
				t.Errorf("expected build to be canceled, got %d cancellations", builder.Canceled())
			}
			if state := tracker.Snapshot().State; state != StateIdle {
				t.Errorf("expected state to be %s, got %s", StateIdle, state)
			}
		})
	})
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateIdle:         "idle",
		StateLoading:      "loading",
		StateReady:        "ready",
		StateFailed:       "failed",
		StateMissingInput: "missing_input",
		State(99):         "unknown",
	}
	for state, want := range tests {
		if state.String() != want {
			t.Errorf("expected state string to be %q, got %q", want, state.String())
		}
	}
}
