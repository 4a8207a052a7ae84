// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package route builds a promoter's visit route: the home address, every store in the given
// order and the return to the home address, each resolved to coordinates.
package route

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind is the type of location a Waypoint represents.
type Kind int

const (
	KindHome Kind = iota
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindHome:
		return "home"
	case KindStore:
		return "store"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindHome, KindStore:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("unknown waypoint kind: %d", int(k))
	}
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "home":
		*k = KindHome
	case "store":
		*k = KindStore
	default:
		return fmt.Errorf("unknown waypoint kind: %q", text)
	}
	return nil
}

// Stop is a store the promoter has to visit.
type Stop struct {
	Label   string `json:"label" yaml:"label"`
	Address string `json:"address" yaml:"address"`
	City    string `json:"city" yaml:"city"`
}

// Request holds everything needed to build a route. Stops are visited in slice order.
type Request struct {
	HomeAddress string `json:"home_address" yaml:"home_address"`
	HomeCity    string `json:"home_city" yaml:"home_city"`
	HomeLabel   string `json:"home_label" yaml:"home_label"`
	Stops       []Stop `json:"stops" yaml:"stops"`
}

// Waypoint is a single resolved location of a Route.
type Waypoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Label     string  `json:"label"`
	Note      string  `json:"note,omitempty"`
	Kind      Kind    `json:"kind"`
	Query     string  `json:"query"`
}

// Skipped records a store that was left out of the route.
type Skipped struct {
	Label   string `json:"label"`
	Address string `json:"address"`
	Reason  string `json:"reason"`
}

// Route is the ordered list of waypoints. The first and the last waypoint are always the home
// address with identical coordinates. A route with MissingInput set has no waypoints.
type Route struct {
	ID           uuid.UUID  `json:"id"`
	Waypoints    []Waypoint `json:"waypoints"`
	Skipped      []Skipped  `json:"skipped,omitempty"`
	MissingInput bool       `json:"missing_input"`
	BuiltAt      time.Time  `json:"built_at"`
}

// Empty reports whether the route has no waypoints.
func (r Route) Empty() bool {
	return len(r.Waypoints) == 0
}

// Stores returns the store waypoints in visiting order.
func (r Route) Stores() []Waypoint {
	if len(r.Waypoints) < 2 {
		return nil
	}
	return r.Waypoints[1 : len(r.Waypoints)-1]
}

// StopError is returned when a location of the route could not be resolved. It carries the
// address so the problem can be reported to the user.
type StopError struct {
	Label   string
	Address string
	Query   string
	Err     error
}

func (e *StopError) Error() string {
	return fmt.Sprintf("failed to resolve %q (%s): %s", e.Label, e.Address, e.Err)
}

func (e *StopError) Unwrap() error {
	return e.Err
}

// AsStopError returns the StopError in err's chain, if any.
func AsStopError(err error) (*StopError, bool) {
	var stopErr *StopError
	if errors.As(err, &stopErr) {
		return stopErr, true
	}
	return nil, false
}
