// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package route

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wneessen/promoter-route/internal/address"
	"github.com/wneessen/promoter-route/internal/geocode"
	"github.com/wneessen/promoter-route/internal/logger"
)

const (
	OutcomeReady        = "ready"
	OutcomeFailed       = "failed"
	OutcomeMissingInput = "missing_input"
	OutcomeCanceled     = "canceled"
)

// DefaultLabels are the untranslated marker notes of the home waypoints.
var DefaultLabels = Labels{
	Start:  "start residence marker",
	Return: "return marker",
}

// Labels holds the notes attached to the start and the return waypoint.
type Labels struct {
	Start  string
	Return string
}

// Observer is notified once per finished build.
type Observer interface {
	ObserveBuild(outcome string, duration time.Duration)
}

// ProgressFunc is called after each waypoint was resolved. index is the waypoint's position in
// the route, total the expected number of waypoints.
type ProgressFunc func(index, total int, waypoint Waypoint)

// Options configures an Assembler.
type Options struct {
	Labels Labels

	// SkipUnresolved leaves stores with a blank or unknown address out of the route instead of
	// failing the build. Service failures and cancellation always fail the build.
	SkipUnresolved bool

	Observer Observer
}

// Assembler resolves the locations of a route one after another.
type Assembler struct {
	coder      geocode.Geocoder
	normalizer address.Normalizer
	logger     *logger.Logger
	opts       Options
}

// NewAssembler returns an Assembler that looks up every location with coder. Rate limiting and
// retries are up to the Geocoder.
func NewAssembler(coder geocode.Geocoder, normalizer address.Normalizer, log *logger.Logger, opts Options) *Assembler {
	if opts.Labels.Start == "" {
		opts.Labels.Start = DefaultLabels.Start
	}
	if opts.Labels.Return == "" {
		opts.Labels.Return = DefaultLabels.Return
	}
	return &Assembler{
		coder:      coder,
		normalizer: normalizer,
		logger:     log,
		opts:       opts,
	}
}

// Build resolves the route for req.
func (a *Assembler) Build(ctx context.Context, req Request) (Route, error) {
	return a.BuildStream(ctx, req, nil)
}

// BuildStream resolves the route for req and reports every resolved waypoint to progress.
//
// A blank home address or city is not an error: the returned route has MissingInput set and no
// lookup is performed. Any other problem returns a *StopError naming the failing address and no
// route.
func (a *Assembler) BuildStream(ctx context.Context, req Request, progress ProgressFunc) (Route, error) {
	start := time.Now()
	route, err := a.build(ctx, req, progress)

	outcome := OutcomeReady
	switch {
	case err != nil && ctx.Err() != nil:
		outcome = OutcomeCanceled
	case err != nil:
		outcome = OutcomeFailed
	case route.MissingInput:
		outcome = OutcomeMissingInput
	}
	if a.opts.Observer != nil {
		a.opts.Observer.ObserveBuild(outcome, time.Since(start))
	}

	if err != nil {
		a.logger.Error("failed to build route", logger.Err(err), slog.Duration("duration", time.Since(start)))
		return Route{}, err
	}
	if !route.MissingInput {
		a.logger.Info("route built", slog.String("id", route.ID.String()),
			slog.Int("stores", len(route.Stores())), slog.Int("skipped", len(route.Skipped)),
			slog.Duration("duration", time.Since(start)))
	}
	return route, nil
}

func (a *Assembler) build(ctx context.Context, req Request, progress ProgressFunc) (Route, error) {
	if progress == nil {
		progress = func(int, int, Waypoint) {}
	}
	route := Route{ID: uuid.New()}

	if address.IsBlank(req.HomeAddress, req.HomeCity) {
		a.logger.Debug("home address or city missing, not building route")
		route.MissingInput = true
		route.BuiltAt = time.Now()
		return route, nil
	}

	total := len(req.Stops) + 2
	homeLabel := req.HomeLabel
	if homeLabel == "" {
		homeLabel = a.opts.Labels.Start
	}
	homeQuery := a.normalizer.Normalize(req.HomeAddress, req.HomeCity)
	home, err := a.resolve(ctx, homeQuery)
	if err != nil {
		return Route{}, &StopError{Label: homeLabel, Address: req.HomeAddress, Query: homeQuery, Err: err}
	}
	start := Waypoint{
		Latitude:  home.Latitude,
		Longitude: home.Longitude,
		Label:     homeLabel,
		Note:      a.opts.Labels.Start,
		Kind:      KindHome,
		Query:     homeQuery,
	}
	route.Waypoints = make([]Waypoint, 0, total)
	route.Waypoints = append(route.Waypoints, start)
	progress(0, total, start)

	for _, stop := range req.Stops {
		if address.IsBlank(stop.Address, stop.City) {
			if !a.opts.SkipUnresolved {
				return Route{}, &StopError{Label: stop.Label, Address: stop.Address, Err: geocode.ErrInvalidInput}
			}
			route.Skipped = append(route.Skipped, Skipped{Label: stop.Label, Address: stop.Address,
				Reason: geocode.ErrInvalidInput.Error()})
			total--
			continue
		}

		query := a.normalizer.Normalize(stop.Address, stop.City)
		loc, err := a.resolve(ctx, query)
		if err != nil {
			if a.opts.SkipUnresolved && errors.Is(err, geocode.ErrAddressNotFound) {
				a.logger.Warn("skipping unresolved store", slog.String("label", stop.Label),
					slog.String("query", query))
				route.Skipped = append(route.Skipped, Skipped{Label: stop.Label, Address: stop.Address,
					Reason: err.Error()})
				total--
				continue
			}
			return Route{}, &StopError{Label: stop.Label, Address: stop.Address, Query: query, Err: err}
		}
		waypoint := Waypoint{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Label:     stop.Label,
			Kind:      KindStore,
			Query:     query,
		}
		route.Waypoints = append(route.Waypoints, waypoint)
		progress(len(route.Waypoints)-1, total, waypoint)
	}

	end := start
	end.Note = a.opts.Labels.Return
	route.Waypoints = append(route.Waypoints, end)
	progress(len(route.Waypoints)-1, total, end)

	route.BuiltAt = time.Now()
	return route, nil
}

// resolve looks up a single query. A canceled context stops the build before the next lookup,
// even if the Geocoder would answer from its cache.
func (a *Assembler) resolve(ctx context.Context, query string) (geocode.Location, error) {
	if err := ctx.Err(); err != nil {
		return geocode.Location{}, err
	}
	loc, err := a.coder.Search(ctx, query)
	if err != nil {
		return geocode.Location{}, err
	}
	a.logger.Debug("location resolved", slog.String("query", query), slog.Float64("lat", loc.Latitude),
		slog.Float64("lon", loc.Longitude), slog.Bool("cache_hit", loc.CacheHit))
	return loc, nil
}
