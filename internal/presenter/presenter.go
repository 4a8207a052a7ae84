// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package presenter turns routes and route errors into output for people and map consumers.
package presenter

import (
	"context"
	"errors"

	"github.com/vorlif/humanize"
	"github.com/vorlif/spreak"
	"github.com/vorlif/spreak/localize"
	"golang.org/x/text/language"

	"github.com/wneessen/promoter-route/internal/geocode"
	"github.com/wneessen/promoter-route/internal/route"
	"github.com/wneessen/promoter-route/internal/store"
)

var kindNames = map[route.Kind]localize.MsgID{
	route.KindHome:  "home",
	route.KindStore: "store",
}

type Presenter struct {
	localizer *spreak.Localizer
	humanizer *humanize.Humanizer
}

// New returns a Presenter that localizes its output with loc. tag selects the formatting of
// times.
func New(loc *spreak.Localizer, tag language.Tag) *Presenter {
	collection := humanize.MustNew()
	return &Presenter{
		localizer: loc,
		humanizer: collection.CreateHumanizer(tag),
	}
}

// Labels returns the localized notes of the home waypoints.
func (p *Presenter) Labels() route.Labels {
	return route.Labels{
		Start:  p.localizer.Get(route.DefaultLabels.Start),
		Return: p.localizer.Get(route.DefaultLabels.Return),
	}
}

// MissingInput returns the notification shown when the promoter's home is incomplete.
func (p *Presenter) MissingInput() string {
	return p.localizer.Get("Home address or city is missing. Please complete the promoter's address.")
}

// Message returns a notification for err that names the problem and the affected address.
func (p *Presenter) Message(err error) string {
	if err == nil {
		return ""
	}
	// Lookup failures name the address even when a request timeout is part of the chain.
	if stopErr, ok := route.AsStopError(err); ok {
		switch {
		case errors.Is(err, geocode.ErrInvalidInput):
			return p.localizer.Getf("The address of %s is empty.", stopErr.Label)
		case errors.Is(err, geocode.ErrAddressNotFound):
			return p.localizer.Getf("Address not found for %s: %s", stopErr.Label, stopErr.Address)
		case errors.Is(err, geocode.ErrGeocodingService):
			return p.localizer.Getf("The geocoding service failed for %s: %s. Please try again later.",
				stopErr.Label, stopErr.Address)
		}
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return p.localizer.Get("Route building was canceled.")
	case errors.Is(err, store.ErrPromoterNotFound):
		return p.localizer.Get("Promoter not found.")
	default:
		return p.localizer.Getf("The route could not be built: %s", err.Error())
	}
}

func (p *Presenter) kind(kind route.Kind) string {
	if raw, ok := kindNames[kind]; ok {
		return p.localizer.Get(raw)
	}
	return kind.String()
}
