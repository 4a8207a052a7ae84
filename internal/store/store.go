// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package store provides the promoter data a route is built from.
package store

import (
	"context"
	"errors"

	"github.com/wneessen/promoter-route/internal/route"
)

// ErrPromoterNotFound is returned when a source has no data for the requested promoter.
var ErrPromoterNotFound = errors.New("promoter not found")

// Source supplies the home address and the ordered store list of a promoter.
type Source interface {
	RouteRequest(ctx context.Context, promoterID string) (route.Request, error)
}
