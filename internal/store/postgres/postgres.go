// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package postgres reads promoter homes and their ordered store visits from Postgres.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/promoter-route/internal/route"
	"github.com/wneessen/promoter-route/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS promoters (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL DEFAULT '',
	home_address TEXT NOT NULL DEFAULT '',
	home_city    TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS route_stops (
	promoter_id TEXT    NOT NULL REFERENCES promoters (id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	label       TEXT    NOT NULL,
	address     TEXT    NOT NULL DEFAULT '',
	city        TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (promoter_id, position)
);`

// Source is a store.Source backed by the promoters and route_stops tables.
type Source struct {
	db *sql.DB
}

func New(db *sql.DB) *Source {
	return &Source{db: db}
}

// EnsureSchema creates the tables if they do not exist yet.
func (s *Source) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create route tables: %w", err)
	}
	return nil
}

// RouteRequest returns the home address and the stops of promoterID ordered by position.
// An empty home address is passed on as is, the assembler reports it as missing input.
func (s *Source) RouteRequest(ctx context.Context, promoterID string) (route.Request, error) {
	if s.db == nil {
		return route.Request{}, errors.New("route source: db is nil")
	}
	promoterID = strings.TrimSpace(promoterID)
	if promoterID == "" {
		return route.Request{}, fmt.Errorf("%w: empty promoter ID", store.ErrPromoterNotFound)
	}

	var req route.Request
	q := `SELECT name, home_address, home_city FROM promoters WHERE id = $1;`
	err := s.db.QueryRowContext(ctx, q, promoterID).Scan(&req.HomeLabel, &req.HomeAddress, &req.HomeCity)
	if errors.Is(err, sql.ErrNoRows) {
		return route.Request{}, fmt.Errorf("%w: %s", store.ErrPromoterNotFound, promoterID)
	}
	if err != nil {
		return route.Request{}, fmt.Errorf("get promoter %q: %w", promoterID, err)
	}

	q = `
	SELECT position, label, address, city
	FROM route_stops
	WHERE promoter_id = $1
	ORDER BY position;
	`
	rows, err := s.db.QueryContext(ctx, q, promoterID)
	if err != nil {
		return route.Request{}, fmt.Errorf("get route stops of %q: %w", promoterID, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var position int
		var stop route.Stop
		if err = rows.Scan(&position, &stop.Label, &stop.Address, &stop.City); err != nil {
			return route.Request{}, fmt.Errorf("scan route stop of %q: %w", promoterID, err)
		}
		stop.Label = strings.TrimSpace(stop.Label)
		if stop.Label == "" {
			return route.Request{}, fmt.Errorf("route stop %d of %q has no label", position, promoterID)
		}
		req.Stops = append(req.Stops, stop)
	}
	if err = rows.Err(); err != nil {
		return route.Request{}, fmt.Errorf("iterate route stops of %q: %w", promoterID, err)
	}
	return req, nil
}

var _ store.Source = (*Source)(nil)
