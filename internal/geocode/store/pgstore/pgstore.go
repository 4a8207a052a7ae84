// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package pgstore keeps geocoding results in a Postgres table.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/promoter-route/internal/geocode"
)

const schema = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	provider     TEXT             NOT NULL,
	query        TEXT             NOT NULL,
	found        BOOLEAN          NOT NULL,
	lat          DOUBLE PRECISION NOT NULL DEFAULT 0,
	lon          DOUBLE PRECISION NOT NULL DEFAULT 0,
	display_name TEXT             NOT NULL DEFAULT '',
	expires_at   TIMESTAMPTZ      NOT NULL,
	PRIMARY KEY (provider, query)
);`

// Store is a geocode.Store backed by the geocode_cache table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the cache table if it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create geocode_cache table: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, key geocode.Key) (geocode.Entry, bool, error) {
	if s.db == nil {
		return geocode.Entry{}, false, errors.New("geocode cache: db is nil")
	}

	q := `
	SELECT found, lat, lon, display_name
	FROM geocode_cache
	WHERE provider = $1 AND query = $2 AND expires_at > now();
	`
	var entry geocode.Entry
	err := s.db.QueryRowContext(ctx, q, key.Provider, key.Query).Scan(&entry.Found, &entry.Location.Latitude,
		&entry.Location.Longitude, &entry.Location.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return geocode.Entry{}, false, nil
	}
	if err != nil {
		return geocode.Entry{}, false, fmt.Errorf("get geocode cache: %w", err)
	}
	if entry.Found && !entry.Location.Valid() {
		return geocode.Entry{}, false, fmt.Errorf("get geocode cache: invalid coordinates for %q", key.Query)
	}
	return entry, true, nil
}

func (s *Store) Save(ctx context.Context, key geocode.Key, entry geocode.Entry, ttl time.Duration) error {
	if s.db == nil {
		return errors.New("geocode cache: db is nil")
	}

	q := `
	INSERT INTO geocode_cache (provider, query, found, lat, lon, display_name, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (provider, query) DO UPDATE
	SET found = EXCLUDED.found,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		display_name = EXCLUDED.display_name,
		expires_at = EXCLUDED.expires_at;
	`
	_, err := s.db.ExecContext(ctx, q, key.Provider, key.Query, entry.Found, entry.Location.Latitude,
		entry.Location.Longitude, entry.Location.DisplayName, time.Now().Add(ttl))
	if err != nil {
		return fmt.Errorf("insert geocode cache query=%q: %w", key.Query, err)
	}
	return nil
}

// Purge deletes expired rows and returns how many were removed.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM geocode_cache WHERE expires_at <= now();`)
	if err != nil {
		return 0, fmt.Errorf("purge geocode cache: %w", err)
	}
	return res.RowsAffected()
}
