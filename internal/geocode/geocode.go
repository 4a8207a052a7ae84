// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrInvalidInput is returned for blank queries. No request is made for them.
	ErrInvalidInput = errors.New("address query must not be empty")

	// ErrAddressNotFound is returned when the geocoding service has no match for a query.
	ErrAddressNotFound = errors.New("address not found")

	// ErrGeocodingService is returned when the geocoding service could not be queried successfully.
	ErrGeocodingService = errors.New("geocoding service failure")
)

// Location is the best match a Geocoder found for a query.
type Location struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	DisplayName string  `json:"display_name"`

	CacheHit bool `json:"-"`
}

// Valid reports whether the coordinates are within the WGS84 value range.
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

// Geocoder resolves a normalized address query into a single Location.
type Geocoder interface {
	Name() string
	Search(ctx context.Context, query string) (Location, error)
}

// ParseLocation builds a Location from the numeric-string coordinates most geocoding APIs return.
// Responses are not trusted: both values must parse and lie within the WGS84 range.
func ParseLocation(lat, lon, displayName string) (Location, error) {
	var err error
	loc := Location{DisplayName: displayName}
	loc.Latitude, err = strconv.ParseFloat(lat, 64)
	if err != nil {
		return Location{}, fmt.Errorf("failed to parse latitude: %w", err)
	}
	loc.Longitude, err = strconv.ParseFloat(lon, 64)
	if err != nil {
		return Location{}, fmt.Errorf("failed to parse longitude: %w", err)
	}
	if !loc.Valid() {
		return Location{}, fmt.Errorf("coordinates out of range: %f,%f", loc.Latitude, loc.Longitude)
	}
	return loc, nil
}
