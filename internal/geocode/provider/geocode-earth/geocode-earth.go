// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocodeearth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/promoter-route/internal/geocode"
	"github.com/wneessen/promoter-route/internal/http"
)

const (
	APIEndpoint = "https://api.geocode.earth/v1/search"
	APITimeout  = time.Second * 10
	name        = "geocode-earth"
)

type GeocodeEarth struct {
	apikey string
	http   *http.Client
	lang   language.Tag
}

type Response struct {
	Features []Feature `json:"features"`
	Type     string    `json:"type"`
}

type Feature struct {
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
	Type       string     `json:"type"`
}

// Geometry holds a GeoJSON point, coordinates are ordered lon, lat.
type Geometry struct {
	Coordinates []float64 `json:"coordinates"`
	Type        string    `json:"type"`
}

type Properties struct {
	DisplayName string  `json:"label"`
	Confidence  float64 `json:"confidence"`
}

func New(client *http.Client, lang language.Tag, apikey string) *GeocodeEarth {
	return &GeocodeEarth{
		apikey: apikey,
		lang:   lang,
		http:   client,
	}
}

func (g *GeocodeEarth) Name() string {
	return name
}

func (g *GeocodeEarth) Search(ctx context.Context, query string) (geocode.Location, error) {
	var response Response

	params := url.Values{}
	params.Set("api_key", g.apikey)
	params.Set("text", query)
	params.Set("size", "1")
	params.Set("lang", g.lang.String())
	headers := map[string]string{"Accept-Language": g.lang.String()}

	if _, err := g.http.GetWithTimeout(ctx, APIEndpoint, &response, params, headers, APITimeout); err != nil {
		return geocode.Location{}, fmt.Errorf("failed to retrieve address details from geocode.earth API: %w", err)
	}
	if len(response.Features) < 1 {
		return geocode.Location{}, fmt.Errorf("%w: no coordinates found for address %q", geocode.ErrAddressNotFound,
			query)
	}

	feature := response.Features[0]
	if len(feature.Geometry.Coordinates) != 2 {
		return geocode.Location{}, fmt.Errorf("invalid geocode.earth API response: unexpected coordinate format")
	}
	loc := geocode.Location{
		Latitude:    feature.Geometry.Coordinates[1],
		Longitude:   feature.Geometry.Coordinates[0],
		DisplayName: feature.Properties.DisplayName,
	}
	if !loc.Valid() {
		return geocode.Location{}, fmt.Errorf("invalid geocode.earth API response: coordinates out of range: %f,%f",
			loc.Latitude, loc.Longitude)
	}
	return loc, nil
}
