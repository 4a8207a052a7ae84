// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package opencage

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
	APIEndpoint = "https://api.opencagedata.com/geocode/v1/json"
	APITimeout  = time.Second * 10
	name        = "opencage"
)

type OpenCage struct {
	apikey string
	http   *http.Client
	lang   language.Tag
}

type Response struct {
	Results      []Result `json:"results"`
	TotalResults int      `json:"total_results"`
}

type Result struct {
	Confidence  int      `json:"confidence"`
	DisplayName string   `json:"formatted"`
	Geometry    Geometry `json:"geometry"`
}

type Geometry struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

func New(client *http.Client, lang language.Tag, apikey string) *OpenCage {
	return &OpenCage{
		apikey: apikey,
		lang:   lang,
		http:   client,
	}
}

func (o *OpenCage) Name() string {
	return name
}

func (o *OpenCage) Search(ctx context.Context, query string) (geocode.Location, error) {
	var response Response

	params := url.Values{}
	params.Set("key", o.apikey)
	params.Set("q", query)
	params.Set("limit", "1")
	params.Set("no_annotations", "1")
	params.Set("no_record", "1")
	params.Set("language", o.lang.String())
	headers := map[string]string{"Accept-Language": o.lang.String()}

	if _, err := o.http.GetWithTimeout(ctx, APIEndpoint, &response, params, headers, APITimeout); err != nil {
		return geocode.Location{}, fmt.Errorf("failed to retrieve address details from OpenCage API: %w", err)
	}
	if response.TotalResults < 1 || len(response.Results) < 1 {
		return geocode.Location{}, fmt.Errorf("%w: no coordinates found for address %q", geocode.ErrAddressNotFound,
			query)
	}

	result := response.Results[0]
	loc := geocode.Location{
		Latitude:    result.Geometry.Lat,
		Longitude:   result.Geometry.Lon,
		DisplayName: result.DisplayName,
	}
	if !loc.Valid() {
		return geocode.Location{}, fmt.Errorf("invalid OpenCage API response: coordinates out of range: %f,%f",
			loc.Latitude, loc.Longitude)
	}
	return loc, nil
}
