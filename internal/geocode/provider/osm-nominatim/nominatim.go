// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package nominatim

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
	APISearchEndpoint = "https://nominatim.openstreetmap.org/search"
	APITimeout        = time.Second * 10
	name              = "osm-nominatim"
)

type Nominatim struct {
	endpoint string
	http     *http.Client
	lang     language.Tag
}

type SearchResult struct {
	APILat      string `json:"lat"`
	APILon      string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func New(client *http.Client, lang language.Tag) *Nominatim {
	return &Nominatim{
		endpoint: APISearchEndpoint,
		lang:     lang,
		http:     client,
	}
}

// WithEndpoint points the provider to a self-hosted Nominatim instance.
func (n *Nominatim) WithEndpoint(endpoint string) *Nominatim {
	if endpoint != "" {
		n.endpoint = endpoint
	}
	return n
}

func (n *Nominatim) Name() string {
	return name
}

// Search asks Nominatim for the single best match of the given query.
func (n *Nominatim) Search(ctx context.Context, query string) (geocode.Location, error) {
	var result []SearchResult

	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("q", query)
	params.Set("limit", "1")
	headers := map[string]string{"Accept-Language": n.lang.String()}

	if _, err := n.http.GetWithTimeout(ctx, n.endpoint, &result, params, headers, APITimeout); err != nil {
		return geocode.Location{}, fmt.Errorf("failed to fetch address details from Nominatim API: %w", err)
	}
	if len(result) < 1 {
		return geocode.Location{}, fmt.Errorf("%w: no coordinates found for address %q", geocode.ErrAddressNotFound,
			query)
	}

	loc, err := geocode.ParseLocation(result[0].APILat, result[0].APILon, result[0].DisplayName)
	if err != nil {
		return geocode.Location{}, fmt.Errorf("invalid Nominatim API response: %w", err)
	}
	return loc, nil
}
