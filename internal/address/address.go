// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package address turns free-text store and home addresses into geocoding queries.
package address

import (
	"fmt"
	"strings"
)

// DefaultCountry is appended to every query unless the Normalizer is configured otherwise.
const DefaultCountry = "Brasil"

// Normalizer builds canonical geocoding queries of the form "{address}, {city}, {country}".
type Normalizer struct {
	Country string
}

// New returns a Normalizer for the given country. An empty country falls back to DefaultCountry.
func New(country string) Normalizer {
	country = clean(country)
	if country == "" {
		country = DefaultCountry
	}
	return Normalizer{Country: country}
}

// Normalize collapses whitespace, strips commas and joins address, city and country. It never
// fails; callers are expected to reject blank input with IsBlank beforehand.
func (n Normalizer) Normalize(address, city string) string {
	return fmt.Sprintf("%s, %s, %s", clean(address), clean(city), n.Country)
}

// IsBlank reports whether any of the given values is empty after trimming whitespace.
func IsBlank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// clean removes commas and reduces every run of whitespace to a single space.
func clean(val string) string {
	val = strings.ReplaceAll(val, ",", " ")
	return strings.Join(strings.Fields(val), " ")
}
