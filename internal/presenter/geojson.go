// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import "github.com/wneessen/promoter-route/internal/route"

// FeatureCollection is a GeoJSON (RFC 7946) feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// GeoJSON returns one Point feature per waypoint, followed by a LineString connecting all
// waypoints in route order. GeoJSON positions are ordered longitude first.
func GeoJSON(r route.Route) FeatureCollection {
	collection := FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(r.Waypoints)+1)}
	if r.Empty() {
		return collection
	}

	line := make([][2]float64, 0, len(r.Waypoints))
	for i, wp := range r.Waypoints {
		position := [2]float64{wp.Longitude, wp.Latitude}
		line = append(line, position)
		props := map[string]any{
			"sequence": i,
			"label":    wp.Label,
			"kind":     wp.Kind.String(),
		}
		if wp.Note != "" {
			props["note"] = wp.Note
		}
		collection.Features = append(collection.Features, Feature{
			Type:       "Feature",
			Geometry:   Geometry{Type: "Point", Coordinates: position},
			Properties: props,
		})
	}
	collection.Features = append(collection.Features, Feature{
		Type:     "Feature",
		Geometry: Geometry{Type: "LineString", Coordinates: line},
		Properties: map[string]any{
			"route_id": r.ID.String(),
			"distance": r.TotalDistance(),
		},
	})
	return collection
}
