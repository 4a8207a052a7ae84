// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package route

import "math"

const EarthRadius = 6371000.0 // meters

// DistanceTo returns the great-circle distance in meters between two waypoints, using the
// Haversine formula.
func (w Waypoint) DistanceTo(other Waypoint) float64 {
	dLat := (w.Latitude - other.Latitude) * math.Pi / 180
	dLon := (w.Longitude - other.Longitude) * math.Pi / 180
	lat1 := w.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadius * math.Asin(math.Sqrt(h))
}

// Legs returns the distance in meters of each leg. Leg i leads from waypoint i to waypoint i+1.
func (r Route) Legs() []float64 {
	if len(r.Waypoints) < 2 {
		return nil
	}
	legs := make([]float64, 0, len(r.Waypoints)-1)
	for i := 1; i < len(r.Waypoints); i++ {
		legs = append(legs, r.Waypoints[i-1].DistanceTo(r.Waypoints[i]))
	}
	return legs
}

// TotalDistance returns the length of the whole route in meters.
func (r Route) TotalDistance() float64 {
	var total float64
	for _, leg := range r.Legs() {
		total += leg
	}
	return total
}
