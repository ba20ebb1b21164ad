package tripgeo

import (
	"fmt"
	"math"
	"strings"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// RoadDistanceFactor inflates straight-line distance to approximate road
// distance. It is a single rough constant; real road networks vary far more
// by route and region.
const RoadDistanceFactor = 1.3

// HaversineKm returns the great-circle distance between two points given in
// decimal degrees.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// straightLineKm is the unrounded great-circle distance between two records.
func straightLineKm(a, b City) float64 {
	return HaversineKm(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// DistanceKm estimates the road distance between two records in whole
// kilometers: the great-circle distance times RoadDistanceFactor, rounded to
// the nearest integer. Identical coordinates give 0.
func DistanceKm(a, b City) int {
	return int(math.Round(straightLineKm(a, b) * RoadDistanceFactor))
}

// CalculateDistanceKm is DistanceKm under the name used by trip-planning callers.
func CalculateDistanceKm(a, b City) int {
	return DistanceKm(a, b)
}

// Terrain is the coarse route classification used for travel-time estimates.
type Terrain string

const (
	TerrainPlains    Terrain = "plains"
	TerrainHills     Terrain = "hills"
	TerrainMountains Terrain = "mountains"
)

// Terrains lists every recognized terrain, fastest first.
var Terrains = []Terrain{TerrainPlains, TerrainHills, TerrainMountains}

// Average road speeds in km/h. Like RoadDistanceFactor these are heuristics,
// not measured values.
const (
	plainsSpeedKmh    = 50.0
	hillsSpeedKmh     = 35.0
	mountainsSpeedKmh = 25.0
)

// ParseTerrain converts user input into a Terrain. An empty string means
// plains; anything outside the fixed set is rejected with ErrUnknownTerrain.
func ParseTerrain(s string) (Terrain, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TerrainPlains, nil
	}
	for _, t := range Terrains {
		if s == string(t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTerrain, s)
}

// SpeedKmh returns the average speed for the terrain. Unrecognized values
// (including the zero value) use the plains speed.
func (t Terrain) SpeedKmh() float64 {
	switch t {
	case TerrainHills:
		return hillsSpeedKmh
	case TerrainMountains:
		return mountainsSpeedKmh
	default:
		return plainsSpeedKmh
	}
}

// EstimateTravelTimeHours returns distanceKm divided by the terrain's average
// speed, rounded to one decimal place. Negative and NaN distances count as 0.
// No traffic, time of day or route conditions are considered.
func EstimateTravelTimeHours(distanceKm float64, terrain Terrain) float64 {
	if math.IsNaN(distanceKm) || distanceKm < 0 {
		distanceKm = 0
	}
	return roundTo(distanceKm/terrain.SpeedKmh(), 1)
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// Route is a single trip leg between two catalog records.
type Route struct {
	From       City    `json:"from"`
	To         City    `json:"to"`
	Terrain    Terrain `json:"terrain"`
	DistanceKm int     `json:"distance_km"`
	Hours      float64 `json:"hours"`
}

// Route looks up both endpoints by name and estimates the leg between them.
func (c *Catalog) Route(from, to string, terrain Terrain) (Route, error) {
	a, err := c.Lookup(from)
	if err != nil {
		return Route{}, fmt.Errorf("route origin: %w", err)
	}
	b, err := c.Lookup(to)
	if err != nil {
		return Route{}, fmt.Errorf("route destination: %w", err)
	}
	if terrain == "" {
		terrain = TerrainPlains
	}

	d := DistanceKm(a, b)
	return Route{
		From:       a,
		To:         b,
		Terrain:    terrain,
		DistanceKm: d,
		Hours:      EstimateTravelTimeHours(float64(d), terrain),
	}, nil
}
