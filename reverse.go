package tripgeo

import (
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/s2"
)

// s2CellLevel sets the granularity of the reverse-lookup index. Level 6 cells
// are at least 94km wide, so a cell plus its eight neighbors always covers
// maxNearestKm around any query point.
const s2CellLevel = 6

// maxNearestKm is the furthest a record may be from the query point for
// Nearest to return it.
const maxNearestKm = 75.0

// buildCellIndex creates an S2 cell index over the catalog.
func (c *Catalog) buildCellIndex() {
	c.cellIndex = make(map[s2.CellID][]int)
	for i, city := range c.cities {
		ll := s2.LatLngFromDegrees(city.Latitude, city.Longitude)
		cell := s2.CellIDFromLatLng(ll).Parent(s2CellLevel)
		c.cellIndex[cell] = append(c.cellIndex[cell], i)
	}
}

// cellAndNeighbors returns the given cell plus its edge and corner neighbors.
func cellAndNeighbors(cell s2.CellID) []s2.CellID {
	cells := make([]s2.CellID, 0, 9)
	cells = append(cells, cell)

	edgeNeighbors := cell.EdgeNeighbors()
	cells = append(cells, edgeNeighbors[:]...)

	seen := make(map[s2.CellID]bool, 9)
	for _, c := range cells {
		seen[c] = true
	}
	for _, en := range edgeNeighbors {
		for _, corner := range en.EdgeNeighbors() {
			if !seen[corner] {
				cells = append(cells, corner)
				seen[corner] = true
			}
		}
	}
	return cells
}

type nearestCandidate struct {
	idx  int
	dist float64 // km
}

// ValidCoordinates reports whether lat and lng are finite degrees within
// [-90, 90] and [-180, 180].
func ValidCoordinates(lat, lng float64) bool {
	// NaN fails both comparisons.
	return math.Abs(lat) <= 90 && math.Abs(lng) <= 180
}

// Nearest returns the catalog record closest to the given coordinates.
// Ties on distance go to the larger population, then catalog order. When no
// record lies within maxNearestKm, or the coordinates are out of range, it
// returns an error wrapping ErrNotFound.
func (c *Catalog) Nearest(lat, lng float64) (City, error) {
	if !ValidCoordinates(lat, lng) {
		return City{}, fmt.Errorf("%w: invalid coordinates %v,%v", ErrNotFound, lat, lng)
	}

	queryCell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lng)).Parent(s2CellLevel)

	var candidates []nearestCandidate
	for _, cell := range cellAndNeighbors(queryCell) {
		for _, idx := range c.cellIndex[cell] {
			city := c.cities[idx]
			d := HaversineKm(lat, lng, city.Latitude, city.Longitude)
			if d <= maxNearestKm {
				candidates = append(candidates, nearestCandidate{idx: idx, dist: d})
			}
		}
	}
	if len(candidates) == 0 {
		return City{}, fmt.Errorf("%w: nothing within %.0fkm of %.4f,%.4f", ErrNotFound, maxNearestKm, lat, lng)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		pa, pb := c.cities[a.idx].PopulationEstimate(), c.cities[b.idx].PopulationEstimate()
		if pa != pb {
			return pa > pb
		}
		return a.idx < b.idx
	})
	return c.cities[candidates[0].idx].clone(), nil
}
