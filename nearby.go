package tripgeo

import (
	"fmt"
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
)

const (
	rtreeTolerance   = 0.0001
	rtreeMinChildren = 4
	rtreeMaxChildren = 16
	rtreeDimensions  = 2

	// DefaultNearbyCount is used when NearbyCities is asked for k <= 0.
	DefaultNearbyCount = 5
)

// cityItem wraps a catalog index for R-tree indexing.
type cityItem struct {
	idx  int
	rect rtreego.Rect
}

func (ci *cityItem) Bounds() rtreego.Rect {
	return ci.rect
}

func (c *Catalog) buildTree() {
	items := make([]rtreego.Spatial, len(c.cities))
	for i, city := range c.cities {
		p := rtreego.Point{city.Latitude, city.Longitude}
		items[i] = &cityItem{idx: i, rect: p.ToRect(rtreeTolerance)}
	}
	c.tree = rtreego.NewTree(rtreeDimensions, rtreeMinChildren, rtreeMaxChildren, items...)
}

// NearbyCity is a catalog record with its distance from a reference point.
type NearbyCity struct {
	City           City    `json:"city"`
	StraightLineKm float64 `json:"straight_line_km"`
	RoadKm         int     `json:"road_km"`
}

// NearbyCities returns up to k records closest to the named city, nearest
// first by great-circle distance. The named record itself is never included.
// k <= 0 means DefaultNearbyCount.
func (c *Catalog) NearbyCities(name string, k int) ([]NearbyCity, error) {
	origin, ok := c.lookupIndex(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if k <= 0 {
		k = DefaultNearbyCount
	}

	// The tree ranks by planar distance in degrees, which is not great-circle
	// order. Its first k+1 hits only bound the answer: the true k nearest all
	// lie within the k-th smallest great-circle distance among them.
	fetch := k + 1
	if fetch > len(c.cities) {
		fetch = len(c.cities)
	}
	o := c.cities[origin]
	results := c.tree.NearestNeighbors(fetch, rtreego.Point{o.Latitude, o.Longitude})

	candidates := make([]nearestCandidate, 0, len(results))
	for _, r := range results {
		item, ok := r.(*cityItem)
		if !ok || item.idx == origin {
			continue
		}
		city := c.cities[item.idx]
		d := HaversineKm(o.Latitude, o.Longitude, city.Latitude, city.Longitude)
		candidates = append(candidates, nearestCandidate{idx: item.idx, dist: d})
	}
	if len(candidates) >= k {
		sortCandidates(candidates)
		bound := candidates[k-1].dist
		candidates = candidates[:0]
		for _, cand := range c.withinRadius(o.Latitude, o.Longitude, bound) {
			if cand.idx != origin {
				candidates = append(candidates, cand)
			}
		}
		sortCandidates(candidates)
		if len(candidates) > k {
			candidates = candidates[:k]
		}
	}
	return c.toNearby(candidates), nil
}

// WithinRadius returns every record within radiusKm great-circle kilometers
// of the given point, nearest first. A non-positive radius returns nothing.
func (c *Catalog) WithinRadius(lat, lng, radiusKm float64) ([]NearbyCity, error) {
	if !ValidCoordinates(lat, lng) {
		return nil, fmt.Errorf("invalid coordinates %v,%v", lat, lng)
	}
	if !(radiusKm > 0) {
		return []NearbyCity{}, nil
	}
	return c.toNearby(c.withinRadius(lat, lng, radiusKm)), nil
}

// withinRadius collects the records at most radiusKm from the point. The
// R-tree query uses the smallest lat/lng box containing the spherical cap.
func (c *Catalog) withinRadius(lat, lng, radiusKm float64) []nearestCandidate {
	ang := radiusKm / EarthRadiusKm
	latDeg := ang * (180 / math.Pi)
	lngDeg := 360.0
	if s, cos := math.Sin(ang), math.Cos(lat*math.Pi/180); ang < math.Pi/2 && s < cos {
		lngDeg = math.Asin(s/cos) * (180 / math.Pi)
	}

	bounds, err := rtreego.NewRect(
		rtreego.Point{lat - latDeg - rtreeTolerance, lng - lngDeg - rtreeTolerance},
		[]float64{2 * (latDeg + rtreeTolerance), 2 * (lngDeg + rtreeTolerance)},
	)
	if err != nil {
		return nil
	}

	var candidates []nearestCandidate
	for _, r := range c.tree.SearchIntersect(bounds) {
		item, ok := r.(*cityItem)
		if !ok {
			continue
		}
		city := c.cities[item.idx]
		if d := HaversineKm(lat, lng, city.Latitude, city.Longitude); d <= radiusKm {
			candidates = append(candidates, nearestCandidate{idx: item.idx, dist: d})
		}
	}
	return candidates
}

// sortCandidates orders by distance, then catalog order.
func sortCandidates(cs []nearestCandidate) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].dist != cs[j].dist {
			return cs[i].dist < cs[j].dist
		}
		return cs[i].idx < cs[j].idx
	})
}

func (c *Catalog) toNearby(cs []nearestCandidate) []NearbyCity {
	sortCandidates(cs)
	out := make([]NearbyCity, len(cs))
	for i, cand := range cs {
		out[i] = NearbyCity{
			City:           c.cities[cand.idx].clone(),
			StraightLineKm: roundTo(cand.dist, 1),
			RoadKm:         int(math.Round(cand.dist * RoadDistanceFactor)),
		}
	}
	return out
}
