package tripgeo

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// matchTier orders search hits; lower tiers rank first.
type matchTier uint8

const (
	tierNamePrefix   matchTier = iota // name starts with the query
	tierNameContains                  // name contains the query elsewhere
	tierRegion                        // only the region contains the query
)

type searchHit struct {
	idx  int
	tier matchTier
	pop  int64
}

// normalizeQuery trims and lowercases a free-text query.
func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Search returns the catalog records matching a free-text query.
//
// Hits fall into three tiers: names starting with the query, names
// containing it elsewhere, and records whose region alone contains it. Tiers
// are returned in that order regardless of population; within a tier records
// are ordered by population estimate, largest first, and equal populations
// keep catalog order. At most limit records are returned (DefaultLimit when
// limit <= 0).
//
// Queries shorter than the configured minimum return an empty slice without
// scanning. So do queries that match nothing.
func (c *Catalog) Search(query string, limit int) []City {
	q := normalizeQuery(query)
	if utf8.RuneCountInString(q) < c.config.MinQueryLen {
		return []City{}
	}
	if limit <= 0 {
		limit = c.config.DefaultLimit
	}

	var hits []searchHit
	for i, city := range c.cities {
		name := strings.ToLower(city.Name)
		switch {
		case strings.HasPrefix(name, q):
			hits = append(hits, searchHit{idx: i, tier: tierNamePrefix, pop: city.PopulationEstimate()})
		case strings.Contains(name, q):
			hits = append(hits, searchHit{idx: i, tier: tierNameContains, pop: city.PopulationEstimate()})
		case strings.Contains(strings.ToLower(city.Region), q):
			hits = append(hits, searchHit{idx: i, tier: tierRegion, pop: city.PopulationEstimate()})
		}
	}

	// hits are collected in catalog order, so a stable sort keeps ties deterministic.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].tier != hits[j].tier {
			return hits[i].tier < hits[j].tier
		}
		return hits[i].pop > hits[j].pop
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]City, len(hits))
	for i, h := range hits {
		out[i] = c.cities[h.idx].clone()
	}
	return out
}

// Lookup returns the record whose name equals name, ignoring case and
// surrounding whitespace. When several records share a name the first in
// catalog order wins. A miss returns an error wrapping ErrNotFound.
func (c *Catalog) Lookup(name string) (City, error) {
	idx, ok := c.lookupIndex(name)
	if !ok {
		return City{}, fmt.Errorf("%w: %q", ErrNotFound, strings.TrimSpace(name))
	}
	return c.cities[idx].clone(), nil
}

func (c *Catalog) lookupIndex(name string) (int, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false
	}
	for i, city := range c.cities {
		if strings.EqualFold(city.Name, name) {
			return i, true
		}
	}
	return 0, false
}
