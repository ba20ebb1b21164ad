package tripgeo

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// maxSuggestDistance caps the edit distance Suggest accepts; larger values
// match almost every short name in the catalog.
const maxSuggestDistance = 3

// maxSuggestInputLen bounds the work of a single Levenshtein comparison.
const maxSuggestInputLen = 64

// Suggestion is a "did you mean" candidate for a misspelled city name.
type Suggestion struct {
	City     City `json:"city"`
	Distance int  `json:"distance"` // edit distance between query and name
}

// Suggest returns catalog records whose names are within maxDist edits of
// query, closest first, then by population, then catalog order. maxDist <= 0
// means 2, and values above 3 are capped. limit <= 0 means the catalog's
// default search limit.
func (c *Catalog) Suggest(query string, maxDist, limit int) []Suggestion {
	q := normalizeQuery(query)
	if utf8.RuneCountInString(q) < c.config.MinQueryLen {
		return []Suggestion{}
	}
	if runes := []rune(q); len(runes) > maxSuggestInputLen {
		q = string(runes[:maxSuggestInputLen])
	}
	if maxDist <= 0 {
		maxDist = 2
	}
	if maxDist > maxSuggestDistance {
		maxDist = maxSuggestDistance
	}
	if limit <= 0 {
		limit = c.config.DefaultLimit
	}

	type scored struct {
		idx  int
		dist int
	}
	var hits []scored
	qLen := utf8.RuneCountInString(q)
	for i, city := range c.cities {
		name := strings.ToLower(city.Name)
		// Length difference is a lower bound on edit distance.
		if diff := utf8.RuneCountInString(name) - qLen; diff > maxDist || -diff > maxDist {
			continue
		}
		if d := levenshtein.ComputeDistance(q, name); d <= maxDist {
			hits = append(hits, scored{idx: i, dist: d})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return c.cities[hits[i].idx].PopulationEstimate() > c.cities[hits[j].idx].PopulationEstimate()
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]Suggestion, len(hits))
	for i, h := range hits {
		out[i] = Suggestion{City: c.cities[h.idx].clone(), Distance: h.dist}
	}
	return out
}
