package tripgeo

import (
	"sort"
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// buildMentionMatcher compiles every distinct catalog name into one
// Aho-Corasick automaton that reports all overlapping whole-word matches.
func (c *Catalog) buildMentionMatcher() {
	seen := make(map[string]bool, len(c.cities))
	c.mentionCity = make([]int, 0, len(c.cities))
	patterns := make([]string, 0, len(c.cities))
	for i, city := range c.cities {
		key := strings.ToLower(city.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		c.mentionCity = append(c.mentionCity, i)
		patterns = append(patterns, city.Name)
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
		MatchKind:            ahocorasick.StandardMatch,
	})
	c.matcher = builder.Build(patterns)
}

// ExtractCities returns the catalog records mentioned by name in free text,
// in order of first mention and without duplicates. Matching is whole-word
// and ASCII case-insensitive. Where mentions overlap, the leftmost one wins
// and then the longest, so "Navi Mumbai" is one mention rather than two.
// A longer name that fails the word-boundary check does not hide a shorter
// name at the same position: "Srinagar Garhwalkar" still mentions Srinagar.
func (c *Catalog) ExtractCities(text string) []City {
	out := []City{}
	if text == "" {
		return out
	}

	var matches []ahocorasick.Match
	iter := c.matcher.IterOverlapping(text)
	for m := iter.Next(); m != nil; m = iter.Next() {
		matches = append(matches, *m)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Start() != matches[j].Start() {
			return matches[i].Start() < matches[j].Start()
		}
		return matches[i].End() > matches[j].End()
	})

	seen := make(map[int]bool)
	covered := 0
	for i := range matches {
		m := &matches[i]
		if m.Start() < covered {
			continue
		}
		covered = m.End()
		idx := c.mentionCity[m.Pattern()]
		if seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, c.cities[idx].clone())
	}
	return out
}
