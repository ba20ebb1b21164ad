package tripgeo

import (
	"fmt"
	"strings"
)

// minCityCount is the smallest embedded catalog considered healthy.
const minCityCount = 150

// knownLookups are used to validate exact lookup works in both cases.
var knownLookups = []struct {
	query      string
	wantName   string
	wantRegion string
}{
	{"Delhi", "Delhi", "Delhi"},
	{"delhi", "Delhi", "Delhi"},
	{"MUMBAI", "Mumbai", "Maharashtra"},
	{" Haridwar ", "Haridwar", "Uttarakhand"},
	{"kedarnath", "Kedarnath", "Uttarakhand"},
}

// knownRoutes pin road-distance estimates for well-known pairs.
var knownRoutes = []struct {
	from, to string
	wantKm   int
}{
	{"Delhi", "Mumbai", 1493},
	{"Delhi", "Haridwar", 227},
	{"Bengaluru", "Chennai", 377},
}

// ValidateCatalog performs integrity and functional checks on a catalog:
// size, class coverage, known lookups and distances, curated lists and
// reverse lookup. Use it to check a replacement data file before deploying
// it. The report lists each check that passed before any failure.
func ValidateCatalog(c *Catalog) ([]string, error) {
	var report []string

	if c.Len() < minCityCount {
		return report, fmt.Errorf("city count too low: got %d, want >= %d", c.Len(), minCityCount)
	}
	report = append(report, fmt.Sprintf("city count: %d", c.Len()))

	classes := make(map[SettlementClass]int)
	for _, city := range c.cities {
		classes[city.Class]++
	}
	for _, sc := range SettlementClasses {
		if classes[sc] == 0 {
			return report, fmt.Errorf("no records of class %q", sc)
		}
	}
	report = append(report, fmt.Sprintf("settlement classes: %d", len(classes)))

	for _, tc := range knownLookups {
		city, err := c.Lookup(tc.query)
		if err != nil {
			return report, fmt.Errorf("lookup(%q): %w", tc.query, err)
		}
		if city.Name != tc.wantName || city.Region != tc.wantRegion {
			return report, fmt.Errorf("lookup(%q) = %s, want %s, %s", tc.query, city, tc.wantName, tc.wantRegion)
		}
	}
	report = append(report, fmt.Sprintf("lookups: %d OK", len(knownLookups)))

	for _, tc := range knownRoutes {
		r, err := c.Route(tc.from, tc.to, TerrainPlains)
		if err != nil {
			return report, err
		}
		if r.DistanceKm != tc.wantKm {
			return report, fmt.Errorf("distance(%s, %s) = %d, want %d", tc.from, tc.to, r.DistanceKm, tc.wantKm)
		}
	}
	report = append(report, fmt.Sprintf("routes: %d OK", len(knownRoutes)))

	if got := len(c.PopularSourceCities()); got != len(PopularSourceNames) {
		var missing []string
		for _, n := range PopularSourceNames {
			if _, err := c.Lookup(n); err != nil {
				missing = append(missing, n)
			}
		}
		return report, fmt.Errorf("popular sources missing from catalog: %s", strings.Join(missing, ", "))
	}
	report = append(report, fmt.Sprintf("popular sources: %d OK", len(PopularSourceNames)))

	for _, s := range destinationShortcuts {
		if _, err := c.ResolveShortcut(s.ID); err != nil {
			return report, err
		}
	}
	report = append(report, fmt.Sprintf("destination shortcuts: %d OK", len(destinationShortcuts)))

	delhi, _ := c.Lookup("Delhi")
	got, err := c.Nearest(delhi.Latitude, delhi.Longitude)
	if err != nil {
		return report, fmt.Errorf("nearest(Delhi): %w", err)
	}
	if got.Name != delhi.Name {
		return report, fmt.Errorf("nearest(Delhi) = %q", got.Name)
	}
	report = append(report, "reverse lookup OK")

	return report, nil
}
