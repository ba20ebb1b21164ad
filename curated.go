package tripgeo

import (
	"fmt"
	"strings"
)

// PopularSourceNames is the allowlist of cities offered as trip origins.
var PopularSourceNames = []string{
	"Delhi",
	"Mumbai",
	"Bengaluru",
	"Chennai",
	"Kolkata",
	"Hyderabad",
	"Pune",
	"Ahmedabad",
	"Jaipur",
	"Lucknow",
	"Chandigarh",
	"Dehradun",
}

// DestinationShortcut maps a trip label to one representative catalog record
// used to pre-populate the destination of a trip form.
type DestinationShortcut struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	CityName string `json:"city_name"`
}

var destinationShortcuts = []DestinationShortcut{
	{ID: "char-dham", Label: "Char Dham Yatra", CityName: "Haridwar"},
	{ID: "do-dham", Label: "Do Dham Yatra (Kedarnath & Badrinath)", CityName: "Rishikesh"},
	{ID: "kedarnath", Label: "Kedarnath Yatra", CityName: "Kedarnath"},
	{ID: "badrinath", Label: "Badrinath Yatra", CityName: "Badrinath"},
	{ID: "gangotri-yamunotri", Label: "Gangotri & Yamunotri", CityName: "Uttarkashi"},
	{ID: "hemkund-sahib", Label: "Hemkund Sahib Yatra", CityName: "Joshimath"},
	{ID: "vaishno-devi", Label: "Vaishno Devi Yatra", CityName: "Katra"},
	{ID: "kashi", Label: "Kashi Vishwanath Darshan", CityName: "Varanasi"},
	{ID: "tirupati", Label: "Tirupati Balaji Darshan", CityName: "Tirupati"},
	{ID: "braj", Label: "Braj Yatra (Mathura & Vrindavan)", CityName: "Mathura"},
}

// PopularSourceCities returns the catalog records named in
// PopularSourceNames, in catalog order. Allowlisted names missing from the
// catalog are skipped.
func (c *Catalog) PopularSourceCities() []City {
	allow := make(map[string]bool, len(PopularSourceNames))
	for _, n := range PopularSourceNames {
		allow[strings.ToLower(n)] = true
	}

	out := make([]City, 0, len(allow))
	seen := make(map[string]bool, len(allow))
	for _, city := range c.cities {
		key := strings.ToLower(city.Name)
		if allow[key] && !seen[key] {
			seen[key] = true
			out = append(out, city.clone())
		}
	}
	return out
}

// DestinationShortcuts returns a copy of the fixed shortcut list.
func DestinationShortcuts() []DestinationShortcut {
	out := make([]DestinationShortcut, len(destinationShortcuts))
	copy(out, destinationShortcuts)
	return out
}

// ResolveShortcut returns the representative record for a shortcut id.
func (c *Catalog) ResolveShortcut(id string) (City, error) {
	id = strings.TrimSpace(id)
	for _, s := range destinationShortcuts {
		if strings.EqualFold(s.ID, id) {
			city, err := c.Lookup(s.CityName)
			if err != nil {
				return City{}, fmt.Errorf("shortcut %q: %w", s.ID, err)
			}
			return city, nil
		}
	}
	return City{}, fmt.Errorf("%w: no shortcut %q", ErrNotFound, id)
}
