package tripgeo

import (
	"fmt"
	"math"
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"
)

// SettlementClass is a coarse display and relevance tag. It does not change
// how any operation treats a record.
type SettlementClass string

const (
	ClassMetro      SettlementClass = "metro"
	ClassMajor      SettlementClass = "major"
	ClassCity       SettlementClass = "city"
	ClassTown       SettlementClass = "town"
	ClassPilgrimage SettlementClass = "pilgrimage-site"
)

// SettlementClasses lists every recognized class.
var SettlementClasses = []SettlementClass{ClassMetro, ClassMajor, ClassCity, ClassTown, ClassPilgrimage}

// ParseSettlementClass converts a catalog string into a SettlementClass.
// Matching is case-insensitive; anything outside the fixed set is rejected.
func ParseSettlementClass(s string) (SettlementClass, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, sc := range SettlementClasses {
		if s == string(sc) {
			return sc, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSettlementClass, s)
}

// Valid reports whether sc is one of the recognized classes.
func (sc SettlementClass) Valid() bool {
	for _, known := range SettlementClasses {
		if sc == known {
			return true
		}
	}
	return false
}

// geohashPrecision of 7 gives cells of roughly 150m, enough to tell
// neighboring towns apart.
const geohashPrecision = 7

// City is one immutable catalog record.
type City struct {
	Name       string          `json:"name"`
	Region     string          `json:"region"`
	Latitude   float64         `json:"latitude"`
	Longitude  float64         `json:"longitude"`
	Population *int64          `json:"population,omitempty"` // nil when no estimate is known
	Class      SettlementClass `json:"class"`
}

// PopulationEstimate returns the population, or 0 when none is recorded.
// Every ranking in this package goes through it.
func (c City) PopulationEstimate() int64 {
	if c.Population == nil {
		return 0
	}
	return *c.Population
}

// Geohash returns the geohash of the record's coordinates.
func (c City) Geohash() string {
	return geohash.EncodeWithPrecision(c.Latitude, c.Longitude, geohashPrecision)
}

// String implements fmt.Stringer.
func (c City) String() string {
	return c.Name + ", " + c.Region
}

// Pop is a convenience for building records in code.
func Pop(n int64) *int64 {
	return &n
}

// clone copies the record so callers never share the catalog's population pointer.
func (c City) clone() City {
	if c.Population != nil {
		c.Population = Pop(*c.Population)
	}
	return c
}

// validate applies the load-time rules shared by the embedded table,
// data files and NewCatalogFromCities.
func (c City) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRecord)
	}
	if strings.TrimSpace(c.Region) == "" {
		return fmt.Errorf("%w: empty region", ErrInvalidRecord)
	}
	// Reject NaN/Inf before range checks; NaN compares false against everything.
	if math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidRecord, c.Latitude)
	}
	if math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidRecord, c.Longitude)
	}
	if c.Population != nil && *c.Population < 0 {
		return fmt.Errorf("%w: negative population %d", ErrInvalidRecord, *c.Population)
	}
	if !c.Class.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSettlementClass, string(c.Class))
	}
	return nil
}
