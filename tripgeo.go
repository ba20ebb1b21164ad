// Package tripgeo is an offline city catalog for trip planning. It answers
// free-text city searches, exact name lookups, road-distance and travel-time
// estimates, and serves the curated lists used to pre-fill trip forms.
//
// The catalog is compiled into the binary and never modified after it is
// loaded, so a *Catalog is safe for concurrent use without locking.
package tripgeo

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/golang/geo/s2"
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// Sentinel errors. Callers should match them with errors.Is.
var (
	ErrNotFound               = errors.New("city not found")
	ErrUnknownTerrain         = errors.New("unknown terrain")
	ErrUnknownSettlementClass = errors.New("unknown settlement class")
	ErrInvalidRecord          = errors.New("invalid catalog record")
)

const (
	// DefaultMinQueryLen is the shortest normalized query (in runes) that Search will scan for.
	DefaultMinQueryLen = 2
	// DefaultLimit is the result count used when a caller passes limit <= 0.
	DefaultLimit = 10
)

// Config contains configuration options for Catalog construction.
type Config struct {
	DataFile     string // TSV catalog on disk; empty means the embedded table
	MinQueryLen  int    // minimum normalized query length for Search
	DefaultLimit int    // Search limit used when the caller passes limit <= 0
}

// Option is a functional option for configuring a Catalog.
type Option func(*Config)

// WithDataFile loads the catalog from a TSV file instead of the embedded table.
// Files ending in ".bz2" are decompressed transparently.
func WithDataFile(path string) Option {
	return func(c *Config) {
		c.DataFile = path
	}
}

// WithMinQueryLen sets the minimum query length accepted by Search.
func WithMinQueryLen(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MinQueryLen = n
		}
	}
}

// WithDefaultLimit sets the result count Search uses when limit <= 0.
func WithDefaultLimit(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.DefaultLimit = n
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		MinQueryLen:  DefaultMinQueryLen,
		DefaultLimit: DefaultLimit,
	}
}

// Catalog is the read-only table of cities plus the lookup structures built
// over it at load time.
type Catalog struct {
	cities []City
	config *Config

	cellIndex   map[s2.CellID][]int     // S2 cells for Nearest
	tree        *rtreego.Rtree          // R-tree for NearbyCities and WithinRadius
	matcher     ahocorasick.AhoCorasick // name matcher for ExtractCities
	mentionCity []int                   // matcher pattern -> first catalog index
}

// NewCatalog loads and validates the catalog.
//
//	c, err := tripgeo.NewCatalog()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, city := range c.Search("har", 5) {
//	    fmt.Println(city.Name, city.Region)
//	}
func NewCatalog(opts ...Option) (*Catalog, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	cities, err := loadCities(cfg.DataFile)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	if len(cities) == 0 {
		return nil, fmt.Errorf("loading catalog: %w: no records", ErrInvalidRecord)
	}
	return newCatalog(cities, cfg), nil
}

// NewCatalogFromCities builds a catalog from an in-memory table. Records are
// validated with the same rules as the embedded data and copied, so later
// changes to the argument do not affect the catalog.
func NewCatalogFromCities(cities []City, opts ...Option) (*Catalog, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	owned := make([]City, len(cities))
	for i, city := range cities {
		if err := city.validate(); err != nil {
			return nil, fmt.Errorf("record %d (%q): %w", i, city.Name, err)
		}
		owned[i] = city.clone()
	}
	return newCatalog(owned, cfg), nil
}

func newCatalog(cities []City, cfg *Config) *Catalog {
	c := &Catalog{cities: cities, config: cfg}
	c.buildCellIndex()
	c.buildTree()
	c.buildMentionMatcher()
	return c
}

// Len returns the number of records in the catalog.
func (c *Catalog) Len() int {
	return len(c.cities)
}

// Cities returns a copy of every record in catalog order.
func (c *Catalog) Cities() []City {
	out := make([]City, len(c.cities))
	for i, city := range c.cities {
		out[i] = city.clone()
	}
	return out
}

// Singleton for the embedded catalog.
var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
	defaultCatalogErr  error
)

// Default returns the shared catalog built from the embedded table,
// loading it on first call.
func Default() (*Catalog, error) {
	defaultCatalogOnce.Do(func() {
		defaultCatalog, defaultCatalogErr = NewCatalog()
	})
	return defaultCatalog, defaultCatalogErr
}

// mustDefault backs the package-level helpers. The embedded table is part of
// the build, so a load failure is a programming error.
func mustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("tripgeo: embedded catalog: %v", err))
	}
	return c
}

// SearchCities searches the embedded catalog. See Catalog.Search.
func SearchCities(query string, limit int) []City {
	return mustDefault().Search(query, limit)
}

// GetCityByName looks up a city in the embedded catalog. See Catalog.Lookup.
func GetCityByName(name string) (City, error) {
	return mustDefault().Lookup(name)
}

// GetPopularSourceCities returns the popular trip origins from the embedded catalog.
func GetPopularSourceCities() []City {
	return mustDefault().PopularSourceCities()
}

// GetDestinationShortcuts returns the fixed list of pilgrimage trip shortcuts.
func GetDestinationShortcuts() []DestinationShortcut {
	return DestinationShortcuts()
}
