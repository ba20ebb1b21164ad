package tripgeo

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	. "gopkg.in/check.v1"
)

// Hook up gocheck into the "go test" runner.
func Test(t *testing.T) { TestingT(t) }

type CatalogSuite struct {
	catalog *Catalog
}

var _ = Suite(&CatalogSuite{})

func (s *CatalogSuite) SetUpSuite(c *C) {
	var err error
	s.catalog, err = NewCatalog()
	c.Assert(err, IsNil)
}

func (s *CatalogSuite) TestNewCatalog(c *C) {
	c.Assert(s.catalog, Not(IsNil))
	c.Assert(s.catalog.Len() >= minCityCount, Equals, true)
	c.Assert(s.catalog.cellIndex, Not(HasLen), 0)
	c.Assert(s.catalog.tree.Size(), Equals, s.catalog.Len())
	c.Assert(s.catalog.Cities(), HasLen, s.catalog.Len())
}

func (s *CatalogSuite) TestDefaultIsShared(c *C) {
	a, err := Default()
	c.Assert(err, IsNil)
	b, err := Default()
	c.Assert(err, IsNil)
	c.Assert(a == b, Equals, true)
}

func (s *CatalogSuite) TestSearchDelhi(c *C) {
	results := s.catalog.Search("Del", 5)
	c.Assert(results, Not(HasLen), 0)
	c.Assert(results[0].Name, Equals, "Delhi")
	c.Assert(results[0].PopulationEstimate(), Equals, int64(32941000))
	for _, r := range results[1:] {
		c.Assert(r.PopulationEstimate() < results[0].PopulationEstimate(), Equals, true)
	}

	// Package-level helper uses the embedded catalog.
	c.Assert(SearchCities("Del", 5), DeepEquals, results)
}

func (s *CatalogSuite) TestSearchShortQuery(c *C) {
	c.Assert(s.catalog.Search("", 10), HasLen, 0)
	c.Assert(s.catalog.Search("d", 10), HasLen, 0)
	c.Assert(s.catalog.Search("  d  ", 10), HasLen, 0)
	c.Assert(s.catalog.Search("zzzz", 10), HasLen, 0)
}

func (s *CatalogSuite) TestLookup(c *C) {
	lower, err := s.catalog.Lookup("delhi")
	c.Assert(err, IsNil)
	upper, err := s.catalog.Lookup("Delhi")
	c.Assert(err, IsNil)
	c.Assert(lower, DeepEquals, upper)
	c.Assert(lower.Latitude, Equals, 28.6139)
	c.Assert(lower.Longitude, Equals, 77.2090)
	c.Assert(lower.Class, Equals, ClassMetro)

	_, err = s.catalog.Lookup("Atlantis")
	c.Assert(errors.Is(err, ErrNotFound), Equals, true)

	_, err = GetCityByName("")
	c.Assert(errors.Is(err, ErrNotFound), Equals, true)
}

func (s *CatalogSuite) TestDistanceDelhiMumbai(c *C) {
	delhi, err := GetCityByName("Delhi")
	c.Assert(err, IsNil)
	mumbai, err := GetCityByName("Mumbai")
	c.Assert(err, IsNil)

	c.Assert(CalculateDistanceKm(delhi, mumbai), Equals, 1493)
	c.Assert(CalculateDistanceKm(mumbai, delhi), Equals, 1493)
	c.Assert(CalculateDistanceKm(delhi, delhi), Equals, 0)
}

func (s *CatalogSuite) TestRoute(c *C) {
	r, err := s.catalog.Route("haridwar", "Kedarnath", TerrainMountains)
	c.Assert(err, IsNil)
	c.Assert(r.From.Name, Equals, "Haridwar")
	c.Assert(r.To.Name, Equals, "Kedarnath")
	c.Assert(r.DistanceKm, Equals, 160)
	c.Assert(r.Hours, Equals, 6.4)

	r, err = s.catalog.Route("Delhi", "Agra", "")
	c.Assert(err, IsNil)
	c.Assert(r.Terrain, Equals, TerrainPlains)
	c.Assert(r.DistanceKm, Equals, 231)
	c.Assert(r.Hours, Equals, 4.6)

	_, err = s.catalog.Route("Delhi", "Atlantis", TerrainPlains)
	c.Assert(errors.Is(err, ErrNotFound), Equals, true)
}

func (s *CatalogSuite) TestValidateCatalog(c *C) {
	report, err := ValidateCatalog(s.catalog)
	c.Assert(err, IsNil)
	c.Assert(len(report) > 0, Equals, true)
}

func (s *CatalogSuite) TestCitiesReturnsCopies(c *C) {
	cities := s.catalog.Cities()
	cities[0].Name = "Changed"
	*cities[0].Population = 1

	again := s.catalog.Cities()
	c.Assert(again[0].Name, Equals, "Delhi")
	c.Assert(again[0].PopulationEstimate(), Equals, int64(32941000))
}

// TestConcurrentQueries runs every read operation on the shared catalog from
// many goroutines and checks each answer against a sequential run.
func TestConcurrentQueries(t *testing.T) {
	g, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	queries := []string{"Delhi", "Haridwar", "Kedarnath", "Leh", "Mumbai", "Varanasi", "Srinagar", "Navi Mumbai"}
	query := func(name string) string {
		city, err := g.Lookup(name)
		if err != nil {
			return err.Error()
		}
		nearby, _ := g.NearbyCities(name, 3)
		nearest, _ := g.Nearest(city.Latitude, city.Longitude)
		return fmt.Sprint(
			names(g.Search(name[:3], 5)),
			city.Name,
			names(g.ExtractCities("from "+name+" to Agra")),
			len(nearby), nearest.Name,
			len(g.Suggest(name+"x", 2, 3)),
		)
	}
	want := make(map[string]string, len(queries))
	for _, name := range queries {
		want[name] = query(name)
	}

	const numGoroutines = 32
	var wg sync.WaitGroup
	errChan := make(chan string, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errChan <- fmt.Sprintf("goroutine %d panicked: %v", id, r)
				}
			}()
			for j := 0; j < 20; j++ {
				name := queries[(id+j)%len(queries)]
				if got := query(name); got != want[name] {
					errChan <- fmt.Sprintf("goroutine %d: %s = %s, want %s", id, name, got, want[name])
					return
				}
			}
		}(i)
	}

	wg.Wait()
	close(errChan)

	for msg := range errChan {
		t.Errorf("Concurrency error: %s", msg)
	}
}

func BenchmarkNewCatalog(b *testing.B) {
	for n := 0; n < b.N; n++ {
		if _, err := NewCatalog(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearch(b *testing.B) {
	c, err := Default()
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		c.Search("har", 10)
	}
}

func BenchmarkNearest(b *testing.B) {
	c, err := Default()
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		c.Nearest(29.95, 78.16)
	}
}
