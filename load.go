package tripgeo

import (
	"bufio"
	"compress/bzip2"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

//go:embed data/cities.tsv
var catalogData embed.FS

const embeddedCatalog = "data/cities.tsv"

// catalogFields is the column count of a catalog row:
// name, region, latitude, longitude, population, class.
const catalogFields = 6

// openCatalogFile opens the configured data file, or the embedded table when
// path is empty. The returned cleanup closes the underlying file.
func openCatalogFile(path string) (io.Reader, func() error, error) {
	var (
		fh  fs.File
		err error
	)
	if path == "" {
		fh, err = catalogData.Open(embeddedCatalog)
	} else {
		fh, err = os.Open(path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", sourceName(path), err)
	}
	if strings.HasSuffix(path, ".bz2") {
		return bzip2.NewReader(fh), fh.Close, nil
	}
	return fh, fh.Close, nil
}

func sourceName(path string) string {
	if path == "" {
		return embeddedCatalog
	}
	return path
}

func loadCities(path string) ([]City, error) {
	r, cleanup, err := openCatalogFile(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return parseCatalog(r, sourceName(path))
}

// parseCatalog reads tab-separated catalog rows. Blank lines and lines
// starting with '#' are skipped. The first invalid row aborts the load with
// an error naming its line.
func parseCatalog(r io.Reader, source string) ([]City, error) {
	var cities []City

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		city, err := parseCatalogLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", source, lineNo, err)
		}
		cities = append(cities, city)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	return cities, nil
}

func parseCatalogLine(line string) (City, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != catalogFields {
		return City{}, fmt.Errorf("%w: want %d fields, got %d", ErrInvalidRecord, catalogFields, len(fields))
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return City{}, fmt.Errorf("%w: latitude: %v", ErrInvalidRecord, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
	if err != nil {
		return City{}, fmt.Errorf("%w: longitude: %v", ErrInvalidRecord, err)
	}

	var pop *int64
	if raw := strings.TrimSpace(fields[4]); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return City{}, fmt.Errorf("%w: population: %v", ErrInvalidRecord, err)
		}
		pop = &n
	}

	class, err := ParseSettlementClass(fields[5])
	if err != nil {
		return City{}, err
	}

	c := City{
		Name:       strings.TrimSpace(fields[0]),
		Region:     strings.TrimSpace(fields[1]),
		Latitude:   lat,
		Longitude:  lng,
		Population: pop,
		Class:      class,
	}
	if err := c.validate(); err != nil {
		return City{}, err
	}
	return c, nil
}
