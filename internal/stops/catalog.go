// Package stops parses the process-wide stops catalog: a CSV of
// (name, lat, lng) loaded once at startup and treated as immutable and
// read-only thereafter.
package stops

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/transitwise/itinerary/internal/models"
)

// Catalog maps stop names to their geographic point. Names are unique
// after whitespace trim; Names() returns them sorted case-insensitively.
type Catalog struct {
	points map[string]models.Point
	names  []string
}

// Load parses a stops CSV from path. The first row may be a header
// ("name,lat,lng" in any case); it is detected by a non-numeric lat
// column and skipped.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stops: open %s: %w", path, err)
	}
	defer f.Close()

	return parse(f)
}

// LoadForTest parses a stops CSV from an arbitrary reader, bypassing the
// filesystem, for use in other packages' unit tests.
func LoadForTest(r io.Reader) (*Catalog, error) {
	return parse(r)
}

func parse(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	cat := &Catalog{points: make(map[string]models.Point)}

	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("stops: skipping malformed row: %v", err)
			continue
		}
		if len(record) < 3 {
			log.Printf("stops: skipping short row: %v", record)
			continue
		}

		name := strings.TrimSpace(record[0])
		latStr := strings.TrimSpace(record[1])
		lngStr := strings.TrimSpace(record[2])

		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			if first {
				// Likely a header row ("name,lat,lng"); skip silently.
				first = false
				continue
			}
			log.Printf("stops: skipping row with invalid lat for %q: %v", name, err)
			continue
		}
		first = false

		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			log.Printf("stops: skipping row with invalid lng for %q: %v", name, err)
			continue
		}

		if name == "" {
			continue
		}
		if _, exists := cat.points[name]; exists {
			log.Printf("stops: duplicate stop name %q, keeping first occurrence", name)
			continue
		}

		cat.points[name] = models.Point{Lat: lat, Lng: lng}
		cat.names = append(cat.names, name)
	}

	sort.Slice(cat.names, func(i, j int) bool {
		return strings.ToLower(cat.names[i]) < strings.ToLower(cat.names[j])
	})

	return cat, nil
}

// Point returns the stop's coordinates and whether it is known.
func (c *Catalog) Point(name string) (models.Point, bool) {
	p, ok := c.points[strings.TrimSpace(name)]
	return p, ok
}

// Has reports whether name is a known stop.
func (c *Catalog) Has(name string) bool {
	_, ok := c.points[strings.TrimSpace(name)]
	return ok
}

// Names returns all stop names, sorted case-insensitively.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of known stops.
func (c *Catalog) Len() int {
	return len(c.names)
}
