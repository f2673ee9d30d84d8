// Package departures implements the departure lister: repeatedly query
// every agency for its earliest edge out of a node, sort, emit, and
// advance past the last emitted departure. The query-every-trip,
// sort-by-departure, limit shape is the same one a stop-departures
// endpoint runs against a timetable table, reused here as a library
// call over live agencies instead of one SQL query against a pre-baked
// join.
package departures

import (
	"context"
	"sort"
	"time"

	"github.com/transitwise/itinerary/internal/agency"
	"github.com/transitwise/itinerary/internal/graphgen"
	"github.com/transitwise/itinerary/internal/models"
	"github.com/transitwise/itinerary/internal/search"
	"github.com/transitwise/itinerary/internal/stops"
)

// List returns up to count soonest outbound edges from origin at or
// after anchor, strictly non-decreasing in DatetimeDepart.
// Destinations may repeat; a given (from, to, depart, agency) departure
// is never emitted twice.
func List(ctx context.Context, sc search.Context, catalog *stops.Catalog, agencies []agency.Agency, origin models.NodeID, anchor time.Time, count int) ([]models.Direction, error) {
	if count <= 0 {
		return nil, nil
	}

	for _, a := range agencies {
		a.UseOriginDestination(sc, origin, origin)
	}
	gen := graphgen.New(catalog, agencies)

	var out []models.Direction
	seen := make(map[string]bool)
	cursor := anchor

	for len(out) < count {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		batch := gen.Candidates(origin, cursor, false, "", []models.NodeID{origin}, sc)
		if len(batch) == 0 {
			break
		}
		sort.Slice(batch, func(i, j int) bool {
			return batch[i].DatetimeDepart.Before(batch[j].DatetimeDepart)
		})

		progressed := false
		for _, e := range batch {
			// Emit only this batch's soonest departure time; later edges are
			// re-queried from the advanced cursor so that an earlier next
			// departure to another neighbor is not skipped.
			if progressed && e.DatetimeDepart.After(out[len(out)-1].DatetimeDepart) {
				break
			}
			key := dedupeKey(e)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, e)
			progressed = true
			if len(out) >= count {
				break
			}
		}
		if !progressed {
			break
		}
		cursor = out[len(out)-1].DatetimeDepart.Add(time.Nanosecond)
	}

	return out, nil
}

func dedupeKey(e models.Direction) string {
	return e.FromNode + "|" + e.ToNode + "|" + e.DatetimeDepart.Format(time.RFC3339Nano) + "|" + string(e.Agency)
}
