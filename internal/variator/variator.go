// Package variator implements the multi-itinerary variator: it runs the
// solver repeatedly with progressively restricted agency sets to produce
// up to k distinct itineraries, the same way a route planner re-runs one
// search under different strategies and compares results, adapted here
// to vary the agency set instead of the cost strategy.
package variator

import (
	"context"
	"time"

	"github.com/transitwise/itinerary/internal/agency"
	"github.com/transitwise/itinerary/internal/models"
	"github.com/transitwise/itinerary/internal/search"
	"github.com/transitwise/itinerary/internal/solver"
	"github.com/transitwise/itinerary/internal/stops"
)

// DefaultMaxCount is the default k when the caller asks for zero or a
// negative count.
const DefaultMaxCount = 3

// Find searches the full agency set first, then the same search with
// each agency in agenciesToVary disabled in turn (one run
// per distinct agency used on a leg of the first itinerary), stopping
// once maxCount distinct itineraries have been collected or candidates
// are exhausted.
func Find(ctx context.Context, sc search.Context, catalog *stops.Catalog, allAgencies, agenciesToVary []agency.Agency, origin, destination models.NodeID, tripDatetime time.Time, depart bool, maxCount int) ([][]models.Direction, error) {
	if maxCount <= 0 {
		maxCount = DefaultMaxCount
	}

	first, err := solver.Find(ctx, sc, catalog, allAgencies, origin, destination, tripDatetime, depart)
	if err != nil {
		return nil, err
	}

	results := [][]models.Direction{first}
	seen := map[string]bool{signature(first): true}

	usedKinds := make(map[models.AgencyKind]bool)
	for _, leg := range first {
		usedKinds[leg.Agency] = true
	}

	for _, a := range agenciesToVary {
		if len(results) >= maxCount {
			break
		}
		if !usedKinds[a.Kind()] {
			continue
		}

		restricted := without(allAgencies, a.Kind())
		candidate, err := solver.Find(ctx, sc, catalog, restricted, origin, destination, tripDatetime, depart)
		if err != nil {
			continue
		}

		sig := signature(candidate)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		results = append(results, candidate)
	}

	return results, nil
}

func without(agencies []agency.Agency, kind models.AgencyKind) []agency.Agency {
	out := make([]agency.Agency, 0, len(agencies))
	for _, a := range agencies {
		if a.Kind() == kind {
			continue
		}
		out = append(out, a)
	}
	return out
}

// signature builds the duplicate-comparison key: the ordered
// sequence of (from_node, to_node, datetime_depart, datetime_arrive,
// agency_kind) tuples.
func signature(legs []models.Direction) string {
	var sb []byte
	for _, leg := range legs {
		sb = append(sb, leg.FromNode...)
		sb = append(sb, '|')
		sb = append(sb, leg.ToNode...)
		sb = append(sb, '|')
		sb = append(sb, leg.DatetimeDepart.Format(time.RFC3339Nano)...)
		sb = append(sb, '|')
		sb = append(sb, leg.DatetimeArrive.Format(time.RFC3339Nano)...)
		sb = append(sb, '|')
		sb = append(sb, leg.Agency...)
		sb = append(sb, ';')
	}
	return string(sb)
}
