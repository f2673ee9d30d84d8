// Package graphgen implements the weighted-edge generator: for a fixed
// anchor node and time, it enumerates every (agency, candidate neighbor)
// pair and keeps the first edge each agency offers, the same
// neighbor-expansion shape an in-memory path search uses, but sourcing
// neighbors from the stops catalog plus the request's free-form
// endpoints instead of a pre-materialized graph.
package graphgen

import (
	"time"

	"github.com/transitwise/itinerary/internal/agency"
	"github.com/transitwise/itinerary/internal/models"
	"github.com/transitwise/itinerary/internal/search"
	"github.com/transitwise/itinerary/internal/stops"
)

// Generator enumerates candidate edges out of (or into) a node across a
// fixed set of agencies and a fixed node universe.
type Generator struct {
	catalog  *stops.Catalog
	agencies []agency.Agency
}

// New builds a Generator over catalog's known stops and the given
// agencies. The agency slice is read but never mutated; pass a subset to
// vary which agencies participate in a given solve.
func New(catalog *stops.Catalog, agencies []agency.Agency) *Generator {
	return &Generator{catalog: catalog, agencies: agencies}
}

// Candidates enumerates, for every neighbor in (catalog ∪ extraNodes) \
// {anchorNode}, the best edge each agency offers between anchorNode and
// that neighbor. anchorIsArrival and consecutiveAgency are forwarded to
// every agency unchanged; the endpoint order passed to GetEdge follows
// the search direction: forward queries (anchorNode -> neighbor),
// reverse queries (neighbor -> anchorNode). sc is forwarded to every
// GetEdge call unchanged.
func (g *Generator) Candidates(anchorNode models.NodeID, anchorTime time.Time, anchorIsArrival bool, consecutiveAgency models.AgencyKind, extraNodes []models.NodeID, sc search.Context) []models.Direction {
	var out []models.Direction
	for _, neighbor := range g.neighborUniverse(anchorNode, extraNodes) {
		for _, a := range g.agencies {
			var seq agency.EdgeSeq
			if anchorIsArrival {
				seq = a.GetEdge(neighbor, anchorNode, anchorTime, true, consecutiveAgency, sc)
			} else {
				seq = a.GetEdge(anchorNode, neighbor, anchorTime, false, consecutiveAgency, sc)
			}
			if edge, ok := seq.First(); ok {
				out = append(out, edge)
			}
		}
	}
	return out
}

func (g *Generator) neighborUniverse(anchorNode models.NodeID, extraNodes []models.NodeID) []models.NodeID {
	seen := make(map[models.NodeID]bool, g.catalog.Len()+len(extraNodes))
	var universe []models.NodeID

	add := func(n models.NodeID) {
		if n == anchorNode || seen[n] {
			return
		}
		seen[n] = true
		universe = append(universe, n)
	}

	for _, name := range g.catalog.Names() {
		add(name)
	}
	for _, n := range extraNodes {
		add(n)
	}
	return universe
}
