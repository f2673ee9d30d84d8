// Package httpapi exposes the three solver entry points over HTTP as
// JSON endpoints, with fiber.Map error bodies on every failure path.
package httpapi

import (
	"time"

	"github.com/transitwise/itinerary/internal/agency"
	"github.com/transitwise/itinerary/internal/routecache"
	"github.com/transitwise/itinerary/internal/search"
	"github.com/transitwise/itinerary/internal/stops"
)

// Deps holds everything a handler needs to run a solve: the read-only
// stops catalog, the enabled agencies (in priority order), the
// concurrency limiter, and the request-deadline/variator defaults.
// Built once at startup in cmd/itineraryapi and shared across requests.
type Deps struct {
	Catalog *stops.Catalog
	// Agencies is the full enabled set, queried by every solve.
	Agencies []agency.Agency
	// Vary is the subset of Agencies the variator is allowed to disable
	// when looking for alternate itineraries. WalkingStatic is excluded
	// by convention: disabling the only walking option tends to produce
	// ItineraryNotPossible rather than a useful alternative.
	Vary []agency.Agency

	Limiter *search.Limiter

	DefaultTimeout   time.Duration
	MaxVariatorCount int

	// Cache memoizes Itinerary results in Redis. May be nil, in which
	// case every request solves fresh.
	Cache *routecache.Cache
}
