// Package walkdynamic implements the WalkingDynamic agency: on-demand
// geometry between arbitrary points, computed from a haversine estimate
// rather than a precomputed table, and memoized in Redis since the same
// pair may be asked about repeatedly within one solve or across a burst
// of nearby requests.
package walkdynamic

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/transitwise/itinerary/internal/agency"
	"github.com/transitwise/itinerary/internal/models"
	"github.com/transitwise/itinerary/internal/routecache"
	"github.com/transitwise/itinerary/internal/search"
	"github.com/transitwise/itinerary/internal/stops"
)

// Agency resolves any node, known stop or free-form "lat,lng" endpoint,
// to a Point and serves a walking leg computed from great-circle
// distance over a configured walking speed.
type Agency struct {
	catalog  *stops.Catalog
	cache    *routecache.Cache // optional; nil disables memoization
	speedMPS float64
}

// New builds a WalkingDynamic agency. cache may be nil, in which case
// every lookup recomputes the haversine estimate.
func New(catalog *stops.Catalog, cache *routecache.Cache, speedMPS float64) *Agency {
	return &Agency{
		catalog:  catalog,
		cache:    cache,
		speedMPS: speedMPS,
	}
}

// Kind returns this agency's stable tag.
func (a *Agency) Kind() models.AgencyKind { return models.AgencyWalkDynamic }

// UseOriginDestination is a no-op: free-form "lat,lng" endpoints are
// parsed lazily by resolve on every GetEdge call instead of being cached
// on the agency, since a single Agency is a process-wide singleton
// shared across concurrently in-flight requests.
func (a *Agency) UseOriginDestination(_ search.Context, _, _ models.NodeID) {}

func parseLatLng(s string) (models.Point, bool) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return models.Point{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.Point{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.Point{}, false
	}
	return models.Point{Lat: lat, Lng: lng}, true
}

// resolve maps node to a Point, trying the catalog first and then
// parsing it as a free-form "lat,lng" endpoint. Parsing happens fresh on
// every call rather than being cached on the agency: it is cheap, and a
// shared cache keyed only by node string would let one request's
// free-form endpoint leak into another's resolution.
func (a *Agency) resolve(node models.NodeID) (models.Point, bool) {
	if p, ok := a.catalog.Point(node); ok {
		return p, true
	}
	return parseLatLng(node)
}

// GetEdge returns a single computed walking leg between fromNode and
// toNode, if both resolve to a point and the walk is within sc's
// walking cap. It never chains immediately after another walking leg.
func (a *Agency) GetEdge(fromNode, toNode models.NodeID, anchor time.Time, anchorIsArrival bool, consecutiveAgency models.AgencyKind, sc search.Context) agency.EdgeSeq {
	if consecutiveAgency == models.AgencyWalkStatic || consecutiveAgency == models.AgencyWalkDynamic {
		return agency.Empty
	}

	from, ok := a.resolve(fromNode)
	if !ok {
		return agency.Empty
	}
	to, ok := a.resolve(toNode)
	if !ok {
		return agency.Empty
	}

	seconds := a.lookupSeconds(from, to)
	duration := time.Duration(seconds * float64(time.Second))
	if !sc.WalkingMax.Allows(duration) {
		return agency.Empty
	}

	var depart, arrive time.Time
	if anchorIsArrival {
		arrive = anchor
		depart = anchor.Add(-duration)
	} else {
		depart = anchor
		arrive = anchor.Add(duration)
	}

	return agency.One(models.Direction{
		FromNode:                 fromNode,
		ToNode:                   toNode,
		DatetimeDepart:           depart,
		DatetimeArrive:           arrive,
		HumanReadableInstruction: fmt.Sprintf("Walk to %s (%d min)", toNode, (int(seconds)+59)/60),
		Agency:                   models.AgencyWalkDynamic,
	})
}

func (a *Agency) lookupSeconds(from, to models.Point) float64 {
	meters := models.HaversineMeters(from, to)
	estimate := meters / a.speedMPS

	if a.cache == nil {
		return estimate
	}

	key := routecache.WalkKey(from.Lat, from.Lng, to.Lat, to.Lng)
	ctx := context.Background()
	if cached, ok := a.cache.GetWalkSeconds(ctx, key); ok {
		return cached
	}
	a.cache.SetWalkSeconds(ctx, key, estimate)
	return estimate
}
