// Package walkstatic implements the WalkingStatic agency: pre-baked
// pedestrian distances between known catalog stops, loaded once and
// read-only for the lifetime of the process.
package walkstatic

import (
	"fmt"
	"time"

	"github.com/transitwise/itinerary/internal/agency"
	"github.com/transitwise/itinerary/internal/models"
	"github.com/transitwise/itinerary/internal/search"
	"github.com/transitwise/itinerary/internal/store"
)

// Agency serves walking legs between stops with a precomputed duration.
// It honors the per-request walking cap passed into GetEdge and refuses
// to immediately follow another walking leg, avoiding two consecutive
// walking legs in one itinerary.
type Agency struct {
	distances *store.WalkDistances
}

// New builds a WalkingStatic agency over a loaded distance table.
func New(distances *store.WalkDistances) *Agency {
	return &Agency{distances: distances}
}

// Kind returns this agency's stable tag.
func (a *Agency) Kind() models.AgencyKind { return models.AgencyWalkStatic }

// UseOriginDestination is a no-op: this agency only serves catalog stop
// pairs with a known precomputed distance, and the walking cap arrives
// per call through GetEdge instead of being cached here, since a single
// Agency is shared across concurrently in-flight requests.
func (a *Agency) UseOriginDestination(_ search.Context, _, _ models.NodeID) {}

// GetEdge returns the single precomputed walking leg between fromNode
// and toNode, if one exists and is allowed by sc's walking cap and the
// anti-chaining policy.
func (a *Agency) GetEdge(fromNode, toNode models.NodeID, anchor time.Time, anchorIsArrival bool, consecutiveAgency models.AgencyKind, sc search.Context) agency.EdgeSeq {
	if consecutiveAgency == models.AgencyWalkStatic || consecutiveAgency == models.AgencyWalkDynamic {
		return agency.Empty
	}

	seconds, ok := a.distances.Seconds(fromNode, toNode)
	if !ok {
		return agency.Empty
	}

	duration := time.Duration(seconds) * time.Second
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
		HumanReadableInstruction: fmt.Sprintf("Walk to %s (%d min)", toNode, (seconds+59)/60),
		Agency:                   models.AgencyWalkStatic,
	})
}
