package transit

import (
	"testing"
	"time"

	"github.com/transitwise/itinerary/internal/models"
	"github.com/transitwise/itinerary/internal/search"
	"github.com/transitwise/itinerary/internal/store"
	"github.com/stretchr/testify/assert"
)

func sampleTrips() map[string]*store.Trip {
	return map[string]*store.Trip{
		"T1": {
			ID: "T1", RouteID: "R1", RouteName: "Route 1", Headsign: "Downtown",
			Stops: []store.StopTime{
				{Stop: "A", Sequence: 0, ArrivalSec: 8 * 3600, DepartureSec: 8 * 3600},
				{Stop: "B", Sequence: 1, ArrivalSec: 8*3600 + 600, DepartureSec: 8*3600 + 660},
				{Stop: "C", Sequence: 2, ArrivalSec: 8*3600 + 1200, DepartureSec: 8*3600 + 1200},
			},
		},
		// A later trip on the same route, serving only A and C, so the
		// agency must pick the soonest feasible one rather than the first.
		"T2": {
			ID: "T2", RouteID: "R1", RouteName: "Route 1",
			Stops: []store.StopTime{
				{Stop: "A", Sequence: 0, ArrivalSec: 9 * 3600, DepartureSec: 9 * 3600},
				{Stop: "C", Sequence: 1, ArrivalSec: 9*3600 + 900, DepartureSec: 9*3600 + 900},
			},
		},
		// An overnight trip: stop times past 24:00:00.
		"T3": {
			ID: "T3", RouteID: "R2", RouteName: "Night Line",
			Stops: []store.StopTime{
				{Stop: "A", Sequence: 0, ArrivalSec: 23*3600 + 3000, DepartureSec: 23*3600 + 3000},
				{Stop: "C", Sequence: 1, ArrivalSec: 25 * 3600, DepartureSec: 25 * 3600},
			},
		},
	}
}

func newTestAgency() *Agency {
	return New(store.NewTimetableForTest(sampleTrips()))
}

func TestGetEdgePicksSoonestForwardDeparture(t *testing.T) {
	a := newTestAgency()
	anchor := time.Date(2026, 1, 1, 7, 30, 0, 0, time.UTC)

	edge, ok := a.GetEdge("A", "C", anchor, false, "", search.New(search.Unlimited())).First()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC), edge.DatetimeDepart)
	assert.Equal(t, time.Date(2026, 1, 1, 8, 20, 0, 0, time.UTC), edge.DatetimeArrive)
	assert.Len(t, edge.IntermediateNodes, 1)
	assert.Equal(t, models.NodeID("B"), edge.IntermediateNodes[0].Node)
}

func TestGetEdgeSkipsDeparturesBeforeAnchor(t *testing.T) {
	a := newTestAgency()
	anchor := time.Date(2026, 1, 1, 8, 30, 0, 0, time.UTC)

	edge, ok := a.GetEdge("A", "C", anchor, false, "", search.New(search.Unlimited())).First()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC), edge.DatetimeDepart)
}

func TestGetEdgeReverseAnchorPicksLatestArrival(t *testing.T) {
	a := newTestAgency()
	anchor := time.Date(2026, 1, 1, 8, 50, 0, 0, time.UTC)

	edge, ok := a.GetEdge("A", "C", anchor, true, "", search.New(search.Unlimited())).First()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 1, 8, 20, 0, 0, time.UTC), edge.DatetimeArrive)
	assert.False(t, edge.DatetimeArrive.After(anchor))
}

func TestGetEdgeHandlesOvernightServiceDay(t *testing.T) {
	a := newTestAgency()
	anchor := time.Date(2026, 1, 1, 23, 40, 0, 0, time.UTC)

	edge, ok := a.GetEdge("A", "C", anchor, false, "", search.New(search.Unlimited())).First()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 1, 23, 50, 0, 0, time.UTC), edge.DatetimeDepart)
	assert.Equal(t, time.Date(2026, 1, 2, 1, 0, 0, 0, time.UTC), edge.DatetimeArrive)
}

func TestGetEdgeUnknownStopIsEmpty(t *testing.T) {
	a := newTestAgency()
	_, ok := a.GetEdge("A", "nowhere", time.Now(), false, "", search.New(search.Unlimited())).First()
	assert.False(t, ok)
}

func TestGetEdgeRequiresForwardStopOrder(t *testing.T) {
	a := newTestAgency()
	_, ok := a.GetEdge("C", "A", time.Now(), false, "", search.New(search.Unlimited())).First()
	assert.False(t, ok)
}

func TestGetEdgeAllowsChainingAfterTransit(t *testing.T) {
	a := newTestAgency()
	anchor := time.Date(2026, 1, 1, 7, 30, 0, 0, time.UTC)
	_, ok := a.GetEdge("A", "C", anchor, false, models.AgencyTransit, search.New(search.Unlimited())).First()
	assert.True(t, ok)
}

func TestKindIsTransit(t *testing.T) {
	a := newTestAgency()
	assert.Equal(t, models.AgencyTransit, a.Kind())
}
