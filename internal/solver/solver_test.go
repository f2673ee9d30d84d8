package solver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/transitwise/itinerary/internal/agency"
	"github.com/transitwise/itinerary/internal/models"
	"github.com/transitwise/itinerary/internal/search"
	"github.com/transitwise/itinerary/internal/stops"
	"github.com/stretchr/testify/assert"
)

// fakeAgency serves a fixed, hand-wired set of edges, picking the
// soonest-departure (forward) or latest-arrival (reverse) match per
// (from, to) pair, so tests can construct exact scenarios directly
// without depending on any real agency.
type fakeAgency struct {
	kind        models.AgencyKind
	edges       []models.Direction
	refuseAfter []models.AgencyKind
	seenConsec  []models.AgencyKind
}

func (f *fakeAgency) Kind() models.AgencyKind { return f.kind }

func (f *fakeAgency) UseOriginDestination(_ search.Context, _, _ models.NodeID) {}

func (f *fakeAgency) GetEdge(from, to models.NodeID, anchor time.Time, anchorIsArrival bool, consecutive models.AgencyKind, _ search.Context) agency.EdgeSeq {
	f.seenConsec = append(f.seenConsec, consecutive)
	for _, k := range f.refuseAfter {
		if consecutive == k {
			return agency.Empty
		}
	}

	var best *models.Direction
	for i := range f.edges {
		e := f.edges[i]
		if e.FromNode != from || e.ToNode != to {
			continue
		}
		if anchorIsArrival {
			if e.DatetimeArrive.After(anchor) {
				continue
			}
			if best == nil || e.DatetimeArrive.After(best.DatetimeArrive) {
				best = &e
			}
		} else {
			if e.DatetimeDepart.Before(anchor) {
				continue
			}
			if best == nil || e.DatetimeDepart.Before(best.DatetimeDepart) {
				best = &e
			}
		}
	}
	if best == nil {
		return agency.Empty
	}
	return agency.One(*best)
}

func emptyCatalog(t *testing.T) *stops.Catalog {
	t.Helper()
	cat, err := stops.LoadForTest(strings.NewReader(""))
	assert.NoError(t, err)
	return cat
}

// catalogWithStops registers extra nodes the graph generator must consider
// as neighbors, beyond the request's own origin/destination, for tests
// whose itinerary passes through an intermediate node.
func catalogWithStops(t *testing.T, names ...string) *stops.Catalog {
	t.Helper()
	var sb strings.Builder
	for _, n := range names {
		sb.WriteString(n)
		sb.WriteString(",1,1\n")
	}
	cat, err := stops.LoadForTest(strings.NewReader(sb.String()))
	assert.NoError(t, err)
	return cat
}

func TestFindFailsWhenOriginEqualsDestination(t *testing.T) {
	_, err := Find(context.Background(), search.New(search.Unlimited()), emptyCatalog(t), nil, "A", "A", time.Now(), true)
	assert.Error(t, err)
	var npe *NotPossibleError
	assert.ErrorAs(t, err, &npe)
}

func TestFindFailsWhenNoAgencyServesEndpoints(t *testing.T) {
	_, err := Find(context.Background(), search.New(search.Unlimited()), emptyCatalog(t), nil, "A", "Z", time.Now(), true)
	var npe *NotPossibleError
	assert.ErrorAs(t, err, &npe)
}

func TestFindForwardDirectTransitLeg(t *testing.T) {
	depart := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	arrive := time.Date(2026, 1, 1, 9, 20, 0, 0, time.UTC)
	transit := &fakeAgency{kind: models.AgencyTransit, edges: []models.Direction{
		{FromNode: "A", ToNode: "B", DatetimeDepart: depart, DatetimeArrive: arrive, Agency: models.AgencyTransit},
	}}

	anchor := time.Date(2026, 1, 1, 8, 45, 0, 0, time.UTC)
	legs, err := Find(context.Background(), search.New(search.Unlimited()), emptyCatalog(t), []agency.Agency{transit}, "A", "B", anchor, true)

	assert.NoError(t, err)
	assert.Len(t, legs, 1)
	assert.Equal(t, depart, legs[0].DatetimeDepart)
	assert.Equal(t, arrive, legs[0].DatetimeArrive)
	assert.False(t, legs[0].DatetimeDepart.Before(anchor))
}

func TestFindReverseReturnsSameLeg(t *testing.T) {
	depart := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	arrive := time.Date(2026, 1, 1, 9, 20, 0, 0, time.UTC)
	transit := &fakeAgency{kind: models.AgencyTransit, edges: []models.Direction{
		{FromNode: "A", ToNode: "B", DatetimeDepart: depart, DatetimeArrive: arrive, Agency: models.AgencyTransit},
	}}

	anchor := time.Date(2026, 1, 1, 9, 25, 0, 0, time.UTC)
	legs, err := Find(context.Background(), search.New(search.Unlimited()), emptyCatalog(t), []agency.Agency{transit}, "A", "B", anchor, false)

	assert.NoError(t, err)
	assert.Len(t, legs, 1)
	assert.Equal(t, depart, legs[0].DatetimeDepart)
	assert.Equal(t, arrive, legs[0].DatetimeArrive)
	assert.False(t, legs[0].DatetimeArrive.After(anchor))
}

func TestFindPrefersEarlierArrivalOverEarlierDeparture(t *testing.T) {
	anchor := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	walk := &fakeAgency{kind: models.AgencyWalkStatic, edges: []models.Direction{
		{FromNode: "A", ToNode: "B", DatetimeDepart: anchor, DatetimeArrive: anchor.Add(30 * time.Minute), Agency: models.AgencyWalkStatic},
	}}
	transit := &fakeAgency{kind: models.AgencyTransit, edges: []models.Direction{
		{FromNode: "A", ToNode: "B", DatetimeDepart: anchor.Add(15 * time.Minute), DatetimeArrive: anchor.Add(25 * time.Minute), Agency: models.AgencyTransit},
	}}

	legs, err := Find(context.Background(), search.New(search.Unlimited()), emptyCatalog(t), []agency.Agency{walk, transit}, "A", "B", anchor, true)

	assert.NoError(t, err)
	assert.Len(t, legs, 1)
	assert.Equal(t, models.AgencyTransit, legs[0].Agency)
}

func TestFindMultiLegItineraryIsOrderedAndContiguous(t *testing.T) {
	anchor := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	transit := &fakeAgency{kind: models.AgencyTransit, edges: []models.Direction{
		{FromNode: "A", ToNode: "B", DatetimeDepart: anchor, DatetimeArrive: anchor.Add(10 * time.Minute), Agency: models.AgencyTransit},
		{FromNode: "B", ToNode: "C", DatetimeDepart: anchor.Add(15 * time.Minute), DatetimeArrive: anchor.Add(25 * time.Minute), Agency: models.AgencyTransit},
	}}

	legs, err := Find(context.Background(), search.New(search.Unlimited()), catalogWithStops(t, "B"), []agency.Agency{transit}, "A", "C", anchor, true)

	assert.NoError(t, err)
	if assert.Len(t, legs, 2) {
		assert.Equal(t, legs[0].ToNode, legs[1].FromNode)
		assert.False(t, legs[0].DatetimeArrive.After(legs[1].DatetimeDepart))
	}
}

func TestFindThreadsConsecutiveAgencyIntoNextExpansion(t *testing.T) {
	anchor := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	walk := &fakeAgency{kind: models.AgencyWalkStatic, edges: []models.Direction{
		{FromNode: "A", ToNode: "B", DatetimeDepart: anchor, DatetimeArrive: anchor.Add(5 * time.Minute), Agency: models.AgencyWalkStatic},
	}}
	transit := &fakeAgency{kind: models.AgencyTransit, edges: []models.Direction{
		{FromNode: "B", ToNode: "C", DatetimeDepart: anchor.Add(10 * time.Minute), DatetimeArrive: anchor.Add(20 * time.Minute), Agency: models.AgencyTransit},
	}}

	legs, err := Find(context.Background(), search.New(search.Unlimited()), catalogWithStops(t, "B"), []agency.Agency{walk, transit}, "A", "C", anchor, true)

	assert.NoError(t, err)
	assert.Len(t, legs, 2)
	assert.Contains(t, transit.seenConsec, models.AgencyWalkStatic)
}

func TestFindReturnsCancelledWhenContextAlreadyDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transit := &fakeAgency{kind: models.AgencyTransit, edges: []models.Direction{
		{FromNode: "A", ToNode: "B", DatetimeDepart: time.Now(), DatetimeArrive: time.Now().Add(time.Minute), Agency: models.AgencyTransit},
	}}

	_, err := Find(ctx, search.New(search.Unlimited()), emptyCatalog(t), []agency.Agency{transit}, "A", "B", time.Now(), true)
	var ce *CancelledError
	assert.ErrorAs(t, err, &ce)
}
