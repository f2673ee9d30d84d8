package departures

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

// scheduledAgency serves a fixed list of scheduled departures from one
// node, returning the soonest one at or after the anchor passed to
// GetEdge, mimicking a timetabled agency without depending on the real
// transit agency's timetable plumbing.
type scheduledAgency struct {
	kind    models.AgencyKind
	from    models.NodeID
	to      models.NodeID
	departs []time.Time
}

func (s *scheduledAgency) Kind() models.AgencyKind { return s.kind }

func (s *scheduledAgency) UseOriginDestination(_ search.Context, _, _ models.NodeID) {}

func (s *scheduledAgency) GetEdge(from, to models.NodeID, anchor time.Time, _ bool, _ models.AgencyKind, _ search.Context) agency.EdgeSeq {
	if from != s.from || to != s.to {
		return agency.Empty
	}
	var best *time.Time
	for i := range s.departs {
		d := s.departs[i]
		if d.Before(anchor) {
			continue
		}
		if best == nil || d.Before(*best) {
			best = &d
		}
	}
	if best == nil {
		return agency.Empty
	}
	return agency.One(models.Direction{
		FromNode: from, ToNode: to,
		DatetimeDepart: *best, DatetimeArrive: best.Add(5 * time.Minute),
		Agency: s.kind,
	})
}

func catalogWithStop(t *testing.T, name string) *stops.Catalog {
	t.Helper()
	cat, err := stops.LoadForTest(strings.NewReader(name + ",1,1\n"))
	assert.NoError(t, err)
	return cat
}

func TestListReturnsSoonestDeparturesInOrder(t *testing.T) {
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &scheduledAgency{
		kind: models.AgencyTransit, from: "Stop", to: "B",
		departs: []time.Time{
			day.Add(9 * time.Hour), day.Add(9*time.Hour + 5*time.Minute),
			day.Add(9*time.Hour + 10*time.Minute), day.Add(9*time.Hour + 30*time.Minute),
		},
	}

	anchor := day.Add(9*time.Hour + 2*time.Minute)
	out, err := List(context.Background(), search.New(search.Unlimited()), catalogWithStop(t, "B"), []agency.Agency{a}, "Stop", anchor, 3)

	assert.NoError(t, err)
	if assert.Len(t, out, 3) {
		assert.Equal(t, day.Add(9*time.Hour+5*time.Minute), out[0].DatetimeDepart)
		assert.Equal(t, day.Add(9*time.Hour+10*time.Minute), out[1].DatetimeDepart)
		assert.Equal(t, day.Add(9*time.Hour+30*time.Minute), out[2].DatetimeDepart)
	}
}

func TestListIsNonDecreasingInDeparture(t *testing.T) {
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &scheduledAgency{
		kind: models.AgencyTransit, from: "Stop", to: "B",
		departs: []time.Time{day.Add(9 * time.Hour), day.Add(9*time.Hour + 20*time.Minute), day.Add(9*time.Hour + 45*time.Minute)},
	}

	out, err := List(context.Background(), search.New(search.Unlimited()), catalogWithStop(t, "B"), []agency.Agency{a}, "Stop", day.Add(8*time.Hour), 5)

	assert.NoError(t, err)
	for i := 1; i < len(out); i++ {
		assert.False(t, out[i].DatetimeDepart.Before(out[i-1].DatetimeDepart))
	}
}

func TestListOnlyReturnsDeparturesAtOrAfterAnchor(t *testing.T) {
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &scheduledAgency{
		kind: models.AgencyTransit, from: "Stop", to: "B",
		departs: []time.Time{day.Add(9 * time.Hour), day.Add(9*time.Hour + 20*time.Minute)},
	}
	anchor := day.Add(9*time.Hour + 10*time.Minute)

	out, err := List(context.Background(), search.New(search.Unlimited()), catalogWithStop(t, "B"), []agency.Agency{a}, "Stop", anchor, 5)

	assert.NoError(t, err)
	for _, leg := range out {
		assert.False(t, leg.DatetimeDepart.Before(anchor))
	}
}

func TestListReturnsEmptyWhenNoAgencyServesOrigin(t *testing.T) {
	out, err := List(context.Background(), search.New(search.Unlimited()), catalogWithStop(t, "B"), nil, "Stop", time.Now(), 5)
	assert.NoError(t, err)
	assert.Empty(t, out)
}

func TestListReturnsZeroWhenCountIsZero(t *testing.T) {
	a := &scheduledAgency{kind: models.AgencyTransit, from: "Stop", to: "B", departs: []time.Time{time.Now()}}
	out, err := List(context.Background(), search.New(search.Unlimited()), catalogWithStop(t, "B"), []agency.Agency{a}, "Stop", time.Now(), 0)
	assert.NoError(t, err)
	assert.Empty(t, out)
}
