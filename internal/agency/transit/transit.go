// Package transit implements the TransitAgency: a timetabled shuttle/bus
// service backed by a pre-baked Timetable (store.Timetable), loaded once
// into memory and read-only thereafter.
//
// Stop times are stored as seconds-since-midnight of the trip's service
// day, using GTFS-style >=24:00:00 notation for legs past midnight so
// that times within one trip instance are always non-decreasing along
// its stop sequence.
package transit

import (
	"fmt"
	"time"

	"github.com/transitwise/itinerary/internal/agency"
	"github.com/transitwise/itinerary/internal/models"
	"github.com/transitwise/itinerary/internal/search"
	"github.com/transitwise/itinerary/internal/store"
)

// maxServiceDaySearch bounds how many calendar days away from the anchor
// a trip's service day is searched for, in either direction.
const maxServiceDaySearch = 3

// Agency serves direct, timetabled legs between two stops both visited
// by at least one trip, earliest (forward) or latest (reverse) feasible
// relative to the anchor.
type Agency struct {
	timetable *store.Timetable
}

// New builds a TransitAgency over a loaded timetable.
func New(timetable *store.Timetable) *Agency {
	return &Agency{timetable: timetable}
}

// Kind returns this agency's stable tag.
func (a *Agency) Kind() models.AgencyKind { return models.AgencyTransit }

// UseOriginDestination is a no-op: the transit agency only serves nodes
// already present in its timetable index.
func (a *Agency) UseOriginDestination(_ search.Context, _, _ models.NodeID) {}

// GetEdge returns the best direct timetabled leg between fromNode and
// toNode relative to anchor, if any trip visits fromNode before toNode.
// The transit agency has no walking cap to honor, so the search context
// is unused.
func (a *Agency) GetEdge(fromNode, toNode models.NodeID, anchor time.Time, anchorIsArrival bool, _ models.AgencyKind, _ search.Context) agency.EdgeSeq {
	fromOccs := a.timetable.Occurrences(fromNode)
	if len(fromOccs) == 0 {
		return agency.Empty
	}
	toOccs := a.timetable.Occurrences(toNode)
	if len(toOccs) == 0 {
		return agency.Empty
	}
	toIndexByTrip := make(map[string]int, len(toOccs))
	for _, o := range toOccs {
		toIndexByTrip[o.TripID] = o.Index
	}

	var best *models.Direction
	for _, fo := range fromOccs {
		toIndex, ok := toIndexByTrip[fo.TripID]
		if !ok || toIndex <= fo.Index {
			continue
		}
		trip := a.timetable.Trips[fo.TripID]
		fromStop := trip.Stops[fo.Index]
		toStop := trip.Stops[toIndex]

		var depart, arrive time.Time
		var dayOffset int
		var found bool
		if anchorIsArrival {
			arrive, dayOffset, found = latestOnOrBefore(anchor, toStop.ArrivalSec)
			if !found {
				continue
			}
			depart = serviceDay(anchor, dayOffset).Add(time.Duration(fromStop.DepartureSec) * time.Second)
			if arrive.Before(depart) {
				continue // malformed schedule: arrival precedes departure
			}
		} else {
			depart, dayOffset, found = earliestOnOrAfter(anchor, fromStop.DepartureSec)
			if !found {
				continue
			}
			arrive = serviceDay(anchor, dayOffset).Add(time.Duration(toStop.ArrivalSec) * time.Second)
		}

		candidate := models.Direction{
			FromNode:                 fromNode,
			ToNode:                   toNode,
			DatetimeDepart:           depart,
			DatetimeArrive:           arrive,
			HumanReadableInstruction: instruction(trip, fromNode, toNode),
			IntermediateNodes:        intermediateStops(trip, fo.Index, toIndex, serviceDay(anchor, dayOffset)),
			Agency:                   models.AgencyTransit,
		}

		if best == nil || betterCandidate(candidate, *best, anchorIsArrival) {
			best = &candidate
		}
	}

	if best == nil {
		return agency.Empty
	}
	return agency.One(*best)
}

func instruction(trip *store.Trip, from, to models.NodeID) string {
	name := trip.RouteName
	if name == "" {
		name = trip.RouteID
	}
	if trip.Headsign != "" {
		return fmt.Sprintf("Take %s towards %s from %s to %s", name, trip.Headsign, from, to)
	}
	return fmt.Sprintf("Take %s from %s to %s", name, from, to)
}

func intermediateStops(trip *store.Trip, fromIndex, toIndex int, day time.Time) []models.IntermediateStop {
	if toIndex-fromIndex <= 1 {
		return nil
	}
	out := make([]models.IntermediateStop, 0, toIndex-fromIndex-1)
	for i := fromIndex + 1; i < toIndex; i++ {
		st := trip.Stops[i]
		out = append(out, models.IntermediateStop{
			Node: st.Stop,
			Time: day.Add(time.Duration(st.ArrivalSec) * time.Second),
		})
	}
	return out
}

// betterCandidate reports whether candidate beats current for the given
// search direction: soonest departure for forward, latest arrival for
// reverse.
func betterCandidate(candidate, current models.Direction, anchorIsArrival bool) bool {
	if anchorIsArrival {
		return candidate.DatetimeArrive.After(current.DatetimeArrive)
	}
	return candidate.DatetimeDepart.Before(current.DatetimeDepart)
}

func serviceDay(anchor time.Time, dayOffset int) time.Time {
	base := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	return base.AddDate(0, 0, dayOffset)
}

// earliestOnOrAfter returns the earliest datetime >= anchor of the form
// serviceDay(anchor, k) + sec, searching k across a small day range, the
// chosen dayOffset k, and whether a match was found.
func earliestOnOrAfter(anchor time.Time, sec int) (time.Time, int, bool) {
	for k := -maxServiceDaySearch; k <= maxServiceDaySearch; k++ {
		t := serviceDay(anchor, k).Add(time.Duration(sec) * time.Second)
		if !t.Before(anchor) {
			return t, k, true
		}
	}
	return time.Time{}, 0, false
}

// latestOnOrBefore returns the latest datetime <= anchor of the form
// serviceDay(anchor, k) + sec, the chosen dayOffset k, and whether a
// match was found.
func latestOnOrBefore(anchor time.Time, sec int) (time.Time, int, bool) {
	for k := maxServiceDaySearch; k >= -maxServiceDaySearch; k-- {
		t := serviceDay(anchor, k).Add(time.Duration(sec) * time.Second)
		if !t.After(anchor) {
			return t, k, true
		}
	}
	return time.Time{}, 0, false
}
