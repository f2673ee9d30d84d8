package store

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StopTime is one scheduled visit within a Trip. ArrivalSec/DepartureSec
// are seconds since midnight of the trip's service day, using
// GTFS-style >=24:00:00 notation for stops past midnight so that times
// are always non-decreasing along a trip's stop sequence.
type StopTime struct {
	Stop         string
	Sequence     int
	ArrivalSec   int
	DepartureSec int
}

// Trip is a single scheduled vehicle run: an ordered sequence of stop
// times along one route.
type Trip struct {
	ID        string
	RouteID   string
	RouteName string
	Mode      string
	Headsign  string
	Stops     []StopTime
}

// Occurrence locates a stop within a trip's stop sequence.
type Occurrence struct {
	TripID string
	Index  int
}

// Timetable is the transit agency's pre-baked schedule data: every trip
// and, for fast lookup, every stop's occurrences across trips. It is
// read-only after Load and safe to share across concurrent requests.
type Timetable struct {
	Trips       map[string]*Trip
	occurrences map[string][]Occurrence
}

// LoadTimetable reads every trip and its stop times from Postgres and
// builds the in-memory index the transit agency queries per request:
// load once, read-only after, indexed by trip and by stop occurrence.
func LoadTimetable(ctx context.Context, pool *pgxpool.Pool) (*Timetable, error) {
	rows, err := pool.Query(ctx, `
		SELECT t.id, t.route_id, COALESCE(r.name, t.route_id), COALESCE(r.mode, ''), COALESCE(t.headsign, ''),
		       st.sequence, st.stop_name, st.arrival_sec, st.departure_sec
		FROM trip t
		JOIN stop_time st ON st.trip_id = t.id
		LEFT JOIN route r ON r.id = t.route_id
		ORDER BY t.id, st.sequence
	`)
	if err != nil {
		return nil, fmt.Errorf("store: query timetable: %w", err)
	}
	defer rows.Close()

	trips := make(map[string]*Trip)
	for rows.Next() {
		var (
			tripID, routeID, routeName, mode, headsign, stopName string
			sequence, arrivalSec, departureSec                   int
		)
		if err := rows.Scan(&tripID, &routeID, &routeName, &mode, &headsign, &sequence, &stopName, &arrivalSec, &departureSec); err != nil {
			log.Printf("store: skipping malformed stop_time row: %v", err)
			continue
		}

		trip, ok := trips[tripID]
		if !ok {
			trip = &Trip{ID: tripID, RouteID: routeID, RouteName: routeName, Mode: mode, Headsign: headsign}
			trips[tripID] = trip
		}
		trip.Stops = append(trip.Stops, StopTime{
			Stop:         stopName,
			Sequence:     sequence,
			ArrivalSec:   arrivalSec,
			DepartureSec: departureSec,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: read timetable rows: %w", err)
	}

	return buildTimetable(trips), nil
}

func buildTimetable(trips map[string]*Trip) *Timetable {
	occurrences := make(map[string][]Occurrence)
	for tripID, trip := range trips {
		sort.Slice(trip.Stops, func(i, j int) bool { return trip.Stops[i].Sequence < trip.Stops[j].Sequence })
		for i, st := range trip.Stops {
			occurrences[st.Stop] = append(occurrences[st.Stop], Occurrence{TripID: tripID, Index: i})
		}
	}
	return &Timetable{Trips: trips, occurrences: occurrences}
}

// Occurrences returns every (trip, stop-sequence-index) pair at which
// stop is visited.
func (t *Timetable) Occurrences(stop string) []Occurrence {
	return t.occurrences[stop]
}

// NewTimetableForTest builds a Timetable directly from in-memory trips,
// bypassing Postgres, for use in agency unit tests.
func NewTimetableForTest(trips map[string]*Trip) *Timetable {
	return buildTimetable(trips)
}
