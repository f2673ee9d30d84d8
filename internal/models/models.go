// Package models holds the value types shared across the itinerary solver:
// geometric points, the filename-safe edge codec, and the per-leg
// Direction (WeightedEdge) that every agency and the solver exchange.
package models

import "time"

// Point is an immutable (lat, lng) pair.
type Point struct {
	Lat float64
	Lng float64
}

// NodeID identifies a vertex in the solver's virtual graph: either a
// well-known stop name from the catalog, or an ad-hoc origin/destination
// string supplied by the caller. Nodes compare by string equality; no
// canonicalization beyond trimming surrounding whitespace is assumed.
type NodeID = string

// AgencyKind is a stable tag identifying which agency produced an edge.
// It is compared in get_edge's consecutive_agency argument and used for
// rendering and duplicate detection in the variator.
type AgencyKind string

const (
	AgencyTransit      AgencyKind = "TRANSIT"
	AgencyWalkStatic   AgencyKind = "WALK_STATIC"
	AgencyWalkDynamic  AgencyKind = "WALK_DYNAMIC"
)

// IntermediateStop is a stop-level waypoint within a single Direction.
type IntermediateStop struct {
	Node NodeID
	Time time.Time
}

// Direction is one leg of an itinerary, the unit the solver emits and the
// HTTP layer renders. WeightedEdge is the same type under the name the
// agency/solver side of the codebase prefers.
type Direction struct {
	FromNode NodeID
	ToNode   NodeID

	// DatetimeDepart and DatetimeArrive are naive wall-clock times in the
	// deployment's timezone. No tzinfo is attached inside the solver.
	DatetimeDepart time.Time
	DatetimeArrive time.Time

	HumanReadableInstruction string
	IntermediateNodes        []IntermediateStop
	Agency                   AgencyKind
}

// WeightedEdge is an alias for Direction, the agency/solver side's name
// for the same type the itinerary side calls Direction.
type WeightedEdge = Direction

// FarFuture and FarPast stand in for the +infinity / -infinity sentinels
// an unreached node's arrival_time / departure_time would otherwise need.
// time.Time has no infinities, so the solver anchors to these instead.
var (
	FarFuture = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
	FarPast   = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// PreviousNode is the solver's per-node bookkeeping record: one entry per
// node reached during a search, holding the edge that produced it and the
// running cost triple components.
type PreviousNode struct {
	Agency           AgencyKind
	ArrivalTime      time.Time
	DepartureTime    time.Time
	Instruction      string
	Intermediate     []IntermediateStop
	PrevName         NodeID
	HasPrev          bool
	NumStopsToNode   int
}
