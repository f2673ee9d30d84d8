// Package agency defines the capability every edge producer in the
// solver's virtual graph must satisfy.
package agency

import (
	"time"

	"github.com/transitwise/itinerary/internal/models"
	"github.com/transitwise/itinerary/internal/search"
)

// EdgeSeq is a lazy sequence of candidate edges, shaped as a
// range-over-func iterator so the edge generator can stop after
// consuming the first element without the agency allocating a full
// slice up front.
type EdgeSeq func(yield func(models.Direction) bool)

// First returns the first edge the sequence yields, if any.
func (s EdgeSeq) First() (models.Direction, bool) {
	var (
		edge  models.Direction
		found bool
	)
	if s == nil {
		return edge, false
	}
	s(func(d models.Direction) bool {
		edge = d
		found = true
		return false
	})
	return edge, found
}

// Empty is an EdgeSeq that yields nothing.
func Empty(yield func(models.Direction) bool) {}

// One returns an EdgeSeq that yields exactly the given edge.
func One(d models.Direction) EdgeSeq {
	return func(yield func(models.Direction) bool) {
		yield(d)
	}
}

// Agency is a pluggable edge provider: given a pair of nodes and a time
// anchor, it answers "what is the best edge between these two nodes if
// the traveler is present at the anchor moment?"
type Agency interface {
	// UseOriginDestination is called once before each solver run, letting
	// an agency parse non-catalog endpoints (free-form addresses) into
	// internal geometry. It may be a no-op.
	UseOriginDestination(ctx search.Context, origin, destination models.NodeID)

	// GetEdge produces zero or more candidate edges between fromNode and
	// toNode anchored at anchor.
	//
	// If anchorIsArrival is false, anchor is the earliest moment the
	// traveler can depart fromNode; returned edges must satisfy
	// DatetimeDepart >= anchor.
	//
	// If anchorIsArrival is true, anchor is the latest moment the
	// traveler may arrive at toNode; returned edges must satisfy
	// DatetimeArrive <= anchor.
	//
	// consecutiveAgency is the kind of the agency that produced the edge
	// immediately adjacent to the one being requested (the predecessor in
	// forward search, the successor in reverse), or "" if there is none.
	// It permits anti-chaining policies such as refusing to walk twice in
	// a row.
	//
	// sc carries the same per-request search context passed to
	// UseOriginDestination. It is threaded into every call rather than
	// cached on the agency, since an Agency is built once and shared
	// across concurrently in-flight requests.
	GetEdge(fromNode, toNode models.NodeID, anchor time.Time, anchorIsArrival bool, consecutiveAgency models.AgencyKind, sc search.Context) EdgeSeq

	// Kind returns this agency's stable tag.
	Kind() models.AgencyKind
}
