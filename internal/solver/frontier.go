package solver

import (
	"time"

	"github.com/transitwise/itinerary/internal/models"
)

// frontierItem is one pending expansion: a node and the lexicographic
// triple that earned it a place in the heap, frozen at push time.
// Staler, worse entries for the same node may coexist in the heap; the
// closed set in Find skips them when they eventually surface.
type frontierItem struct {
	node      models.NodeID
	arrival   time.Time
	departure time.Time
	numStops  int
}

// frontier is a container/heap min-heap of frontierItems, the familiar
// A*-style priority queue generalized from a single int fScore to the
// solver's three-part lexicographic key and parameterized on search
// direction.
//
// Forward search minimizes (arrival, numStops, "+inf - departure"): a
// later departure sorts as a smaller cost, so ties prefer the later
// departure. Reverse search minimizes ("+inf - departure", numStops,
// arrival): a later departure sorts first outright.
type frontier struct {
	items   []*frontierItem
	forward bool
}

func (f *frontier) Len() int { return len(f.items) }

func (f *frontier) Less(i, j int) bool {
	a, b := f.items[i], f.items[j]
	if f.forward {
		if !a.arrival.Equal(b.arrival) {
			return a.arrival.Before(b.arrival)
		}
		if a.numStops != b.numStops {
			return a.numStops < b.numStops
		}
		if !a.departure.Equal(b.departure) {
			return a.departure.After(b.departure)
		}
		return a.node < b.node
	}

	if !a.departure.Equal(b.departure) {
		return a.departure.After(b.departure)
	}
	if a.numStops != b.numStops {
		return a.numStops < b.numStops
	}
	if !a.arrival.Equal(b.arrival) {
		return a.arrival.Before(b.arrival)
	}
	return a.node < b.node
}

func (f *frontier) Swap(i, j int) { f.items[i], f.items[j] = f.items[j], f.items[i] }

func (f *frontier) Push(x any) {
	f.items = append(f.items, x.(*frontierItem))
}

func (f *frontier) Pop() any {
	old := f.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	f.items = old[:n-1]
	return item
}
