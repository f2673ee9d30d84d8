// Package solver implements the itinerary solver: a time-dependent
// uniform-cost search over the virtual graph produced by graphgen, built
// on the familiar A* loop shape (container/heap frontier, closed-set
// skip on stale pop, ctx.Done() polling, explored-node safety valve),
// generalized to the non-standard lexicographic triple and the
// forward/reverse duality this domain requires instead of a single
// numeric fScore and a goal-set membership test.
package solver

import (
	"container/heap"
	"context"
	"os"
	"strconv"
	"time"

	"github.com/transitwise/itinerary/internal/agency"
	"github.com/transitwise/itinerary/internal/graphgen"
	"github.com/transitwise/itinerary/internal/models"
	"github.com/transitwise/itinerary/internal/search"
	"github.com/transitwise/itinerary/internal/stops"
)

func getMaxExploredNodes() int {
	if v := os.Getenv("SOLVE_MAX_EXPLORED_NODES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 50000
}

// Find returns the single best itinerary between origin and destination
// relative to tripDatetime, searching forward ("depart no earlier
// than") when depart is true, reverse ("arrive no later than")
// otherwise. It calls UseOriginDestination on every candidate agency
// before searching.
func Find(ctx context.Context, sc search.Context, catalog *stops.Catalog, agencies []agency.Agency, origin, destination models.NodeID, tripDatetime time.Time, depart bool) ([]models.Direction, error) {
	if origin == destination {
		return nil, &NotPossibleError{Reason: "origin and destination are the same node"}
	}

	for _, a := range agencies {
		a.UseOriginDestination(sc, origin, destination)
	}
	gen := graphgen.New(catalog, agencies)
	extraNodes := []models.NodeID{origin, destination}

	previous := map[models.NodeID]*models.PreviousNode{}
	closed := map[models.NodeID]bool{}
	h := &frontier{forward: depart}
	heap.Init(h)

	var target models.NodeID
	if depart {
		previous[origin] = &models.PreviousNode{ArrivalTime: tripDatetime, DepartureTime: models.FarPast, NumStopsToNode: 0}
		heap.Push(h, &frontierItem{node: origin, arrival: models.FarPast, departure: models.FarPast, numStops: 0})
		target = destination
	} else {
		previous[destination] = &models.PreviousNode{DepartureTime: tripDatetime, ArrivalTime: models.FarFuture, NumStopsToNode: 0}
		heap.Push(h, &frontierItem{node: destination, arrival: models.FarFuture, departure: models.FarFuture, numStops: 0})
		target = origin
	}

	maxExplored := getMaxExploredNodes()
	explored := 0

	for h.Len() > 0 {
		select {
		case <-ctx.Done():
			return nil, &CancelledError{}
		default:
		}
		if explored > maxExplored {
			return nil, &NotPossibleError{Reason: "explored too many nodes without reaching the destination"}
		}

		item := heap.Pop(h).(*frontierItem)
		explored++
		if closed[item.node] {
			continue
		}
		closed[item.node] = true

		if item.node == target {
			return reconstruct(previous, origin, destination, depart), nil
		}

		u := item.node
		pu := previous[u]

		var anchor time.Time
		if depart {
			anchor = pu.ArrivalTime
		} else {
			anchor = pu.DepartureTime
		}

		edges := gen.Candidates(u, anchor, !depart, pu.Agency, extraNodes, sc)
		for _, e := range edges {
			var v models.NodeID
			if depart {
				v = e.ToNode
			} else {
				v = e.FromNode
			}
			if closed[v] {
				continue
			}

			candidate := models.PreviousNode{
				Agency:         e.Agency,
				ArrivalTime:    e.DatetimeArrive,
				DepartureTime:  e.DatetimeDepart,
				Instruction:    e.HumanReadableInstruction,
				Intermediate:   e.IntermediateNodes,
				PrevName:       u,
				HasPrev:        true,
				NumStopsToNode: pu.NumStopsToNode + 1,
			}

			existing, ok := previous[v]
			if ok && !better(candidate, *existing, depart) {
				continue
			}
			previous[v] = &candidate
			heap.Push(h, &frontierItem{
				node:      v,
				arrival:   candidate.ArrivalTime,
				departure: candidate.DepartureTime,
				numStops:  candidate.NumStopsToNode,
			})
		}
	}

	return nil, &NotPossibleError{Reason: "no itinerary reaches the destination"}
}

// better reports whether candidate's triple strictly beats current's,
// using the same ordering frontier.Less applies to heap entries.
func better(candidate, current models.PreviousNode, forward bool) bool {
	if forward {
		if !candidate.ArrivalTime.Equal(current.ArrivalTime) {
			return candidate.ArrivalTime.Before(current.ArrivalTime)
		}
		if candidate.NumStopsToNode != current.NumStopsToNode {
			return candidate.NumStopsToNode < current.NumStopsToNode
		}
		return candidate.DepartureTime.After(current.DepartureTime)
	}

	if !candidate.DepartureTime.Equal(current.DepartureTime) {
		return candidate.DepartureTime.After(current.DepartureTime)
	}
	if candidate.NumStopsToNode != current.NumStopsToNode {
		return candidate.NumStopsToNode < current.NumStopsToNode
	}
	return candidate.ArrivalTime.Before(current.ArrivalTime)
}

// reconstruct walks the previous_node forest from the search's
// termination point back to its origin, emitting legs in travel order.
func reconstruct(previous map[models.NodeID]*models.PreviousNode, origin, destination models.NodeID, depart bool) []models.Direction {
	var legs []models.Direction

	if depart {
		node := destination
		for node != origin {
			pn := previous[node]
			legs = append(legs, models.Direction{
				FromNode:                 pn.PrevName,
				ToNode:                   node,
				DatetimeDepart:           pn.DepartureTime,
				DatetimeArrive:           pn.ArrivalTime,
				HumanReadableInstruction: pn.Instruction,
				IntermediateNodes:        pn.Intermediate,
				Agency:                   pn.Agency,
			})
			node = pn.PrevName
		}
		for i, j := 0, len(legs)-1; i < j; i, j = i+1, j-1 {
			legs[i], legs[j] = legs[j], legs[i]
		}
		return legs
	}

	node := origin
	for node != destination {
		pn := previous[node]
		legs = append(legs, models.Direction{
			FromNode:                 node,
			ToNode:                   pn.PrevName,
			DatetimeDepart:           pn.DepartureTime,
			DatetimeArrive:           pn.ArrivalTime,
			HumanReadableInstruction: pn.Instruction,
			IntermediateNodes:        pn.Intermediate,
			Agency:                   pn.Agency,
		})
		node = pn.PrevName
	}
	return legs
}
