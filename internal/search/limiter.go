package search

import (
	"context"
	"fmt"
)

// Limiter bounds the number of itinerary solves running concurrently, the
// same token-bucket-of-slots shape used to cap concurrent requests per
// client elsewhere in this stack. A single solve is single-threaded and
// self-contained (own heap, own previous_node map), but a WalkingDynamic
// agency may block on a cache round trip, so an unbounded number of
// concurrent solves can still exhaust downstream connections.
type Limiter struct {
	slots chan struct{}
}

// NewLimiter creates a Limiter allowing up to maxConcurrent solves at
// once. maxConcurrent <= 0 means unlimited.
func NewLimiter(maxConcurrent int) *Limiter {
	if maxConcurrent <= 0 {
		return &Limiter{}
	}
	return &Limiter{slots: make(chan struct{}, maxConcurrent)}
}

// Acquire blocks until a slot is free or ctx is done, whichever comes
// first. The returned release func must be called to free the slot.
func (l *Limiter) Acquire(ctx context.Context) (release func(), err error) {
	if l.slots == nil {
		return func() {}, nil
	}

	select {
	case l.slots <- struct{}{}:
		return func() { <-l.slots }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("search: limiter wait cancelled: %w", ctx.Err())
	}
}

// InUse returns the number of solves currently holding a slot.
func (l *Limiter) InUse() int {
	if l.slots == nil {
		return 0
	}
	return len(l.slots)
}
