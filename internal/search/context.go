// Package search holds per-request state that must be request-scoped
// rather than global: the walking-duration cap, and the Limiter that
// bounds concurrent solves. Deadlines and cancellation travel separately
// in a context.Context. A Context value is built once per request and
// threaded through UseOriginDestination and every agency call, the same
// way a request-scoped auth context is built once per request instead of
// reaching for global state.
package search

import "time"

// BoundKind distinguishes the three walking-limit modes recognized at the
// request boundary.
type BoundKind int

const (
	// BoundUnlimited places no cap on walking duration.
	BoundUnlimited BoundKind = iota
	// BoundZero disables walking entirely.
	BoundZero
	// BoundCustom caps walking duration at Seconds.
	BoundCustom
)

// WalkingBound is the process's walking-limit control surface, scoped to
// a single request instead of a package-level mutable.
type WalkingBound struct {
	Kind    BoundKind
	Seconds float64
}

// Unlimited returns a bound with no walking cap.
func Unlimited() WalkingBound { return WalkingBound{Kind: BoundUnlimited} }

// Zero returns a bound that disables walking.
func Zero() WalkingBound { return WalkingBound{Kind: BoundZero} }

// Custom returns a bound capping walking duration at seconds.
func Custom(seconds float64) WalkingBound {
	return WalkingBound{Kind: BoundCustom, Seconds: seconds}
}

// FromMode maps the request-boundary mode strings ("custom" ->
// userValueMinutes*60, "zero" -> 0, anything else -> unlimited) to a
// WalkingBound.
func FromMode(mode string, userValueMinutes float64) WalkingBound {
	switch mode {
	case "custom":
		return Custom(userValueMinutes * 60)
	case "zero":
		return Zero()
	default:
		return Unlimited()
	}
}

// Allows reports whether a walking leg of the given duration is permitted
// under this bound.
func (b WalkingBound) Allows(d time.Duration) bool {
	switch b.Kind {
	case BoundZero:
		return false
	case BoundCustom:
		return d.Seconds() <= b.Seconds
	default:
		return true
	}
}

// Context carries per-request search parameters into agencies. It is
// built once per request (e.g. at the HTTP handler boundary) and passed
// through use_origin_destination and get_edge, never stored globally.
type Context struct {
	WalkingMax WalkingBound
}

// New builds a Context with the given walking bound.
func New(walkingMax WalkingBound) Context {
	return Context{WalkingMax: walkingMax}
}
