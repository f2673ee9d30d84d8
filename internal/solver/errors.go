package solver

// NotPossibleError reports that no itinerary exists between the
// requested endpoints: equal endpoints, an endpoint no agency
// recognizes, or an exhausted frontier.
type NotPossibleError struct {
	Reason string
}

func (e *NotPossibleError) Error() string {
	return "itinerary not possible: " + e.Reason
}

// CancelledError reports that the search was abandoned because its
// context was cancelled or its deadline elapsed.
type CancelledError struct{}

func (e *CancelledError) Error() string {
	return "itinerary search cancelled"
}
