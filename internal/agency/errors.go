package agency

import "fmt"

// UnavailableError reports that an agency's backing data is missing at
// startup. It is reported once at load time and the process keeps
// running: the caller excludes the agency from the enabled set rather
// than raising it per-request.
type UnavailableError struct {
	Kind  string
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("agency: %s unavailable: %v", e.Kind, e.Cause)
}

func (e *UnavailableError) Unwrap() error { return e.Cause }
