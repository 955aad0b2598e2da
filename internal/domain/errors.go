package domain

import "fmt"

// ValidationError is returned when a submission is rejected before any
// request is issued.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// FailureCause classifies why an optimization attempt produced no route.
type FailureCause int

const (
	// No response was obtained (timeout, refused connection, DNS failure).
	CauseNetwork FailureCause = iota + 1
	// The optimizer answered with a non-success HTTP status.
	CauseHTTP
	// The body could not be read as a JSON object.
	CauseProtocol
	// A well-formed body explicitly signalled failure.
	CauseBusiness
)

func (c FailureCause) String() string {
	switch c {
	case CauseNetwork:
		return "network_error"
	case CauseHTTP:
		return "http_error"
	case CauseProtocol:
		return "protocol_error"
	case CauseBusiness:
		return "business_error"
	default:
		return "unknown"
	}
}
