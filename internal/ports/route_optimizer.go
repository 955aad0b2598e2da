package ports

import "context"

// Raw outcome of one completed optimizer call: the HTTP status and the
// unparsed body. Classifying it is the normalizer's job.
type RawResponse struct {
	StatusCode int
	Body       []byte
}

// Contract for the remote route optimizer.
type RouteOptimizer interface {
	// Request an optimized ordering for routeNo.
	// A non-nil error means no response was obtained at all.
	Optimize(ctx context.Context, routeNo string) (RawResponse, error)
}
