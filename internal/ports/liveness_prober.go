package ports

import "context"

// Optional extension of RouteOptimizer that supports a liveness probe.
type LivenessProber interface {
	RouteOptimizer
	// Return nil when the optimizer answered its liveness endpoint with a 2xx.
	Probe(ctx context.Context) error
}
