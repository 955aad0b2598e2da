package domain

// Kind identifies the active RouteResult variant.
type Kind string

const (
	KindOptimized Kind = "optimized"
	KindRemoved   Kind = "removed"
	KindEmpty     Kind = "empty"
	KindFailed    Kind = "failed"
)

// RouteResult is the canonical outcome of one optimization request.
// Exactly one of Optimized, Removed, Empty or Failed implements it; the set is
// closed by the unexported marker method.
//
// Results are immutable planning data: a newer request replaces the current
// result wholesale, it never edits one in place.
type RouteResult interface {
	Kind() Kind
	Route() string
	isRouteResult()
}

// The optimizer produced an ordered route.
type Optimized struct {
	RouteNo          string
	Stops            []Stop
	TotalDistanceKm  float64
	EstimatedTimeMin float64
	// TotalStudents is nil when not reported; zero is a real count.
	TotalStudents *int
	// FinalStop names the fixed destination when the optimizer reports one.
	FinalStop string
}

// The route was withdrawn by the optimizer (for example, low ridership).
type Removed struct {
	RouteNo      string
	Reason       string
	RemovedStops []RemovedStop
}

// The optimizer reported success without any stops.
type Empty struct {
	RouteNo string
}

// The attempt failed. Message is the only text shown to operators; Err keeps
// the underlying error for logs.
type Failed struct {
	RouteNo string
	Message string
	Cause   FailureCause
	// Status is the HTTP status for CauseHTTP and CauseBusiness, zero otherwise.
	Status int
	Err    error
}

func (Optimized) Kind() Kind { return KindOptimized }
func (Removed) Kind() Kind   { return KindRemoved }
func (Empty) Kind() Kind     { return KindEmpty }
func (Failed) Kind() Kind    { return KindFailed }

func (r Optimized) Route() string { return r.RouteNo }
func (r Removed) Route() string   { return r.RouteNo }
func (r Empty) Route() string     { return r.RouteNo }
func (r Failed) Route() string    { return r.RouteNo }

func (Optimized) isRouteResult() {}
func (Removed) isRouteResult()   {}
func (Empty) isRouteResult()     {}
func (Failed) isRouteResult()    {}

// TotalStudents when reported, else the sum of per-stop counts. Nil when
// any stop's count is unknown: a partial sum is not a route total.
func (r Optimized) ReportedStudents() *int {
	if r.TotalStudents != nil {
		return r.TotalStudents
	}
	if len(r.Stops) == 0 {
		return nil
	}

	var total int
	for _, s := range r.Stops {
		if s.Students == nil {
			return nil
		}
		total += *s.Students
	}
	return &total
}
