package domain

// Represents a single boarding point on a bus route.
// A Stop is built by the response normalizer and never modified afterwards;
// renderers receive it by value.
type Stop struct {
	Name        string
	Lat         float64
	Lon         float64
	ArrivalTime string
	// Students is nil when the optimizer did not report a count.
	Students *int
}

func (s Stop) Coordinates() Coordinates {
	return Coordinates{Lat: s.Lat, Lon: s.Lon}
}

// A stop dropped from a route that the optimizer reported as removed.
type RemovedStop struct {
	Name     string
	Students *int
}
