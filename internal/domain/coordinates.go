package domain

import "math"

// Immutable geographic coordinates (latitude, longitude).
type Coordinates struct {
	Lat float64
	Lon float64
}

// Return coordinates as [lat, lon], the order map polylines are drawn in.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lat, c.Lon} }

// Valid reports whether both components are finite and inside the
// geographic range (-90..90, -180..180).
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}
