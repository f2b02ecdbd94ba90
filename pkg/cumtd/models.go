package cumtd

import (
	"cloud.google.com/go/civil"
)

// Stop is a boarding point. Stops that belong to a parent location carry
// that location's identity in LocationID and LocationName.
type Stop struct {
	// ID is the stop point identifier (e.g., "IT:1").
	ID string

	// Name is the human-readable stop name.
	Name string

	// Code is the short code printed at the stop.
	Code string

	Lat float64
	Lon float64

	// LocationID identifies the parent location the stop belongs to.
	LocationID string

	// LocationName is the parent location's name.
	LocationName string
}

// Equal reports whether two stops are the same stop. Only the identifier
// is compared; coordinates and names may differ between fetches.
func (s Stop) Equal(other Stop) bool {
	return s.ID == other.ID
}

// Route is a transit route.
type Route struct {
	ID        string
	ShortName string
	LongName  string

	// Color is the route color as a hex string without '#' (e.g., "FF0000").
	Color string

	// TextColor is the contrasting text color for Color.
	TextColor string
}

// ShapePoint is one point of a route geometry.
type ShapePoint struct {
	Lat float64
	Lon float64

	// Sequence orders points along the path. Values are strictly ordered
	// but not necessarily contiguous and do not start at a fixed value.
	Sequence int

	// DistTraveled is the cumulative distance from the first point.
	DistTraveled float64

	// StopID is set only where the point coincides with a stop.
	StopID *string
}

// CalendarDate is a service calendar exception or inclusion.
type CalendarDate struct {
	Date      civil.Date
	ServiceID string
}
