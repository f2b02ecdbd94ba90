package cumtd

import (
	"errors"
)

// ErrMissingCoordinates is returned when a LatLonQuery is built without
// both a latitude and a longitude.
var ErrMissingCoordinates = errors.New("missing latitude or longitude")

// StopsQuery selects how stops are requested.
// It is implemented only by StopsByID, AllStops and StopsByLatLon.
type StopsQuery interface {
	stopsRequest(key string) Request
}

// StopsByID requests the stops with the given identifiers.
type StopsByID struct {
	IDs []string
}

// AllStops requests every stop.
type AllStops struct{}

// StopsByLatLon requests the stops nearest to a point.
type StopsByLatLon struct {
	Query LatLonQuery
}

// LatLonQuery is a center point with an optional cap on the result count.
type LatLonQuery struct {
	lat      float64
	lon      float64
	count    int
	hasCount bool
}

// NewLatLonQuery creates a query around lat/lon with no result cap.
func NewLatLonQuery(lat, lon float64) LatLonQuery {
	return LatLonQuery{lat: lat, lon: lon}
}

// NewLatLonQueryWithCount creates a query around lat/lon returning at most count stops.
func NewLatLonQueryWithCount(lat, lon float64, count int) LatLonQuery {
	return LatLonQuery{lat: lat, lon: lon, count: count, hasCount: true}
}

// Lat returns the latitude of the search center.
func (q LatLonQuery) Lat() float64 { return q.lat }

// Lon returns the longitude of the search center.
func (q LatLonQuery) Lon() float64 { return q.lon }

// Count returns the result cap and whether one was set.
func (q LatLonQuery) Count() (int, bool) {
	return q.count, q.hasCount
}

// LatLonQueryBuilder assembles a LatLonQuery field by field.
type LatLonQueryBuilder struct {
	lat   *float64
	lon   *float64
	count *int
}

// NewLatLonQueryBuilder returns an empty builder.
func NewLatLonQueryBuilder() *LatLonQueryBuilder {
	return &LatLonQueryBuilder{}
}

// Lat sets the latitude.
func (b *LatLonQueryBuilder) Lat(lat float64) *LatLonQueryBuilder {
	b.lat = &lat
	return b
}

// Lon sets the longitude.
func (b *LatLonQueryBuilder) Lon(lon float64) *LatLonQueryBuilder {
	b.lon = &lon
	return b
}

// Count caps the number of stops returned.
func (b *LatLonQueryBuilder) Count(count int) *LatLonQueryBuilder {
	b.count = &count
	return b
}

// Build returns the query, or ErrMissingCoordinates if latitude or
// longitude was never set.
func (b *LatLonQueryBuilder) Build() (LatLonQuery, error) {
	if b.lat == nil || b.lon == nil {
		return LatLonQuery{}, ErrMissingCoordinates
	}
	if b.count != nil {
		return NewLatLonQueryWithCount(*b.lat, *b.lon, *b.count), nil
	}
	return NewLatLonQuery(*b.lat, *b.lon), nil
}
