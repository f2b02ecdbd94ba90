package models

import (
	"github.com/MinhPhan8803/cumtd/pkg/cumtd"
)

// Stop is a boarding point with its parent location.
type Stop struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Point    Point  `json:"point"`
	Location struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"location"`
}

// StopList is the response of the stop endpoints.
type StopList struct {
	Items []Stop `json:"items"`
	Count int    `json:"count"`
}

// Route is a transit route.
type Route struct {
	ID        string `json:"id"`
	ShortName string `json:"shortName"`
	LongName  string `json:"longName"`
	Color     string `json:"color"`
	TextColor string `json:"textColor"`
}

// RouteList is the response of the route endpoints.
type RouteList struct {
	Items []Route `json:"items"`
	Count int     `json:"count"`
}

// ShapePoint is one point of a shape.
type ShapePoint struct {
	Point        Point   `json:"point"`
	Sequence     int     `json:"sequence"`
	DistTraveled float64 `json:"distTraveled"`
	StopID       *string `json:"stopId,omitempty"`
}

// Shape is the response of the shape endpoint. Points is omitted when the
// polyline encoding was requested.
type Shape struct {
	ShapeID      string       `json:"shapeId"`
	BeginStopID  string       `json:"beginStopId,omitempty"`
	EndStopID    string       `json:"endStopId,omitempty"`
	Points       []ShapePoint `json:"points,omitempty"`
	Polyline     string       `json:"polyline,omitempty"`
	PointCount   int          `json:"pointCount"`
	LengthMeters float64      `json:"lengthMeters"`
}

// CalendarDate is a service calendar entry.
type CalendarDate struct {
	Date      string `json:"date"`
	ServiceID string `json:"serviceId"`
}

// CalendarDateList is the response of the calendar dates endpoint.
type CalendarDateList struct {
	Items []CalendarDate `json:"items"`
	Count int            `json:"count"`
}

// NewStopList converts stops into their response model.
func NewStopList(stops []cumtd.Stop) StopList {
	items := make([]Stop, 0, len(stops))
	for _, s := range stops {
		item := Stop{
			ID:    s.ID,
			Name:  s.Name,
			Code:  s.Code,
			Point: Point{Lat: s.Lat, Lon: s.Lon},
		}
		item.Location.ID = s.LocationID
		item.Location.Name = s.LocationName
		items = append(items, item)
	}
	return StopList{Items: items, Count: len(items)}
}

// NewRouteList converts routes into their response model.
func NewRouteList(routes []cumtd.Route) RouteList {
	items := make([]Route, 0, len(routes))
	for _, r := range routes {
		items = append(items, Route{
			ID:        r.ID,
			ShortName: r.ShortName,
			LongName:  r.LongName,
			Color:     r.Color,
			TextColor: r.TextColor,
		})
	}
	return RouteList{Items: items, Count: len(items)}
}

// NewShapePoints converts shape points into their response model.
func NewShapePoints(points []cumtd.ShapePoint) []ShapePoint {
	items := make([]ShapePoint, 0, len(points))
	for _, p := range points {
		items = append(items, ShapePoint{
			Point:        Point{Lat: p.Lat, Lon: p.Lon},
			Sequence:     p.Sequence,
			DistTraveled: p.DistTraveled,
			StopID:       p.StopID,
		})
	}
	return items
}

// NewCalendarDateList converts calendar dates into their response model.
func NewCalendarDateList(dates []cumtd.CalendarDate) CalendarDateList {
	items := make([]CalendarDate, 0, len(dates))
	for _, d := range dates {
		items = append(items, CalendarDate{
			Date:      d.Date.String(),
			ServiceID: d.ServiceID,
		})
	}
	return CalendarDateList{Items: items, Count: len(items)}
}
