package cumtd

import (
	"cloud.google.com/go/civil"
)

// flattenStopGroups turns the service's location groups into one list of
// stops. Every stop is tagged with its group's identity, then the groups
// are concatenated in order. Empty groups contribute nothing.
func flattenStopGroups(groups []stopGroup) []Stop {
	tagged := make([][]Stop, len(groups))
	total := 0
	for i := range groups {
		g := &groups[i]
		stops := make([]Stop, 0, len(g.StopPoints))
		for j := range g.StopPoints {
			stop := toStop(&g.StopPoints[j])
			stop.LocationID = *g.StopID
			stop.LocationName = *g.StopName
			stops = append(stops, stop)
		}
		tagged[i] = stops
		total += len(stops)
	}

	flat := make([]Stop, 0, total)
	for _, stops := range tagged {
		flat = append(flat, stops...)
	}
	return flat
}

func toStop(s *wireStop) Stop {
	code := ""
	switch {
	case s.Code != nil:
		code = *s.Code
	case s.StopCode != nil:
		code = *s.StopCode
	}
	return Stop{
		ID:   *s.StopID,
		Name: *s.StopName,
		Code: code,
		Lat:  *s.StopLat,
		Lon:  *s.StopLon,
	}
}

func toRoutes(wire []wireRoute) []Route {
	routes := make([]Route, 0, len(wire))
	for i := range wire {
		r := &wire[i]
		routes = append(routes, Route{
			ID:        *r.RouteID,
			ShortName: *r.RouteShortName,
			LongName:  *r.RouteLongName,
			Color:     *r.RouteColor,
			TextColor: *r.RouteTextColor,
		})
	}
	return routes
}

func toShapePoints(wire []wireShapePoint) []ShapePoint {
	points := make([]ShapePoint, 0, len(wire))
	for i := range wire {
		p := &wire[i]
		points = append(points, ShapePoint{
			Lat:          *p.Lat,
			Lon:          *p.Lon,
			Sequence:     *p.Sequence,
			DistTraveled: *p.DistTraveled,
			StopID:       p.StopID,
		})
	}
	return points
}

func toCalendarDates(wire []wireCalendarDate) []CalendarDate {
	dates := make([]CalendarDate, 0, len(wire))
	for i := range wire {
		d := &wire[i]
		dates = append(dates, CalendarDate{
			Date:      civil.Date(*d.Date),
			ServiceID: *d.ServiceID,
		})
	}
	return dates
}

// CUMTD API response structures. Required fields are pointers so that a
// missing field is told apart from a zero value.

type stopsResponse struct {
	Stops []stopGroup `json:"stops" validate:"required,dive"`
}

type stopGroup struct {
	StopID     *string    `json:"stop_id" validate:"required"`
	StopName   *string    `json:"stop_name" validate:"required"`
	StopPoints []wireStop `json:"stop_points" validate:"required,dive"`
}

type wireStop struct {
	Code     *string  `json:"code" validate:"required_without=StopCode"`
	StopCode *string  `json:"stop_code"`
	StopID   *string  `json:"stop_id" validate:"required"`
	StopName *string  `json:"stop_name" validate:"required"`
	StopLat  *float64 `json:"stop_lat" validate:"required"`
	StopLon  *float64 `json:"stop_lon" validate:"required"`
}

type routesResponse struct {
	Routes []wireRoute `json:"routes" validate:"required,dive"`
}

type wireRoute struct {
	RouteID        *string `json:"route_id" validate:"required"`
	RouteShortName *string `json:"route_short_name" validate:"required"`
	RouteLongName  *string `json:"route_long_name" validate:"required"`
	RouteColor     *string `json:"route_color" validate:"required"`
	RouteTextColor *string `json:"route_text_color" validate:"required"`
}

type shapesResponse struct {
	Shapes []wireShapePoint `json:"shapes" validate:"required,dive"`
}

type wireShapePoint struct {
	DistTraveled *float64 `json:"shape_dist_traveled" validate:"required"`
	Lat          *float64 `json:"shape_pt_lat" validate:"required"`
	Lon          *float64 `json:"shape_pt_lon" validate:"required"`
	Sequence     *int     `json:"shape_pt_sequence" validate:"required"`
	StopID       *string  `json:"stop_id"`
}

type calendarDatesResponse struct {
	CalendarDates []wireCalendarDate `json:"calendar_dates" validate:"required,dive"`
}

type wireCalendarDate struct {
	Date      *wireDate `json:"date" validate:"required"`
	ServiceID *string   `json:"service_id" validate:"required"`
}
