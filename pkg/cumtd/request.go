package cumtd

import (
	"net/url"
	"strconv"
	"strings"
)

// API methods, appended to the base URL.
const (
	endpointStop               = "getstop"
	endpointStops              = "getstops"
	endpointStopsByLatLon      = "getstopsbylatlon"
	endpointRoute              = "getroute"
	endpointRoutes             = "getroutes"
	endpointRoutesByStop       = "getroutesbystop"
	endpointShape              = "getshape"
	endpointShapeBetweenStops  = "getshapebetweenstops"
	endpointCalendarDatesByDay = "getcalendardatesbydate"
)

// idSeparator joins identifier lists on the wire.
const idSeparator = ";"

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string
}

// Request is an API call: the method endpoint and its parameters in the
// order they are sent. The API key is always the first parameter.
type Request struct {
	Endpoint string
	Params   []Param
}

// Get returns the value of the first parameter named key.
func (r Request) Get(key string) (string, bool) {
	for _, p := range r.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Encode renders the parameters as a URL query string, preserving order.
func (r Request) Encode() string {
	var b strings.Builder
	for i, p := range r.Params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

func newRequest(endpoint, key string, params ...Param) Request {
	all := make([]Param, 0, len(params)+1)
	all = append(all, Param{Key: "key", Value: key})
	all = append(all, params...)
	return Request{Endpoint: endpoint, Params: all}
}

// StopsRequest builds the call for a stops query.
func StopsRequest(key string, q StopsQuery) Request {
	return q.stopsRequest(key)
}

// RoutesRequest builds the call for a routes query.
func RoutesRequest(key string, q RoutesQuery) Request {
	return q.routesRequest(key)
}

// ShapesRequest builds the call for a shapes query.
func ShapesRequest(key string, q ShapesQuery) Request {
	return q.shapesRequest(key)
}

// CalendarDatesRequest builds the call for a calendar dates query.
// It fails with a KindFormat error if the query date cannot be rendered.
func CalendarDatesRequest(key string, q CalendarDatesQuery) (Request, error) {
	return q.calendarDatesRequest(key)
}

func (q StopsByID) stopsRequest(key string) Request {
	return newRequest(endpointStop, key, Param{Key: "stop_id", Value: joinIDs(q.IDs)})
}

func (AllStops) stopsRequest(key string) Request {
	return newRequest(endpointStops, key)
}

func (q StopsByLatLon) stopsRequest(key string) Request {
	params := []Param{
		{Key: "lat", Value: formatFloat(q.Query.Lat())},
		{Key: "lon", Value: formatFloat(q.Query.Lon())},
	}
	if count, ok := q.Query.Count(); ok {
		params = append(params, Param{Key: "count", Value: strconv.Itoa(count)})
	}
	return newRequest(endpointStopsByLatLon, key, params...)
}

func (q RoutesByID) routesRequest(key string) Request {
	return newRequest(endpointRoute, key, Param{Key: "route_id", Value: joinIDs(q.IDs)})
}

func (AllRoutes) routesRequest(key string) Request {
	return newRequest(endpointRoutes, key)
}

func (q RoutesByStop) routesRequest(key string) Request {
	return newRequest(endpointRoutesByStop, key, Param{Key: "stop_id", Value: q.StopID})
}

func (q FullShape) shapesRequest(key string) Request {
	return newRequest(endpointShape, key, Param{Key: "shape_id", Value: q.ShapeID})
}

func (q ShapeBetweenStops) shapesRequest(key string) Request {
	return newRequest(endpointShapeBetweenStops, key,
		Param{Key: "begin_stop_id", Value: q.Spec.BeginStopID},
		Param{Key: "end_stop_id", Value: q.Spec.EndStopID},
		Param{Key: "shape_id", Value: q.Spec.ShapeID},
	)
}

func (q CalendarDatesByDate) calendarDatesRequest(key string) (Request, error) {
	date, err := FormatDate(q.Date)
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.Op = endpointCalendarDatesByDay
		}
		return Request{}, err
	}
	return newRequest(endpointCalendarDatesByDay, key, Param{Key: "date", Value: date}), nil
}

func (q CalendarDatesByService) calendarDatesRequest(key string) (Request, error) {
	return newRequest(endpointCalendarDatesByDay, key, Param{Key: "service_id", Value: q.ServiceID}), nil
}

func joinIDs(ids []string) string {
	return strings.Join(ids, idSeparator)
}

// formatFloat renders v in plain decimal notation with the fewest digits
// that round-trip.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
