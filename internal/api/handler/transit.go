package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/MinhPhan8803/cumtd/internal/api/models"
	"github.com/MinhPhan8803/cumtd/internal/api/response"
	"github.com/MinhPhan8803/cumtd/internal/provider/resilience"
	"github.com/MinhPhan8803/cumtd/pkg/cumtd"
	"github.com/MinhPhan8803/cumtd/pkg/polyline"
)

// TransitQuerier is the subset of *cumtd.Client used by TransitHandler.
type TransitQuerier interface {
	QueryStops(ctx context.Context, q cumtd.StopsQuery) ([]cumtd.Stop, error)
	QueryRoutes(ctx context.Context, q cumtd.RoutesQuery) ([]cumtd.Route, error)
	QueryShapes(ctx context.Context, q cumtd.ShapesQuery) ([]cumtd.ShapePoint, error)
	QueryCalendarDates(ctx context.Context, q cumtd.CalendarDatesQuery) ([]cumtd.CalendarDate, error)
}

// Shape encodings accepted by GetShape.
const (
	EncodingPoints   = "points"
	EncodingPolyline = "polyline"
)

// TransitHandler serves the read-only transit endpoints.
type TransitHandler struct {
	transit  TransitQuerier
	validate *validator.Validate
}

// NewTransitHandler creates a new TransitHandler.
func NewTransitHandler(transit TransitQuerier) *TransitHandler {
	return &TransitHandler{
		transit:  transit,
		validate: validator.New(),
	}
}

// nearbyParams are the optional bounds checks applied before the query is built.
type nearbyParams struct {
	Lat   *float64 `validate:"omitempty,latitude"`
	Lon   *float64 `validate:"omitempty,longitude"`
	Count *int     `validate:"omitempty,gt=0,lte=100"`
}

// ListStops handles GET /v1/stops - all stops, or ?ids=a,b.
func (h *TransitHandler) ListStops(w http.ResponseWriter, r *http.Request) {
	var q cumtd.StopsQuery = cumtd.AllStops{}
	if r.URL.Query().Has("ids") {
		ids, ok := parseIDs(w, r)
		if !ok {
			return
		}
		q = cumtd.StopsByID{IDs: ids}
	}

	stops, err := h.transit.QueryStops(r.Context(), q)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewStopList(stops))
}

// NearbyStops handles GET /v1/stops/nearby?lat=&lon=&count=.
func (h *TransitHandler) NearbyStops(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var params nearbyParams
	var fieldErrs []models.FieldError

	if v := query.Get("lat"); v != "" {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil {
			fieldErrs = append(fieldErrs, models.FieldError{Field: "lat", Message: "must be a number", Code: "number"})
		} else {
			params.Lat = &lat
		}
	}
	if v := query.Get("lon"); v != "" {
		lon, err := strconv.ParseFloat(v, 64)
		if err != nil {
			fieldErrs = append(fieldErrs, models.FieldError{Field: "lon", Message: "must be a number", Code: "number"})
		} else {
			params.Lon = &lon
		}
	}
	if v := query.Get("count"); v != "" {
		count, err := strconv.Atoi(v)
		if err != nil {
			fieldErrs = append(fieldErrs, models.FieldError{Field: "count", Message: "must be an integer", Code: "integer"})
		} else {
			params.Count = &count
		}
	}
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid query parameters", fieldErrs)
		return
	}

	if err := h.validate.Struct(params); err != nil {
		response.BadRequest(w, r, "invalid query parameters", validationErrors(err))
		return
	}

	builder := cumtd.NewLatLonQueryBuilder()
	if params.Lat != nil {
		builder.Lat(*params.Lat)
	}
	if params.Lon != nil {
		builder.Lon(*params.Lon)
	}
	if params.Count != nil {
		builder.Count(*params.Count)
	}
	latlon, err := builder.Build()
	if err != nil {
		response.BadRequest(w, r, "lat and lon are required", []models.FieldError{
			{Field: "lat", Message: "required", Code: "required"},
			{Field: "lon", Message: "required", Code: "required"},
		})
		return
	}

	stops, err := h.transit.QueryStops(r.Context(), cumtd.StopsByLatLon{Query: latlon})
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewStopList(stops))
}

// ListRoutes handles GET /v1/routes - all routes, or ?ids=a,b.
func (h *TransitHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	var q cumtd.RoutesQuery = cumtd.AllRoutes{}
	if r.URL.Query().Has("ids") {
		ids, ok := parseIDs(w, r)
		if !ok {
			return
		}
		q = cumtd.RoutesByID{IDs: ids}
	}

	h.writeRoutes(w, r, q)
}

// StopRoutes handles GET /v1/stops/{stopId}/routes.
func (h *TransitHandler) StopRoutes(w http.ResponseWriter, r *http.Request) {
	h.writeRoutes(w, r, cumtd.RoutesByStop{StopID: chi.URLParam(r, "stopId")})
}

func (h *TransitHandler) writeRoutes(w http.ResponseWriter, r *http.Request, q cumtd.RoutesQuery) {
	routes, err := h.transit.QueryRoutes(r.Context(), q)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewRouteList(routes))
}

// GetShape handles GET /v1/shapes/{shapeId}. With begin_stop_id and
// end_stop_id only the part between the two stops is returned.
// encoding=polyline replaces the point list with an encoded polyline.
func (h *TransitHandler) GetShape(w http.ResponseWriter, r *http.Request) {
	shapeID := chi.URLParam(r, "shapeId")
	query := r.URL.Query()
	begin := query.Get("begin_stop_id")
	end := query.Get("end_stop_id")

	if (begin == "") != (end == "") {
		response.BadRequest(w, r, "begin_stop_id and end_stop_id must be given together", []models.FieldError{
			{Field: "begin_stop_id", Message: "required with end_stop_id", Code: "required_with"},
			{Field: "end_stop_id", Message: "required with begin_stop_id", Code: "required_with"},
		})
		return
	}

	encoding := query.Get("encoding")
	switch encoding {
	case "", EncodingPoints, EncodingPolyline:
	default:
		response.BadRequest(w, r, "unsupported encoding", []models.FieldError{
			{Field: "encoding", Message: "must be points or polyline", Code: "oneof"},
		})
		return
	}

	var q cumtd.ShapesQuery = cumtd.FullShape{ShapeID: shapeID}
	if begin != "" {
		q = cumtd.ShapeBetweenStops{Spec: cumtd.NewShapeSpecifier(begin, end, shapeID)}
	}

	points, err := h.transit.QueryShapes(r.Context(), q)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	if len(points) == 0 {
		response.NotFound(w, r, fmt.Sprintf("shape %q has no points", shapeID))
		return
	}

	encoded, length := polyline.EncodeShape(points)
	shape := models.Shape{
		ShapeID:      shapeID,
		BeginStopID:  begin,
		EndStopID:    end,
		PointCount:   len(points),
		LengthMeters: length,
	}
	if encoding == EncodingPolyline {
		shape.Polyline = encoded
	} else {
		shape.Points = models.NewShapePoints(points)
	}

	response.JSON(w, r, http.StatusOK, shape)
}

// ListCalendarDates handles GET /v1/calendar-dates with exactly one of
// date=YYYY-MM-DD or service_id.
func (h *TransitHandler) ListCalendarDates(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	date := query.Get("date")
	serviceID := query.Get("service_id")

	if (date == "") == (serviceID == "") {
		response.BadRequest(w, r, "exactly one of date or service_id is required", []models.FieldError{
			{Field: "date", Message: "required without service_id", Code: "required_without"},
			{Field: "service_id", Message: "required without date", Code: "required_without"},
		})
		return
	}

	var q cumtd.CalendarDatesQuery = cumtd.CalendarDatesByService{ServiceID: serviceID}
	if date != "" {
		d, err := cumtd.ParseDate(date)
		if err != nil {
			response.BadRequest(w, r, "invalid date", []models.FieldError{
				{Field: "date", Message: "must be a calendar date formatted YYYY-MM-DD", Code: "date"},
			})
			return
		}
		q = cumtd.CalendarDatesByDate{Date: d}
	}

	dates, err := h.transit.QueryCalendarDates(r.Context(), q)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewCalendarDateList(dates))
}

// parseIDs splits the comma separated ids parameter. It writes a 400 and
// returns false when no identifier remains.
func parseIDs(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		response.BadRequest(w, r, "ids must name at least one identifier", []models.FieldError{
			{Field: "ids", Message: "must not be empty", Code: "required"},
		})
		return nil, false
	}
	return ids, true
}

func validationErrors(err error) []models.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, models.FieldError{
			Field:   strings.ToLower(fe.Field()),
			Message: fmt.Sprintf("failed %s validation", fe.Tag()),
			Code:    fe.Tag(),
		})
	}
	return fields
}

// writeQueryError maps a failed query onto a problem response.
func writeQueryError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())

	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		logger.Warn().Err(err).Msg("cumtd circuit open")
		response.ServiceUnavailable(w, r, "transit data is temporarily unavailable")
	case errors.Is(err, cumtd.ErrFormat):
		response.BadRequest(w, r, err.Error(), nil)
	case errors.Is(err, cumtd.ErrRequest):
		logger.Error().Err(err).Msg("cumtd request failed")
		response.BadGateway(w, r, "upstream request failed")
	case errors.Is(err, cumtd.ErrDecode):
		logger.Error().Err(err).Msg("cumtd response could not be decoded")
		response.BadGateway(w, r, "upstream returned an unexpected response")
	default:
		logger.Error().Err(err).Msg("cumtd query failed")
		response.InternalError(w, r, "an unexpected error occurred")
	}
}
