package cumtd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MinhPhan8803/cumtd/internal/provider/resilience"
)

const (
	// ProviderName identifies this provider in transport health and telemetry.
	ProviderName = "cumtd"

	// DefaultBaseURL is the CUMTD JSON API base URL.
	DefaultBaseURL = "https://developer.cumtd.com/api/v2.2/json"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

const tracerName = "github.com/MinhPhan8803/cumtd/pkg/cumtd"

var validate = validator.New()

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the CUMTD client.
type ClientConfig struct {
	// APIKey is the developer API key (required).
	APIKey string `validate:"required"`

	// BaseURL is the API base URL (optional, defaults to DefaultBaseURL).
	BaseURL string `validate:"omitempty,url"`

	// HTTPClient is the HTTP client to use (optional).
	// If nil, a single-attempt client with Timeout is created.
	HTTPClient HTTPDoer `validate:"-"`

	// Timeout is the request timeout when HTTPClient is nil (optional, defaults to 10s).
	Timeout time.Duration `validate:"gte=0"`

	// Logger for client operations.
	Logger zerolog.Logger `validate:"-"`
}

// Client queries the CUMTD API. It holds no per-call state and is safe for
// concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
	tracer     trace.Tracer
	metrics    *clientMetrics
}

// NewClient creates a new CUMTD client. An invalid configuration yields a
// KindClient error.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, &Error{Kind: KindClient, Op: "new client", Msg: "invalid configuration", Err: err}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		httpClient = resilience.NewClient(clientCfg)
	}

	metrics, err := newClientMetrics()
	if err != nil {
		return nil, &Error{Kind: KindClient, Op: "new client", Msg: "creating metrics", Err: err}
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
		tracer:     otel.Tracer(tracerName),
		metrics:    metrics,
	}, nil
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// QueryStops fetches stops. Each returned stop carries its parent location.
func (c *Client) QueryStops(ctx context.Context, q StopsQuery) ([]Stop, error) {
	if q == nil {
		return nil, &Error{Kind: KindClient, Op: "stops", Msg: "nil query"}
	}

	var resp stopsResponse
	if err := c.get(ctx, StopsRequest(c.apiKey, q), &resp); err != nil {
		return nil, err
	}
	return flattenStopGroups(resp.Stops), nil
}

// QueryRoutes fetches routes.
func (c *Client) QueryRoutes(ctx context.Context, q RoutesQuery) ([]Route, error) {
	if q == nil {
		return nil, &Error{Kind: KindClient, Op: "routes", Msg: "nil query"}
	}

	var resp routesResponse
	if err := c.get(ctx, RoutesRequest(c.apiKey, q), &resp); err != nil {
		return nil, err
	}
	return toRoutes(resp.Routes), nil
}

// QueryShapes fetches the points of a shape, in the order the service sends them.
func (c *Client) QueryShapes(ctx context.Context, q ShapesQuery) ([]ShapePoint, error) {
	if q == nil {
		return nil, &Error{Kind: KindClient, Op: "shapes", Msg: "nil query"}
	}

	var resp shapesResponse
	if err := c.get(ctx, ShapesRequest(c.apiKey, q), &resp); err != nil {
		return nil, err
	}
	return toShapePoints(resp.Shapes), nil
}

// QueryCalendarDates fetches service calendar entries.
func (c *Client) QueryCalendarDates(ctx context.Context, q CalendarDatesQuery) ([]CalendarDate, error) {
	if q == nil {
		return nil, &Error{Kind: KindClient, Op: "calendar dates", Msg: "nil query"}
	}

	req, err := CalendarDatesRequest(c.apiKey, q)
	if err != nil {
		return nil, err
	}

	var resp calendarDatesResponse
	if err := c.get(ctx, req, &resp); err != nil {
		return nil, err
	}
	return toCalendarDates(resp.CalendarDates), nil
}

// get performs one GET for r and decodes the body into out.
func (c *Client) get(ctx context.Context, r Request, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "cumtd."+r.Endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("cumtd.endpoint", r.Endpoint),
			attribute.Int("cumtd.params", len(r.Params)),
		),
	)
	start := time.Now()
	defer func() {
		c.metrics.record(ctx, r.Endpoint, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, errorKind(err).String())
		}
		span.End()
	}()

	url := fmt.Sprintf("%s/%s?%s", c.baseURL, r.Endpoint, r.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return FromTransportFailure(FailureSetup, r.Endpoint, err)
	}
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", r.Endpoint).
		Int("params", len(r.Params)).
		Msg("querying cumtd")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return FromTransportFailure(FailureInFlight, r.Endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &Error{
			Kind: KindRequest,
			Op:   r.Endpoint,
			Msg:  fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
		}
	}

	// A failed read is a network failure; malformed JSON surfaces in decode.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return FromTransportFailure(FailureInFlight, r.Endpoint, err)
	}

	return decode(r.Endpoint, body, out)
}

// decode parses body into out and rejects payloads missing required fields.
func decode(op string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: KindDecode, Op: op, Msg: "decoding response", Err: err}
	}
	if err := validate.Struct(out); err != nil {
		return &Error{Kind: KindDecode, Op: op, Msg: "missing required field", Err: err}
	}
	return nil
}

func errorKind(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return 0
}

// QueryStops fetches stops with a client built for key.
func QueryStops(ctx context.Context, key string, q StopsQuery) ([]Stop, error) {
	c, err := NewClient(ClientConfig{APIKey: key})
	if err != nil {
		return nil, err
	}
	return c.QueryStops(ctx, q)
}

// QueryRoutes fetches routes with a client built for key.
func QueryRoutes(ctx context.Context, key string, q RoutesQuery) ([]Route, error) {
	c, err := NewClient(ClientConfig{APIKey: key})
	if err != nil {
		return nil, err
	}
	return c.QueryRoutes(ctx, q)
}

// QueryShapes fetches shape points with a client built for key.
func QueryShapes(ctx context.Context, key string, q ShapesQuery) ([]ShapePoint, error) {
	c, err := NewClient(ClientConfig{APIKey: key})
	if err != nil {
		return nil, err
	}
	return c.QueryShapes(ctx, q)
}

// QueryCalendarDates fetches calendar entries with a client built for key.
func QueryCalendarDates(ctx context.Context, key string, q CalendarDatesQuery) ([]CalendarDate, error) {
	c, err := NewClient(ClientConfig{APIKey: key})
	if err != nil {
		return nil, err
	}
	return c.QueryCalendarDates(ctx, q)
}
