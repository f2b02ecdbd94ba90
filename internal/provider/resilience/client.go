package resilience

import (
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrCircuitOpen is returned when the circuit breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ClientConfig holds configuration for the provider HTTP client.
type ClientConfig struct {
	// Name identifies this client for circuit breaker naming and health.
	Name string

	// Timeout is the request timeout for individual HTTP calls.
	// Default: 10 seconds
	Timeout time.Duration

	// CircuitBreaker is the circuit breaker configuration.
	// If nil, no circuit breaker is used.
	CircuitBreaker *CircuitBreakerConfig

	// Registry receives the client on creation and its outcomes on every call.
	// If nil, the client is not tracked.
	Registry *Registry

	// Transport is the underlying round tripper.
	// If nil, http.DefaultTransport wrapped with otelhttp is used.
	Transport http.RoundTripper
}

// DefaultClientConfig returns defaults for the provider client: a 10 second
// timeout and no circuit breaker.
func DefaultClientConfig(name string) ClientConfig {
	return ClientConfig{
		Name:    name,
		Timeout: 10 * time.Second,
	}
}

// Client sends each request exactly once, optionally guarded by a circuit breaker.
type Client struct {
	name           string
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker[*http.Response]
	registry       *Registry
}

// NewClient creates a new provider HTTP client and registers it with
// cfg.Registry when set.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	transport := cfg.Transport
	if transport == nil {
		transport = otelhttp.NewTransport(http.DefaultTransport)
	}

	var cb *gobreaker.CircuitBreaker[*http.Response]
	if cfg.CircuitBreaker != nil {
		cbConfig := *cfg.CircuitBreaker
		if cbConfig.Name == "" {
			cbConfig.Name = cfg.Name
		}
		cb = NewCircuitBreaker[*http.Response](cbConfig) //nolint:bodyclose // type param, not response
	}

	c := &Client{
		name: cfg.Name,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		circuitBreaker: cb,
		registry:       cfg.Registry,
	}

	if c.registry != nil {
		c.registry.Register(c.name, c)
	}

	return c
}

// Name returns the client name.
func (c *Client) Name() string {
	return c.name
}

// Do executes an HTTP request once. A 5xx response is returned to the caller
// unchanged but counts as a failure for the circuit breaker and registry.
// Returns ErrCircuitOpen without sending if the circuit breaker is open.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.circuitBreaker == nil {
		resp, err := c.httpClient.Do(req)
		c.record(resp, err)
		return resp, err
	}

	resp, err := c.circuitBreaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller is responsible for closing
		r, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		// Treat 5xx as errors for circuit breaker
		if r.StatusCode >= 500 {
			return r, &ServerError{StatusCode: r.StatusCode}
		}

		return r, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.record(nil, ErrCircuitOpen)
		return nil, ErrCircuitOpen
	}

	var serverErr *ServerError
	if errors.As(err, &serverErr) && resp != nil {
		c.record(resp, nil)
		return resp, nil
	}

	c.record(resp, err)
	return resp, err
}

func (c *Client) record(resp *http.Response, err error) {
	if c.registry == nil {
		return
	}
	switch {
	case err != nil:
		c.registry.RecordFailure(c.name, err)
	case resp.StatusCode >= 500:
		c.registry.RecordFailure(c.name, &ServerError{StatusCode: resp.StatusCode})
	default:
		c.registry.RecordSuccess(c.name)
	}
}

// ServerError represents an HTTP 5xx server error.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// CircuitBreakerState returns the current state of the circuit breaker.
// A client without a circuit breaker is always closed.
func (c *Client) CircuitBreakerState() gobreaker.State {
	if c.circuitBreaker == nil {
		return gobreaker.StateClosed
	}
	return c.circuitBreaker.State()
}

// CircuitBreakerCounts returns the current counts of the circuit breaker.
func (c *Client) CircuitBreakerCounts() gobreaker.Counts {
	if c.circuitBreaker == nil {
		return gobreaker.Counts{}
	}
	return c.circuitBreaker.Counts()
}
