// Package api provides the HTTP gateway for CUMTD transit data.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/MinhPhan8803/cumtd/internal/api/handler"
	"github.com/MinhPhan8803/cumtd/internal/api/middleware"
	"github.com/MinhPhan8803/cumtd/internal/api/response"
	"github.com/MinhPhan8803/cumtd/internal/provider/resilience"
)

// DefaultServiceName names the gateway in traces when RouterConfig.ServiceName is empty.
const DefaultServiceName = "cumtd-gateway"

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// Transit answers the transit endpoints, normally a *cumtd.Client.
	Transit handler.TransitQuerier

	// Registry reports upstream health on /v1/ops/status. May be nil.
	Registry *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers
	r.Use(middleware.ReadOnly)             // GET, HEAD and OPTIONS only
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "no route matches "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, r, r.Method+" is not supported on "+r.URL.Path)
	})

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry)
	transitHandler := handler.NewTransitHandler(cfg.Transit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/status", opsHandler.SystemStatus)
			r.Get("/status/{provider}", opsHandler.ProviderStatus)
		})

		r.Route("/stops", func(r chi.Router) {
			r.Get("/", transitHandler.ListStops)
			r.Get("/nearby", transitHandler.NearbyStops)
			r.Get("/{stopId}/routes", transitHandler.StopRoutes)
		})

		r.Get("/routes", transitHandler.ListRoutes)
		r.Get("/shapes/{shapeId}", transitHandler.GetShape)
		r.Get("/calendar-dates", transitHandler.ListCalendarDates)
	})

	return r
}
