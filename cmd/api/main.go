// Package main provides the entrypoint for the CUMTD gateway.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/MinhPhan8803/cumtd/internal/api"
	"github.com/MinhPhan8803/cumtd/internal/api/middleware"
	"github.com/MinhPhan8803/cumtd/internal/config"
	"github.com/MinhPhan8803/cumtd/internal/provider/resilience"
	"github.com/MinhPhan8803/cumtd/internal/telemetry"
	"github.com/MinhPhan8803/cumtd/pkg/cumtd"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = api.DefaultServiceName

	configPath := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	log = log.Level(cfg.Server.Level())

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Server.Env).
		Msg("starting CUMTD gateway")

	// Initialize OpenTelemetry
	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Server.Env,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Upstream transport, tracked by the registry for /v1/ops/status
	registry := resilience.NewRegistry()
	transportCfg := resilience.DefaultClientConfig(cumtd.ProviderName)
	transportCfg.Timeout = cfg.CUMTD.Timeout
	transportCfg.Registry = registry
	if cfg.CUMTD.CircuitBreaker {
		breaker := resilience.DefaultCircuitBreakerConfig(cumtd.ProviderName)
		breaker.OnStateChange = resilience.LogStateChanges(log)
		transportCfg.CircuitBreaker = &breaker
		log.Info().Msg("circuit breaker enabled for cumtd")
	}

	client, err := cumtd.NewClient(cfg.CUMTD.ClientConfig(resilience.NewClient(transportCfg), log))
	if err != nil {
		log.Error().Err(err).Msg("failed to create cumtd client")
		os.Exit(1)
	}
	log.Info().
		Str("base_url", cfg.CUMTD.BaseURL).
		Dur("timeout", cfg.CUMTD.Timeout).
		Msg("cumtd client initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Transit:     client,
		Registry:    registry,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
