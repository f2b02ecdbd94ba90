// Package config loads gateway and CLI configuration from defaults, an
// optional YAML file and the environment, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/MinhPhan8803/cumtd/pkg/cumtd"
)

// Environment variables read by Load.
const (
	EnvConfigPath     = "CUMTD_CONFIG"
	EnvAPIKey         = "CUMTD_API_KEY"
	EnvBaseURL        = "CUMTD_BASE_URL"
	EnvTimeout        = "CUMTD_TIMEOUT"
	EnvCircuitBreaker = "CUMTD_CIRCUIT_BREAKER"
	EnvPort           = "APP_PORT"
	EnvAppEnv         = "APP_ENV"
	EnvLogLevel       = "LOG_LEVEL"
	EnvOTelEnabled    = "OTEL_ENABLED"
	EnvOTLPEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// Config is the complete application configuration.
type Config struct {
	CUMTD     CUMTDConfig     `yaml:"cumtd"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// CUMTDConfig configures the upstream API client.
type CUMTDConfig struct {
	APIKey         string        `yaml:"api_key" validate:"required"`
	BaseURL        string        `yaml:"base_url" validate:"required,url"`
	Timeout        time.Duration `yaml:"timeout" validate:"gt=0"`
	CircuitBreaker bool          `yaml:"circuit_breaker"`
}

// ServerConfig configures the HTTP gateway.
type ServerConfig struct {
	Port     int    `yaml:"port" validate:"gt=0,lte=65535"`
	Env      string `yaml:"env" validate:"required"`
	LogLevel string `yaml:"log_level" validate:"oneof=trace debug info warn error"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" validate:"required_if=Enabled true"`
	SampleRatio  float64 `yaml:"sample_ratio" validate:"gte=0,lte=1"`
}

// Default returns the configuration used before any file or environment
// values are applied. It has no API key and so does not validate.
func Default() Config {
	return Config{
		CUMTD: CUMTDConfig{
			BaseURL: cumtd.DefaultBaseURL,
			Timeout: cumtd.DefaultTimeout,
		},
		Server: ServerConfig{
			Port:     8080,
			Env:      "development",
			LogLevel: "info",
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: "localhost:4317",
			SampleRatio:  1,
		},
	}
}

// Load builds the configuration. A .env file in the working directory is
// loaded first if present. path names an optional YAML file; when empty,
// CUMTD_CONFIG is consulted. Environment variables override file values.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.CUMTD.APIKey, EnvAPIKey)
	setString(&cfg.CUMTD.BaseURL, EnvBaseURL)
	setString(&cfg.Server.Env, EnvAppEnv)
	setString(&cfg.Server.LogLevel, EnvLogLevel)
	setString(&cfg.Telemetry.OTLPEndpoint, EnvOTLPEndpoint)

	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.CUMTD.Timeout = d
	}

	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		cfg.Server.Port = port
	}

	if err := setBool(&cfg.CUMTD.CircuitBreaker, EnvCircuitBreaker); err != nil {
		return err
	}
	return setBool(&cfg.Telemetry.Enabled, EnvOTelEnabled)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

// Level returns the zerolog level for LogLevel, defaulting to info.
func (s ServerConfig) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// ClientConfig returns the cumtd client configuration. httpClient may be nil.
func (c CUMTDConfig) ClientConfig(httpClient cumtd.HTTPDoer, logger zerolog.Logger) cumtd.ClientConfig {
	return cumtd.ClientConfig{
		APIKey:     c.APIKey,
		BaseURL:    c.BaseURL,
		HTTPClient: httpClient,
		Timeout:    c.Timeout,
		Logger:     logger,
	}
}
