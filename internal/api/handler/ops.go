// Package handler provides HTTP handlers for the CUMTD gateway.
package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MinhPhan8803/cumtd/internal/api/models"
	"github.com/MinhPhan8803/cumtd/internal/api/response"
	"github.com/MinhPhan8803/cumtd/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler. registry may be nil, in which
// case no providers are reported.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]any{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - upstream provider status.
// The overall status is the worst provider status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:    models.HealthStatusOK,
		Time:      models.Timestamp(time.Now()),
		Providers: []models.ProviderStatus{},
	}

	if h.registry != nil {
		for _, ph := range h.registry.GetAllHealth() {
			ps := providerStatus(ph)
			status.Providers = append(status.Providers, ps)
			status.Status = worse(status.Status, ps.Status)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

// ProviderStatus handles GET /v1/ops/status/{provider} - one upstream's status.
func (h *OpsHandler) ProviderStatus(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")

	var ph *resilience.ProviderHealth
	if h.registry != nil {
		ph = h.registry.GetHealth(name)
	}
	if ph == nil {
		response.NotFound(w, r, fmt.Sprintf("provider %q is not registered", name))
		return
	}

	response.JSON(w, r, http.StatusOK, providerStatus(ph))
}

func providerStatus(ph *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:       ph.Name,
		CircuitBreaker: "disabled",
		Requests:       ph.Counts.Requests,
		Failures:       ph.Counts.TotalFailures,
		LastSuccessAt:  models.TimestampPtr(ph.LastSuccessAt),
		LastFailureAt:  models.TimestampPtr(ph.LastFailureAt),
	}
	if ph.BreakerEnabled {
		ps.CircuitBreaker = ph.CircuitState.String()
	}
	if ph.LastError != "" {
		msg := ph.LastError
		ps.Message = &msg
	}

	switch ph.Status() {
	case resilience.StatusUnhealthy:
		ps.Status = models.HealthStatusFail
	case resilience.StatusDegraded:
		ps.Status = models.HealthStatusDegraded
	default:
		ps.Status = models.HealthStatusOK
	}
	return ps
}

func worse(a, b models.HealthStatus) models.HealthStatus {
	rank := map[models.HealthStatus]int{
		models.HealthStatusOK:       0,
		models.HealthStatusDegraded: 1,
		models.HealthStatusFail:     2,
	}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
