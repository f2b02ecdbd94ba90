package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MinhPhan8803/cumtd/internal/api"
	"github.com/MinhPhan8803/cumtd/internal/api/models"
	"github.com/MinhPhan8803/cumtd/internal/provider/resilience"
	"github.com/MinhPhan8803/cumtd/pkg/cumtd"
)

const stopsBody = `{
  "stops": [
    {
      "stop_id": "IT",
      "stop_name": "Illinois Terminal",
      "code": "MTD3121",
      "stop_points": [
        {"stop_id": "IT:1", "stop_name": "Illinois Terminal (Platform A)", "code": "MTD3121", "stop_lat": 40.1157, "stop_lon": -88.2413}
      ]
    }
  ]
}`

const routesBody = `{
  "routes": [
    {"route_id": "TEAL", "route_short_name": "12", "route_long_name": "Teal", "route_color": "006991", "route_text_color": "ffffff"}
  ]
}`

// upstream fakes the CUMTD API and records the last query string per method.
type upstream struct {
	server  *httptest.Server
	queries map[string]string
	status  int
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{queries: map[string]string{}, status: http.StatusOK}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		u.queries[method] = r.URL.RawQuery
		if u.status != http.StatusOK {
			w.WriteHeader(u.status)
			return
		}
		switch method {
		case "getstop", "getstops", "getstopsbylatlon":
			_, _ = io.WriteString(w, stopsBody)
		case "getroute", "getroutes", "getroutesbystop":
			_, _ = io.WriteString(w, routesBody)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(u.server.Close)
	return u
}

func newTestRouter(t *testing.T, u *upstream, registry *resilience.Registry) http.Handler {
	t.Helper()

	rcfg := resilience.DefaultClientConfig(cumtd.ProviderName)
	rcfg.Registry = registry
	client, err := cumtd.NewClient(cumtd.ClientConfig{
		APIKey:     "k123",
		BaseURL:    u.server.URL,
		HTTPClient: resilience.NewClient(rcfg),
	})
	require.NoError(t, err)

	return api.NewRouter(api.RouterConfig{
		Version:   "test",
		BuildTime: "2024-01-01T00:00:00Z",
		Logger:    zerolog.New(io.Discard),
		Transit:   client,
		Registry:  registry,
	})
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter(t, newUpstream(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.NotEmpty(t, health.Time)
}

func TestRouter_ListStops(t *testing.T) {
	u := newUpstream(t)
	router := newTestRouter(t, u, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/stops?ids=IT:1", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "key=k123&stop_id=IT%3A1", u.queries["getstop"])

	var list models.StopList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "IT:1", list.Items[0].ID)
	assert.Equal(t, "Illinois Terminal", list.Items[0].Location.Name)
}

func TestRouter_NearbyStops(t *testing.T) {
	u := newUpstream(t)
	router := newTestRouter(t, u, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/stops/nearby?lat=40.1&lon=-88.2&count=3", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "key=k123&lat=40.1&lon=-88.2&count=3", u.queries["getstopsbylatlon"])
}

func TestRouter_StopRoutes(t *testing.T) {
	u := newUpstream(t)
	router := newTestRouter(t, u, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/stops/IT/routes", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "key=k123&stop_id=IT", u.queries["getroutesbystop"])

	var list models.RouteList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "TEAL", list.Items[0].ID)
}

func TestRouter_UpstreamFailure(t *testing.T) {
	u := newUpstream(t)
	u.status = http.StatusInternalServerError
	registry := resilience.NewRegistry()
	router := newTestRouter(t, u, registry)

	req := httptest.NewRequest(http.MethodGet, "/v1/routes", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeUpstream, problem.Type)
	assert.Equal(t, w.Header().Get("X-Request-Id"), problem.TraceID)

	req = httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, models.HealthStatusDegraded, status.Status)
	require.Len(t, status.Providers, 1)
	assert.Equal(t, cumtd.ProviderName, status.Providers[0].Provider)

	req = httptest.NewRequest(http.MethodGet, "/v1/ops/status/"+cumtd.ProviderName, http.NoBody)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var provider models.ProviderStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &provider))
	assert.Equal(t, models.HealthStatusDegraded, provider.Status)
}

func TestRouter_RequestID_Generated(t *testing.T) {
	router := newTestRouter(t, newUpstream(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID)
	assert.Contains(t, requestID, "req_")
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	router := newTestRouter(t, newUpstream(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(t, newUpstream(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/nonexistent", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeNotFound, problem.Type)
}

func TestRouter_RejectsWrites(t *testing.T) {
	router := newTestRouter(t, newUpstream(t), nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/stops", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "GET, HEAD, OPTIONS", w.Header().Get("Allow"))
}
