package cumtd_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/MinhPhan8803/cumtd/pkg/cumtd"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, s := range sr.Ended() {
		if s.Name() == name {
			return s
		}
	}
	require.Failf(t, "span not recorded", "no span named %q", name)
	return nil
}

func TestClient_RecordsSpan(t *testing.T) {
	sr := setupTestTracer(t)
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"routes": []}`)
	})

	_, err := client.QueryRoutes(context.Background(), cumtd.AllRoutes{})
	require.NoError(t, err)

	span := findSpan(t, sr, "cumtd.getroutes")
	assert.Equal(t, codes.Unset, span.Status().Code)

	var endpoint string
	for _, attr := range span.Attributes() {
		if attr.Key == "cumtd.endpoint" {
			endpoint = attr.Value.AsString()
		}
	}
	assert.Equal(t, "getroutes", endpoint)
}

func TestClient_RecordsSpanError(t *testing.T) {
	sr := setupTestTracer(t)
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.QueryRoutes(context.Background(), cumtd.RoutesByStop{StopID: "IT"})
	require.ErrorIs(t, err, cumtd.ErrRequest)

	span := findSpan(t, sr, "cumtd.getroutesbystop")
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "request", span.Status().Description)
}
