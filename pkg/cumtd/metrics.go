package cumtd

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/MinhPhan8803/cumtd/pkg/cumtd"

// clientMetrics holds the instruments recorded for every query.
type clientMetrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

func newClientMetrics() (*clientMetrics, error) {
	meter := otel.Meter(meterName)

	requestDuration, err := meter.Float64Histogram(
		"cumtd.request.duration",
		metric.WithDescription("Duration of CUMTD API queries in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"cumtd.request.total",
		metric.WithDescription("Total number of CUMTD API queries"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &clientMetrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

func (m *clientMetrics) record(ctx context.Context, endpoint string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("cumtd.endpoint", endpoint),
	}
	if err != nil {
		attrs = append(attrs,
			attribute.Bool("error", true),
			attribute.String("error.kind", errorKind(err).String()),
		)
	}

	// A cancelled query context must not drop the measurement.
	ctx = context.WithoutCancel(ctx)
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}
