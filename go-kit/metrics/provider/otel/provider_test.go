package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, r *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, r.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestProviderRecordsWithMetricAttribute(t *testing.T) {
	r := sdkmetric.NewManualReader()
	p, err := New(context.Background(), "grokstats", WithReader(r), WithNamespace("test"))
	require.NoError(t, err)
	defer p.Stop()

	p.NewCounter("requests").Add(2)
	p.NewCounter("requests").Add(1)
	p.NewHistogram("*", 50).Observe(5)
	p.NewHistogram("viewing_of_my project", 50).Observe(7)
	p.NewGauge("projects").Set(4)

	got := collect(t, r)

	sum, ok := got["test.counter"].Data.(metricdata.Sum[float64])
	require.True(t, ok, "counter data is %T", got["test.counter"].Data)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, 3.0, sum.DataPoints[0].Value)
	v, _ := sum.DataPoints[0].Attributes.Value(attribute.Key(metricKey))
	assert.Equal(t, "requests", v.AsString())

	hist, ok := got["test.timer"].Data.(metricdata.Histogram[float64])
	require.True(t, ok, "timer data is %T", got["test.timer"].Data)
	assert.Len(t, hist.DataPoints, 2)
	assert.Equal(t, "ms", got["test.timer"].Unit)

	gauge, ok := got["test.gauge"].Data.(metricdata.Gauge[float64])
	require.True(t, ok, "gauge data is %T", got["test.gauge"].Data)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, 4.0, gauge.DataPoints[0].Value)
}

func TestGaugeWithIsCached(t *testing.T) {
	r := sdkmetric.NewManualReader()
	p, err := New(context.Background(), "grokstats", WithReader(r))
	require.NoError(t, err)
	defer p.Stop()

	g := p.NewGauge("projects")
	assert.Same(t, g.With("deploy", "eu"), g.With("deploy", "eu"))
}

func TestEmptyEndpoint(t *testing.T) {
	_, err := New(context.Background(), "grokstats", WithGRPCExporter(""))
	assert.ErrorIs(t, err, ErrEndpointNil)
}

func TestMakeAttributes(t *testing.T) {
	attrs := makeAttributes([]string{"metric", "xref", "dangling"})
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.String("dangling", "unknown"), attrs[1])
}
