package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/spanlight/spanlight/pkg/observability"
)

func setupTestMeter(t *testing.T) (*observability.REDMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	red, err := observability.NewREDMetrics(meter)
	require.NoError(t, err)

	return red, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func TestREDMetrics_RecordRequest(t *testing.T) {
	t.Parallel()
	red, reader := setupTestMeter(t)
	ctx := context.Background()

	red.RecordRequest(ctx, "classify", "ok", time.Millisecond*100)

	rm := collectMetrics(t, reader)

	reqTotal := findMetric(rm, "spanlight.requests.total")
	require.NotNil(t, reqTotal, "spanlight.requests.total metric not found")

	reqDuration := findMetric(rm, "spanlight.request.duration.seconds")
	require.NotNil(t, reqDuration, "spanlight.request.duration.seconds metric not found")
}

func TestREDMetrics_RecordRequestError(t *testing.T) {
	t.Parallel()
	red, reader := setupTestMeter(t)
	ctx := context.Background()

	red.RecordRequest(ctx, "format", "error", time.Second)

	rm := collectMetrics(t, reader)

	errTotal := findMetric(rm, "spanlight.errors.total")
	require.NotNil(t, errTotal, "spanlight.errors.total metric not found")
}

func TestREDMetrics_TrackInflight(t *testing.T) {
	t.Parallel()
	red, reader := setupTestMeter(t)
	ctx := context.Background()

	done := red.TrackInflight(ctx, "classify")

	rm := collectMetrics(t, reader)

	inflight := findMetric(rm, "spanlight.inflight.requests")
	require.NotNil(t, inflight, "spanlight.inflight.requests metric not found")

	done()

	rm = collectMetrics(t, reader)
	inflight = findMetric(rm, "spanlight.inflight.requests")
	require.NotNil(t, inflight)
}

func TestNewREDMetrics_WithNoopMeter(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	red, err := observability.NewREDMetrics(providers.Meter)
	require.NoError(t, err)
	assert.NotNil(t, red)

	// Should not panic on recording.
	red.RecordRequest(context.Background(), "test", "ok", time.Millisecond)
}

func TestClassifyMetrics_RecordFile(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	cm, err := observability.NewClassifyMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	cm.RecordFile(ctx, "go", 2048, 37, time.Millisecond*5)
	cm.RecordParseFailure(ctx, "ruby")

	rm := collectMetrics(t, reader)

	require.NotNil(t, findMetric(rm, "spanlight.classify.files.total"))
	require.NotNil(t, findMetric(rm, "spanlight.classify.bytes.total"))
	require.NotNil(t, findMetric(rm, "spanlight.classify.annotations.total"))
	require.NotNil(t, findMetric(rm, "spanlight.classify.parse_failures.total"))
	require.NotNil(t, findMetric(rm, "spanlight.classify.file.duration.seconds"))
}

func TestClassifyMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var cm *observability.ClassifyMetrics

	// Nil metrics are a supported no-op for callers that skip telemetry.
	cm.RecordFile(context.Background(), "go", 1, 1, time.Millisecond)
	cm.RecordParseFailure(context.Background(), "go")
}
