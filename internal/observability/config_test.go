package observability

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
	assert.True(t, config.Metrics.Enabled)
	assert.False(t, config.Tracing.Enabled)
	assert.Equal(t, "otlp", config.Tracing.Exporter)
	assert.Equal(t, 1.0, config.Tracing.SampleRate)
}

func TestNormalizeFillsBlanks(t *testing.T) {
	config := Config{Tracing: TracingConfig{SampleRate: 3}}.Normalize()

	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, 1.0, config.Tracing.SampleRate)
	assert.Equal(t, "goalbridge", config.Tracing.ServiceName)

	kept := Config{Logging: LoggingConfig{Level: "debug"}, Tracing: TracingConfig{SampleRate: 0.25}}.Normalize()
	assert.Equal(t, "debug", kept.Logging.Level)
	assert.Equal(t, 0.25, kept.Tracing.SampleRate)
}

func TestDisabledCollectorsAreNoops(t *testing.T) {
	collector, err := NewMetricsCollector(MetricsConfig{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		collector.RecordTranslation(ctx, "okr", true, time.Millisecond)
		collector.RecordBulk(ctx, "okr", 2, 1)
		collector.RecordAuditFailure(ctx, "record_translation")
		collector.RecordRecommendation(ctx, "eos")
		collector.RecordHTTPRequest(ctx, "GET", "/health", 200, time.Millisecond)
	})

	var nilCollector *MetricsCollector
	assert.NotPanics(t, func() { nilCollector.RecordTranslation(ctx, "okr", false, 0) })
	assert.NoError(t, nilCollector.Shutdown(ctx))

	tracer, err := NewTracerProvider(TracingConfig{Enabled: false})
	require.NoError(t, err)
	_, span := tracer.StartSpan(ContextWithRequestID(ctx, "req-1"), SpanTranslate)
	span.End()
	assert.NoError(t, tracer.Shutdown(ctx))
}

func TestEnabledCollectorShutsDownProvider(t *testing.T) {
	collector, err := NewMetricsCollector(MetricsConfig{Enabled: true})
	require.NoError(t, err)
	require.NotNil(t, collector.provider)

	ctx := context.Background()
	collector.RecordTranslation(ctx, "okr", true, time.Millisecond)
	require.NoError(t, collector.Shutdown(ctx))
	assert.Error(t, collector.Shutdown(ctx), "provider is already shut down")
}

func TestUnsupportedExporterFails(t *testing.T) {
	_, err := NewTracerProvider(TracingConfig{Enabled: true, Exporter: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestPoolMetricsCountEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPoolMetricsWithRegisterer(reg)

	metrics.RecordHit()
	metrics.RecordHit()
	metrics.RecordMiss()
	metrics.SetSize(3)

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, family := range families {
		for _, m := range family.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[family.GetName()] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[family.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	assert.Equal(t, 2.0, values["goalbridge_engine_pool_hit_total"])
	assert.Equal(t, 1.0, values["goalbridge_engine_pool_miss_total"])
	assert.Equal(t, 3.0, values["goalbridge_engine_pool_size"])

	var nilMetrics *PoolMetrics
	assert.NotPanics(t, nilMetrics.RecordEviction)
}

func TestLoggerAddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "info", Format: "json", Output: &buf})

	ctx := ContextWithOrganizationID(ContextWithRequestID(context.Background(), "req-9"), "org-1")
	logger.InfoContext(ctx, "translated")
	logger.Component("engine").Info("pool size %d", 4)

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-9"`)
	assert.Contains(t, out, `"organization_id":"org-1"`)
	assert.Contains(t, out, `"component":"engine"`)
	assert.Contains(t, out, "pool size 4")
}
