package observability

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsCollector records engine and HTTP metrics. A collector built with
// metrics disabled accepts every call and records nothing.
type MetricsCollector struct {
	meter metric.Meter

	translations        metric.Int64Counter
	translationDuration metric.Float64Histogram
	bulkItems           metric.Int64Counter
	auditFailures       metric.Int64Counter
	recommendations     metric.Int64Counter

	httpRequests metric.Int64Counter
	httpDuration metric.Float64Histogram

	provider *sdkmetric.MeterProvider
}

// MetricsConfig configures the metrics collector
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(config MetricsConfig) (*MetricsCollector, error) {
	if !config.Enabled {
		return &MetricsCollector{}, nil
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(instrumentationName)

	collector := &MetricsCollector{meter: meter, provider: provider}
	if collector.translations, err = meter.Int64Counter(
		"goalbridge.translations.total",
		metric.WithDescription("Objectives translated, by target framework and outcome"),
		metric.WithUnit("{objective}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create translations counter: %w", err)
	}
	if collector.translationDuration, err = meter.Float64Histogram(
		"goalbridge.translation.duration",
		metric.WithDescription("Time spent translating one objective"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create translation duration histogram: %w", err)
	}
	if collector.bulkItems, err = meter.Int64Counter(
		"goalbridge.bulk.items.total",
		metric.WithDescription("Items processed by bulk translation, by outcome"),
		metric.WithUnit("{item}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create bulk items counter: %w", err)
	}
	if collector.auditFailures, err = meter.Int64Counter(
		"goalbridge.audit.failures.total",
		metric.WithDescription("Audit writes that failed after retries"),
		metric.WithUnit("{write}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create audit failures counter: %w", err)
	}
	if collector.recommendations, err = meter.Int64Counter(
		"goalbridge.recommendations.total",
		metric.WithDescription("Framework recommendations, by recommended framework"),
		metric.WithUnit("{recommendation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create recommendations counter: %w", err)
	}
	if collector.httpRequests, err = meter.Int64Counter(
		"goalbridge.http.requests.total",
		metric.WithDescription("HTTP requests served"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http requests counter: %w", err)
	}
	if collector.httpDuration, err = meter.Float64Histogram(
		"goalbridge.http.duration",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http duration histogram: %w", err)
	}

	return collector, nil
}

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Shutdown flushes and stops the meter provider.
func (m *MetricsCollector) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// RecordTranslation records one single-objective translation.
func (m *MetricsCollector) RecordTranslation(ctx context.Context, target string, ok bool, duration time.Duration) {
	if m == nil || m.translations == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("target", target), attribute.String("status", outcome(ok)))
	m.translations.Add(ctx, 1, attrs)
	m.translationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("target", target)))
}

// RecordBulk records the outcome counts of one bulk translation.
func (m *MetricsCollector) RecordBulk(ctx context.Context, target string, succeeded, failed int) {
	if m == nil || m.bulkItems == nil {
		return
	}
	m.bulkItems.Add(ctx, int64(succeeded), metric.WithAttributes(attribute.String("target", target), attribute.String("status", "success")))
	m.bulkItems.Add(ctx, int64(failed), metric.WithAttributes(attribute.String("target", target), attribute.String("status", "failure")))
}

// RecordAuditFailure counts an audit write that was dropped.
func (m *MetricsCollector) RecordAuditFailure(ctx context.Context, op string) {
	if m == nil || m.auditFailures == nil {
		return
	}
	m.auditFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

// RecordRecommendation counts a recommendation for framework.
func (m *MetricsCollector) RecordRecommendation(ctx context.Context, framework string) {
	if m == nil || m.recommendations == nil {
		return
	}
	m.recommendations.Add(ctx, 1, metric.WithAttributes(attribute.String("framework", framework)))
}

// RecordHTTPRequest records one served request.
func (m *MetricsCollector) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil || m.httpRequests == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status", strconv.Itoa(status)),
	)
	m.httpRequests.Add(ctx, 1, attrs)
	m.httpDuration.Record(ctx, duration.Seconds(), attrs)
}
