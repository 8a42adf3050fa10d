// Package observe provides application-wide observability primitives for
// Orato: OpenTelemetry metrics, distributed tracing, structured logging, and
// HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Orato metrics.
const meterName = "github.com/MrWong99/orato"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// PreprocessDuration tracks audio decoding and normalization latency.
	PreprocessDuration metric.Float64Histogram

	// TranscribeDuration tracks speech-to-text transcription latency.
	TranscribeDuration metric.Float64Histogram

	// FeatureDuration tracks audio feature extraction latency.
	FeatureDuration metric.Float64Histogram

	// EvaluateDuration tracks metric evaluation and aggregation latency.
	EvaluateDuration metric.Float64Histogram

	// JobDuration tracks end-to-end pipeline latency per job.
	JobDuration metric.Float64Histogram

	// --- Counters ---

	// JobsSubmitted counts accepted evaluation jobs.
	JobsSubmitted metric.Int64Counter

	// JobsFinished counts terminal jobs. Use with attribute:
	//   attribute.String("status", ...)
	JobsFinished metric.Int64Counter

	// MetricFailures counts isolated evaluator failures that degraded a
	// single metric. Use with attribute:
	//   attribute.String("metric", ...)
	MetricFailures metric.Int64Counter

	// StoreErrors counts failed result archive writes.
	StoreErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveJobs tracks the number of jobs currently in a non-terminal state.
	ActiveJobs metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// speech-pipeline latencies, which run from milliseconds for preprocessing up
// to tens of seconds for transcription of long recordings.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.PreprocessDuration, err = m.Float64Histogram("orato.preprocess.duration",
		metric.WithDescription("Latency of audio decoding and normalization."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranscribeDuration, err = m.Float64Histogram("orato.transcribe.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FeatureDuration, err = m.Float64Histogram("orato.features.duration",
		metric.WithDescription("Latency of audio feature extraction."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.EvaluateDuration, err = m.Float64Histogram("orato.evaluate.duration",
		metric.WithDescription("Latency of metric evaluation and aggregation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.JobDuration, err = m.Float64Histogram("orato.job.duration",
		metric.WithDescription("End-to-end pipeline latency per job."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.JobsSubmitted, err = m.Int64Counter("orato.jobs.submitted",
		metric.WithDescription("Total accepted evaluation jobs."),
	); err != nil {
		return nil, err
	}
	if met.JobsFinished, err = m.Int64Counter("orato.jobs.finished",
		metric.WithDescription("Total terminal jobs by status."),
	); err != nil {
		return nil, err
	}
	if met.MetricFailures, err = m.Int64Counter("orato.metric.failures",
		metric.WithDescription("Total isolated evaluator failures by metric."),
	); err != nil {
		return nil, err
	}
	if met.StoreErrors, err = m.Int64Counter("orato.store.errors",
		metric.WithDescription("Total failed result archive writes."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveJobs, err = m.Int64UpDownCounter("orato.active_jobs",
		metric.WithDescription("Number of jobs currently in a non-terminal state."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("orato.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordJobSubmitted records an accepted submission with its age group.
func (m *Metrics) RecordJobSubmitted(ctx context.Context, ageGroup string) {
	m.JobsSubmitted.Add(ctx, 1,
		metric.WithAttributes(attribute.String("age_group", ageGroup)),
	)
}

// RecordJobFinished records a terminal job with its final status.
func (m *Metrics) RecordJobFinished(ctx context.Context, status string) {
	m.JobsFinished.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordMetricFailure records an isolated evaluator failure.
func (m *Metrics) RecordMetricFailure(ctx context.Context, metricID string) {
	m.MetricFailures.Add(ctx, 1,
		metric.WithAttributes(attribute.String("metric", metricID)),
	)
}
