// Package observe provides the service's OpenTelemetry metrics and the
// Prometheus bridge that exposes them on /metrics.
//
// Components receive a *Metrics explicitly. Tests build one with
// [NewMetrics] over a ManualReader or a noop provider.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/nikhilbhutani/kidspeak"

// Metrics holds every instrument the service records.
type Metrics struct {
	// ScoringRequests counts scored attempts. Attributes: mode, language,
	// difficulty, correct.
	ScoringRequests metric.Int64Counter

	// Scores records the final 0-100 score of each attempt.
	Scores metric.Int64Histogram

	// FeedbackFallbacks counts attempts answered with the fixed fallback.
	// Attributes: mode, reason.
	FeedbackFallbacks metric.Int64Counter

	// LLMDuration tracks structured completion latency. Attributes:
	// provider, status.
	LLMDuration metric.Float64Histogram

	// TTSDuration tracks speech synthesis latency. Attribute: cache.
	TTSDuration metric.Float64Histogram

	// AttemptsRecorded counts attempt:record outcomes. Attribute: status.
	AttemptsRecorded metric.Int64Counter

	// HTTPRequestDuration tracks request latency. Attributes: method,
	// route, status.
	HTTPRequestDuration metric.Float64Histogram
}

var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30,
}

var scoreBuckets = []float64{
	10, 20, 30, 40, 50, 60, 70, 80, 90, 100,
}

// NewMetrics creates every instrument on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ScoringRequests, err = m.Int64Counter("kidspeak.scoring.requests",
		metric.WithDescription("Scored attempts by mode, language, difficulty and correctness."),
	); err != nil {
		return nil, err
	}
	if met.Scores, err = m.Int64Histogram("kidspeak.scoring.score",
		metric.WithDescription("Distribution of final attempt scores."),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FeedbackFallbacks, err = m.Int64Counter("kidspeak.feedback.fallbacks",
		metric.WithDescription("Attempts answered with the fixed fallback feedback, by mode and reason."),
	); err != nil {
		return nil, err
	}
	if met.LLMDuration, err = m.Float64Histogram("kidspeak.llm.duration",
		metric.WithDescription("Latency of structured feedback completions."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TTSDuration, err = m.Float64Histogram("kidspeak.tts.duration",
		metric.WithDescription("Latency of text-to-speech requests, cached or synthesized."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.AttemptsRecorded, err = m.Int64Counter("kidspeak.attempts.recorded",
		metric.WithDescription("Attempt recording outcomes by status."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("kidspeak.http.request.duration",
		metric.WithDescription("HTTP request latency by method, route and status."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a process-wide instance built on the global meter
// provider. Call it after [InitProvider].
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

// RecordScore records one scored attempt.
func (m *Metrics) RecordScore(ctx context.Context, mode, language, difficulty string, score int, correct bool) {
	attrs := metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("language", language),
		attribute.String("difficulty", difficulty),
		attribute.Bool("correct", correct),
	)
	m.ScoringRequests.Add(ctx, 1, attrs)
	m.Scores.Record(ctx, int64(score), attrs)
}

// RecordFallback records an attempt answered with fallback feedback.
func (m *Metrics) RecordFallback(ctx context.Context, mode, reason string) {
	m.FeedbackFallbacks.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("mode", mode),
			attribute.String("reason", reason),
		),
	)
}

// RecordLLM records the latency of one structured completion.
func (m *Metrics) RecordLLM(ctx context.Context, provider, status string, d time.Duration) {
	m.LLMDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("status", status),
		),
	)
}

// RecordTTS records one TTS request; cache is "hit", "miss" or "bypass".
func (m *Metrics) RecordTTS(ctx context.Context, cache string, d time.Duration) {
	m.TTSDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("cache", cache)),
	)
}

// RecordAttempt records the outcome of persisting one attempt.
func (m *Metrics) RecordAttempt(ctx context.Context, status string) {
	m.AttemptsRecorded.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}
