// Package observe holds the OpenTelemetry instruments the engine records
// stroke processing with. Without a configured provider the global no-op
// provider is used, so recording is always safe.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "stenokey"

// Metrics holds the instruments. All fields are safe for concurrent use.
type Metrics struct {
	// StrokeDuration tracks the time from receiving a stroke to the end of
	// its emission. Use with attribute.String("kind", "stroke"|"undo").
	StrokeDuration metric.Float64Histogram

	// Strokes counts processed strokes by kind.
	Strokes metric.Int64Counter

	// Backspaces counts characters erased through the output sink.
	Backspaces metric.Int64Counter

	// TranslationsAdded counts definitions committed to the user dictionary.
	TranslationsAdded metric.Int64Counter

	// HistoryPrunes counts how often the stroke history dropped its oldest
	// entries.
	HistoryPrunes metric.Int64Counter
}

// strokeBuckets are histogram boundaries in seconds. A stroke is expected
// to finish well under a millisecond.
var strokeBuckets = []float64{
	0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05,
}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.StrokeDuration, err = m.Float64Histogram("stenokey.stroke.duration",
		metric.WithDescription("Latency of stroke conversion and emission."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(strokeBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Strokes, err = m.Int64Counter("stenokey.strokes",
		metric.WithDescription("Total strokes processed by kind."),
	); err != nil {
		return nil, err
	}
	if met.Backspaces, err = m.Int64Counter("stenokey.backspaces",
		metric.WithDescription("Total characters erased to correct earlier output."),
	); err != nil {
		return nil, err
	}
	if met.TranslationsAdded, err = m.Int64Counter("stenokey.translations.added",
		metric.WithDescription("Total definitions added to the user dictionary."),
	); err != nil {
		return nil, err
	}
	if met.HistoryPrunes, err = m.Int64Counter("stenokey.history.prunes",
		metric.WithDescription("Total stroke history prunes."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package level instance backed by
// otel.GetMeterProvider.
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

// RecordStroke records one processed stroke of the given kind.
func (m *Metrics) RecordStroke(ctx context.Context, kind string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	m.Strokes.Add(ctx, 1, attrs)
	m.StrokeDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func (m *Metrics) RecordBackspaces(ctx context.Context, n int) {
	if n > 0 {
		m.Backspaces.Add(ctx, int64(n))
	}
}
