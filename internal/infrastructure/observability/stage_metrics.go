package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type stageInstruments struct {
	duration        metric.Float64Histogram
	errors          metric.Int64Counter
	knowledgeDenied metric.Int64Counter
	cacheHits       metric.Int64Counter
	cacheMisses     metric.Int64Counter
	cacheErrors     metric.Int64Counter
}

var (
	stageInstrumentsOnce sync.Once
	stageMetrics         *stageInstruments
)

// Instruments are created against whichever MeterProvider is global on first use,
// so Setup must run before the first stage is invoked for metrics to be exported.
func ensureStageInstruments() *stageInstruments {
	stageInstrumentsOnce.Do(func() {
		meter := otel.Meter(instrumentationName)

		duration, err := meter.Float64Histogram(
			"pipeline.stage.duration",
			metric.WithDescription("Pipeline stage duration in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return
		}
		errCount, err := meter.Int64Counter(
			"pipeline.stage.errors",
			metric.WithDescription("Number of failed pipeline stage invocations"),
		)
		if err != nil {
			return
		}
		denied, err := meter.Int64Counter(
			"pipeline.knowledge.denied",
			metric.WithDescription("Knowledge requests redirected to the privacy denial"),
		)
		if err != nil {
			return
		}
		hits, err := meter.Int64Counter(
			"cache.hit.count",
			metric.WithDescription("Number of cache hits"),
		)
		if err != nil {
			return
		}
		misses, err := meter.Int64Counter(
			"cache.miss.count",
			metric.WithDescription("Number of cache misses"),
		)
		if err != nil {
			return
		}
		cacheErrs, err := meter.Int64Counter(
			"cache.error.count",
			metric.WithDescription("Number of cache reads that failed for reasons other than a miss"),
		)
		if err != nil {
			return
		}

		stageMetrics = &stageInstruments{
			duration:        duration,
			errors:          errCount,
			knowledgeDenied: denied,
			cacheHits:       hits,
			cacheMisses:     misses,
			cacheErrors:     cacheErrs,
		}
	})
	return stageMetrics
}

// RecordStage records one stage invocation.
func RecordStage(ctx context.Context, stage string, duration time.Duration, err error) {
	m := ensureStageInstruments()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("pipeline.stage", stage))
	m.duration.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		m.errors.Add(ctx, 1, attrs)
	}
}

// RecordKnowledgeDenied counts a patient-role knowledge request answered with the denial payload.
func RecordKnowledgeDenied(ctx context.Context, classification string) {
	m := ensureStageInstruments()
	if m == nil {
		return
	}
	m.knowledgeDenied.Add(ctx, 1, metric.WithAttributes(attribute.String("pipeline.classification", classification)))
}

// RecordCacheHit records a cache hit
func RecordCacheHit(ctx context.Context, scope string) {
	m := ensureStageInstruments()
	if m == nil {
		return
	}
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.scope", scope)))
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(ctx context.Context, scope string) {
	m := ensureStageInstruments()
	if m == nil {
		return
	}
	m.cacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.scope", scope)))
}

// RecordCacheError records a cache read that failed for a reason other than a miss.
func RecordCacheError(ctx context.Context, scope string) {
	m := ensureStageInstruments()
	if m == nil {
		return
	}
	m.cacheErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.scope", scope)))
}
