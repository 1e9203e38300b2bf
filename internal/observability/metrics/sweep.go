package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const sweepMeterName = "sweep.service"

type SweepMetrics struct {
	itemsProcessed   metric.Int64Counter
	commitConflicts  metric.Int64Counter
	dispatchFailures metric.Int64Counter
	sweepDuration    metric.Float64Histogram
}

func NewSweepMetrics() (*SweepMetrics, error) {
	meter := otel.Meter(sweepMeterName)

	itemsProcessed, err := meter.Int64Counter(
		"sweep_items_total",
		metric.WithDescription("Total number of due items processed"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, err
	}

	commitConflicts, err := meter.Int64Counter(
		"sweep_commit_conflicts_total",
		metric.WithDescription("Compare-and-set commits lost to a concurrent sweep"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, err
	}

	dispatchFailures, err := meter.Int64Counter(
		"sweep_dispatch_failures_total",
		metric.WithDescription("Notification channel deliveries that failed"),
		metric.WithUnit("{delivery}"),
	)
	if err != nil {
		return nil, err
	}

	sweepDuration, err := meter.Float64Histogram(
		"sweep_pass_duration_seconds",
		metric.WithDescription("Full sweep pass duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
		),
	)
	if err != nil {
		return nil, err
	}

	return &SweepMetrics{
		itemsProcessed:   itemsProcessed,
		commitConflicts:  commitConflicts,
		dispatchFailures: dispatchFailures,
		sweepDuration:    sweepDuration,
	}, nil
}

func (m *SweepMetrics) RecordItemProcessed(ctx context.Context, itemType, outcome string) {
	m.itemsProcessed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("item_type", itemType),
		attribute.String("outcome", outcome),
	))
}

func (m *SweepMetrics) RecordCommitConflict(ctx context.Context, itemType string) {
	m.commitConflicts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("item_type", itemType),
	))
}

func (m *SweepMetrics) RecordDispatchFailure(ctx context.Context, channel string) {
	m.dispatchFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", channel),
	))
}

func (m *SweepMetrics) RecordSweepDuration(ctx context.Context, duration time.Duration) {
	m.sweepDuration.Record(ctx, duration.Seconds())
}
