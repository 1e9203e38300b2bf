package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const sweepTracerName = "github.com/agencydesk/crm-sla-sweep/internal/service/sweep"

func SweepTracer() trace.Tracer {
	return otel.Tracer(sweepTracerName)
}

func StartSweepPassSpan(ctx context.Context, now time.Time, runID string) (context.Context, trace.Span) {
	return SweepTracer().Start(ctx, "sweep.pass",
		trace.WithAttributes(
			attribute.String("sweep.now", now.Format(time.RFC3339)),
			attribute.String("sweep.run_id", runID),
		),
	)
}

func StartCommitSpan(ctx context.Context, itemID, from, to string) (context.Context, trace.Span) {
	return SweepTracer().Start(ctx, "sweep.commit_state",
		trace.WithAttributes(
			attribute.String("item_id", itemID),
			attribute.String("state.from", from),
			attribute.String("state.to", to),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func StartDispatchSpan(ctx context.Context, itemID, kind string) (context.Context, trace.Span) {
	return SweepTracer().Start(ctx, "sweep.dispatch",
		trace.WithAttributes(
			attribute.String("item_id", itemID),
			attribute.String("event.kind", kind),
		),
	)
}

func RecordSweepPassResult(span trace.Span, due, sent, escalated, conflicts, dispatchFailures int, err error) {
	span.SetAttributes(
		attribute.Int("sweep.due_count", due),
		attribute.Int("sweep.sent_count", sent),
		attribute.Int("sweep.escalated_count", escalated),
		attribute.Int("sweep.conflict_count", conflicts),
		attribute.Int("sweep.dispatch_failures", dispatchFailures),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
