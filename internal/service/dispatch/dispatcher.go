package dispatch

import (
	"context"
	"log/slog"

	"github.com/agencydesk/crm-sla-sweep/internal/domain"
	"github.com/agencydesk/crm-sla-sweep/internal/infra/notifier"
	"github.com/agencydesk/crm-sla-sweep/internal/observability/metrics"
)

// Dispatcher fans a notification event out to every configured channel.
// Channel failures are isolated: one channel failing never prevents the
// remaining channels from being attempted.
type Dispatcher struct {
	notifiers []notifier.Notifier
	metrics   *metrics.SweepMetrics
}

func NewDispatcher(notifiers []notifier.Notifier, sweepMetrics *metrics.SweepMetrics) *Dispatcher {
	return &Dispatcher{
		notifiers: notifiers,
		metrics:   sweepMetrics,
	}
}

// Channels returns the channels this dispatcher will attempt.
func (d *Dispatcher) Channels() []domain.Channel {
	channels := make([]domain.Channel, 0, len(d.notifiers))
	for _, n := range d.notifiers {
		channels = append(channels, n.Channel())
	}
	return channels
}

// BeginPass opens a dispatch pass. Duplicate events within the pass,
// keyed by item ID and event kind, are suppressed.
func (d *Dispatcher) BeginPass() *Pass {
	return &Pass{
		dispatcher: d,
		seen:       make(map[string]struct{}),
	}
}

// Pass tracks which events have already been dispatched within one
// sweep pass. It is not safe for concurrent use.
type Pass struct {
	dispatcher *Dispatcher
	seen       map[string]struct{}
}

// Dispatch delivers the event to all channels, recording per-channel
// outcomes. A previously seen event returns immediately with Deduped
// set and no channels attempted.
func (p *Pass) Dispatch(ctx context.Context, event *domain.NotificationEvent) domain.DispatchResult {
	key := event.DedupeKey()
	if _, ok := p.seen[key]; ok {
		slog.DebugContext(ctx, "duplicate event suppressed",
			slog.String("item_id", event.ItemID),
			slog.String("kind", string(event.Kind)),
		)
		return domain.DispatchResult{Deduped: true}
	}
	p.seen[key] = struct{}{}

	var result domain.DispatchResult
	for _, n := range p.dispatcher.notifiers {
		if err := n.Send(ctx, event); err != nil {
			result.Failed = append(result.Failed, domain.ChannelFailure{
				Channel: n.Channel(),
				Reason:  err.Error(),
			})
			if p.dispatcher.metrics != nil {
				p.dispatcher.metrics.RecordDispatchFailure(ctx, n.Channel().String())
			}
			slog.WarnContext(ctx, "channel delivery failed",
				slog.String("item_id", event.ItemID),
				slog.String("channel", n.Channel().String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		result.Delivered = append(result.Delivered, n.Channel())
	}

	if result.Partial() {
		slog.WarnContext(ctx, "partial dispatch",
			slog.String("item_id", event.ItemID),
			slog.Int("delivered", len(result.Delivered)),
			slog.Int("failed", len(result.Failed)),
		)
	}
	return result
}
