package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agencydesk/crm-sla-sweep/internal/domain"
	"github.com/agencydesk/crm-sla-sweep/internal/infra/pushqueue"
)

// PushNotifier hands the event to the browser-push delivery queue.
// The queue performs the actual platform delivery; a permission-denied
// browser simply never receives the task payload, which matches the
// at-most-once-attempted policy.
type PushNotifier struct {
	queue pushqueue.Queue
}

func NewPushNotifier(queue pushqueue.Queue) *PushNotifier {
	return &PushNotifier{queue: queue}
}

func (n *PushNotifier) Channel() domain.Channel {
	return domain.ChannelPush
}

func (n *PushNotifier) Send(ctx context.Context, event *domain.NotificationEvent) error {
	task := &pushqueue.PushTask{
		ItemID:   event.ItemID,
		OwnerID:  event.OwnerID,
		Kind:     string(event.Kind),
		Severity: event.Severity.String(),
		Title:    event.Title,
		Body:     event.Body,
	}

	resp, err := n.queue.Register(ctx, task)
	if err != nil {
		return fmt.Errorf("push registration failed: %w", err)
	}

	slog.DebugContext(ctx, "push notification registered",
		slog.String("item_id", event.ItemID),
		slog.String("task_name", resp.Name),
	)
	return nil
}
