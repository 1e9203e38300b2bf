package notifier

import (
	"context"

	"github.com/agencydesk/crm-sla-sweep/internal/domain"
)

// Notifier delivers one notification event over a single channel.
// Delivery is best-effort: a failed Send is reported to the dispatcher
// but never retried within the same sweep pass.
type Notifier interface {
	Channel() domain.Channel
	Send(ctx context.Context, event *domain.NotificationEvent) error
}
