package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agencydesk/crm-sla-sweep/internal/domain"
)

const (
	toastFeedKeyPrefix = "notify:toast:"

	toastFeedLimit = 100
	toastFeedTTL   = 72 * time.Hour
)

var ErrInvalidToastData = errors.New("invalid toast data")

type toastRecord struct {
	ItemID   string    `json:"item_id"`
	Kind     string    `json:"kind"`
	Severity string    `json:"severity"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	FiredAt  time.Time `json:"fired_at"`
}

// ToastNotifier pushes events onto a per-owner in-app feed the portal
// polls. The feed is bounded and expires, so an inactive owner never
// accumulates stale toasts.
type ToastNotifier struct {
	client *redis.Client
}

func NewToastNotifier(client *redis.Client) *ToastNotifier {
	return &ToastNotifier{client: client}
}

func (n *ToastNotifier) Channel() domain.Channel {
	return domain.ChannelToast
}

func (n *ToastNotifier) Send(ctx context.Context, event *domain.NotificationEvent) error {
	if event == nil {
		return ErrInvalidToastData
	}

	record := toastRecord{
		ItemID:   event.ItemID,
		Kind:     string(event.Kind),
		Severity: event.Severity.String(),
		Title:    event.Title,
		Body:     event.Body,
		FiredAt:  event.FiredAt,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return ErrInvalidToastData
	}

	key := toastFeedKeyPrefix + event.OwnerID

	pipe := n.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, toastFeedLimit-1)
	pipe.Expire(ctx, key, toastFeedTTL)

	_, err = pipe.Exec(ctx)
	return err
}
