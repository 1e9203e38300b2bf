package notifier

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/agencydesk/crm-sla-sweep/internal/domain"
	"github.com/agencydesk/crm-sla-sweep/internal/testutil"
)

func TestToastNotifierSend(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	n := NewToastNotifier(client)

	event := &domain.NotificationEvent{
		ItemID:   "item-1",
		OwnerID:  "agent-1",
		Kind:     domain.EventReminderDue,
		Severity: domain.SeverityLow,
		Title:    "Call back John Smith",
		FiredAt:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}

	if err := n.Send(ctx, event); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	entries, err := client.LRange(ctx, "notify:toast:agent-1", 0, -1).Result()
	if err != nil {
		t.Fatalf("failed to read feed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 toast, got %d", len(entries))
	}

	var record toastRecord
	if err := json.Unmarshal([]byte(entries[0]), &record); err != nil {
		t.Fatalf("failed to decode toast: %v", err)
	}
	if record.ItemID != "item-1" || record.Kind != string(domain.EventReminderDue) {
		t.Errorf("unexpected toast record: %+v", record)
	}

	ttl, err := client.TTL(ctx, "notify:toast:agent-1").Result()
	if err != nil {
		t.Fatalf("failed to read ttl: %v", err)
	}
	if ttl <= 0 {
		t.Error("expected feed key to expire")
	}
}

func TestToastNotifierFeedIsBounded(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	n := NewToastNotifier(client)

	for i := 0; i < toastFeedLimit+20; i++ {
		event := &domain.NotificationEvent{
			ItemID:  "item-bulk",
			OwnerID: "agent-2",
			Kind:    domain.EventReminderDue,
			FiredAt: time.Now().UTC(),
		}
		if err := n.Send(ctx, event); err != nil {
			t.Fatalf("send %d failed: %v", i, err)
		}
	}

	length, err := client.LLen(ctx, "notify:toast:agent-2").Result()
	if err != nil {
		t.Fatalf("failed to read feed length: %v", err)
	}
	if length != toastFeedLimit {
		t.Errorf("feed length = %d, want %d", length, toastFeedLimit)
	}
}
