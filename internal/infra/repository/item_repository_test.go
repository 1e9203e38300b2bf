package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agencydesk/crm-sla-sweep/internal/domain"
	"github.com/agencydesk/crm-sla-sweep/internal/testutil"
)

func insertPending(ctx context.Context, t *testing.T, repo domain.ItemRepository, id string, dueAt time.Time) *domain.TrackedItem {
	t.Helper()

	item := domain.NewTrackedItem("agent-1", domain.ItemTypeLead, "lead-"+id, "follow up "+id, dueAt)
	item.ID = id
	if err := repo.Insert(ctx, item); err != nil {
		t.Fatalf("failed to insert test item: %v", err)
	}
	return item
}

func TestListDue(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	db, cleanup := testutil.SetupMongoContainer(ctx, t)
	defer cleanup()

	repo := NewItemRepository(db, 100)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	insertPending(ctx, t, repo, "due-past", now.Add(-time.Hour))
	insertPending(ctx, t, repo, "due-exact", now)
	insertPending(ctx, t, repo, "not-due", now.Add(time.Hour))

	sent := insertPending(ctx, t, repo, "already-sent", now.Add(-time.Hour))
	if err := repo.CommitState(ctx, sent.ID, domain.StatePending, domain.StateSent); err != nil {
		t.Fatalf("failed to transition setup item: %v", err)
	}

	dismissed := insertPending(ctx, t, repo, "dismissed", now.Add(-time.Hour))
	if err := repo.Dismiss(ctx, dismissed.ID); err != nil {
		t.Fatalf("failed to dismiss setup item: %v", err)
	}

	items, err := repo.ListDue(ctx, now, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := make(map[string]bool, len(items))
	for _, item := range items {
		got[item.ID] = true
	}

	if len(items) != 2 {
		t.Errorf("expected 2 due items, got %d (%v)", len(items), got)
	}
	if !got["due-past"] || !got["due-exact"] {
		t.Errorf("expected due-past and due-exact, got %v", got)
	}
	if got["already-sent"] || got["dismissed"] || got["not-due"] {
		t.Errorf("terminal or future items leaked into due list: %v", got)
	}
}

func TestListDueOwnerFilter(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	db, cleanup := testutil.SetupMongoContainer(ctx, t)
	defer cleanup()

	repo := NewItemRepository(db, 100)
	now := time.Now().UTC()

	mine := domain.NewTrackedItem("agent-a", domain.ItemTypeTask, "task-1", "mine", now.Add(-time.Minute))
	other := domain.NewTrackedItem("agent-b", domain.ItemTypeTask, "task-2", "other", now.Add(-time.Minute))
	for _, item := range []*domain.TrackedItem{mine, other} {
		if err := repo.Insert(ctx, item); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}
	}

	items, err := repo.ListDue(ctx, now, "agent-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].OwnerID != "agent-a" {
		t.Errorf("owner filter returned wrong items: %+v", items)
	}
}

func TestCommitStateCompareAndSet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	db, cleanup := testutil.SetupMongoContainer(ctx, t)
	defer cleanup()

	repo := NewItemRepository(db, 100)
	item := insertPending(ctx, t, repo, "cas-1", time.Now().UTC())

	if err := repo.CommitState(ctx, item.ID, domain.StatePending, domain.StateSent); err != nil {
		t.Fatalf("first commit should win: %v", err)
	}

	// Second writer still believes the item is pending.
	err := repo.CommitState(ctx, item.ID, domain.StatePending, domain.StateSent)
	if !errors.Is(err, domain.ErrStateConflict) {
		t.Errorf("expected ErrStateConflict, got %v", err)
	}

	got, err := repo.Get(ctx, item.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.State != domain.StateSent {
		t.Errorf("state = %s, want %s", got.State, domain.StateSent)
	}
}

func TestCommitStateRejectsBackwardTransition(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	db, cleanup := testutil.SetupMongoContainer(ctx, t)
	defer cleanup()

	repo := NewItemRepository(db, 100)
	item := insertPending(ctx, t, repo, "mono-1", time.Now().UTC())

	if err := repo.CommitState(ctx, item.ID, domain.StatePending, domain.StateSent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := repo.CommitState(ctx, item.ID, domain.StateSent, domain.StatePending)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCommitStateNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	db, cleanup := testutil.SetupMongoContainer(ctx, t)
	defer cleanup()

	repo := NewItemRepository(db, 100)

	err := repo.CommitState(ctx, "no-such-item", domain.StatePending, domain.StateSent)
	if !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestDismissFromSent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	db, cleanup := testutil.SetupMongoContainer(ctx, t)
	defer cleanup()

	repo := NewItemRepository(db, 100)
	now := time.Now().UTC()
	item := insertPending(ctx, t, repo, "dismiss-1", now.Add(-time.Minute))

	if err := repo.CommitState(ctx, item.ID, domain.StatePending, domain.StateSent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Dismiss(ctx, item.ID); err != nil {
		t.Fatalf("dismiss failed: %v", err)
	}

	// Dismissed items never re-list as due.
	items, err := repo.ListDue(ctx, now.Add(time.Hour), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, listed := range items {
		if listed.ID == item.ID {
			t.Error("dismissed item re-listed as due")
		}
	}

	// Double dismissal is a conflict, not a success.
	err = repo.Dismiss(ctx, item.ID)
	if !errors.Is(err, domain.ErrStateConflict) {
		t.Errorf("expected ErrStateConflict on second dismiss, got %v", err)
	}
}

func TestReschedule(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	db, cleanup := testutil.SetupMongoContainer(ctx, t)
	defer cleanup()

	repo := NewItemRepository(db, 100)
	now := time.Now().UTC().Truncate(time.Millisecond)
	item := insertPending(ctx, t, repo, "resched-1", now.Add(-time.Minute))

	if err := repo.CommitState(ctx, item.ID, domain.StatePending, domain.StateSent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newDue := now.Add(2 * time.Hour)
	if err := repo.Reschedule(ctx, item.ID, newDue); err != nil {
		t.Fatalf("reschedule failed: %v", err)
	}

	got, err := repo.Get(ctx, item.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.State != domain.StatePending {
		t.Errorf("rescheduled state = %s, want %s", got.State, domain.StatePending)
	}
	if !got.DueAt.Equal(newDue) {
		t.Errorf("due = %v, want %v", got.DueAt, newDue)
	}
}

func TestRuleRepositoryUpsertAndList(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	db, cleanup := testutil.SetupMongoContainer(ctx, t)
	defer cleanup()

	if err := EnsureRuleIndexes(ctx, db); err != nil {
		t.Fatalf("failed to ensure indexes: %v", err)
	}

	repo := NewRuleRepository(db)

	rule := &domain.SLARule{
		Type:     domain.ItemTypePolicy,
		Status:   "sent_to_company",
		MaxDwell: 48 * time.Hour,
		Severity: domain.SeverityMedium,
	}
	if err := repo.Upsert(ctx, rule); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	// Upsert on the same key replaces, never duplicates.
	rule.MaxDwell = 24 * time.Hour
	if err := repo.Upsert(ctx, rule); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	rules, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	got, ok := rules[rule.Key()]
	if !ok {
		t.Fatalf("rule missing for key %+v", rule.Key())
	}
	if got.MaxDwell != 24*time.Hour {
		t.Errorf("max dwell = %v, want %v", got.MaxDwell, 24*time.Hour)
	}
	if got.Severity != domain.SeverityMedium {
		t.Errorf("severity = %v, want %v", got.Severity, domain.SeverityMedium)
	}
}
