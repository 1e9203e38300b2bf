package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=item_repository.go -destination=item_repository_mock.go -package=domain

// ItemRepository is the persisted store of tracked items. ListDue is
// read-only; all writes are single-document compare-and-set updates.
type ItemRepository interface {
	// ListDue returns items with DueAt <= now that are still pending.
	// ownerID narrows the scan to one owner when non-empty. Items in a
	// terminal state are never returned.
	ListDue(ctx context.Context, now time.Time, ownerID string) ([]*TrackedItem, error)

	Get(ctx context.Context, id string) (*TrackedItem, error)
	Insert(ctx context.Context, item *TrackedItem) error

	// CommitState writes the from -> to transition only if the stored
	// state still equals from. Returns ErrStateConflict when another
	// writer got there first.
	CommitState(ctx context.Context, id string, from, to ItemState) error

	// Dismiss retires an item from any non-terminal state.
	Dismiss(ctx context.Context, id string) error

	// Reschedule is the only permitted mutation of DueAt. The item
	// returns to pending so the new fire time is honored.
	Reschedule(ctx context.Context, id string, dueAt time.Time) error
}

// RuleRepository stores the active SLA rule set, keyed uniquely by
// (item type, business status).
type RuleRepository interface {
	ListActive(ctx context.Context) (map[RuleKey]SLARule, error)
	Upsert(ctx context.Context, rule *SLARule) error
}
