package domain

import (
	"time"

	"github.com/google/uuid"
)

// ItemType identifies the business entity a tracked item points back to.
type ItemType string

const (
	ItemTypeClient ItemType = "client"
	ItemTypeLead   ItemType = "lead"
	ItemTypeDeal   ItemType = "deal"
	ItemTypeTask   ItemType = "task"
	ItemTypePolicy ItemType = "policy"
)

func (t ItemType) String() string {
	return string(t)
}

// ItemState is the lifecycle state of a tracked item. Transitions are
// monotonic: pending -> sent/escalated -> dismissed, never backward.
type ItemState string

const (
	StatePending   ItemState = "pending"
	StateSent      ItemState = "sent"
	StateEscalated ItemState = "escalated"
	StateDismissed ItemState = "dismissed"
)

func (s ItemState) String() string {
	return string(s)
}

// Terminal reports whether no further transition is allowed from s.
func (s ItemState) Terminal() bool {
	return s == StateDismissed
}

// CanTransitionTo reports whether s -> to is a legal transition.
func (s ItemState) CanTransitionTo(to ItemState) bool {
	switch s {
	case StatePending:
		return to == StateSent || to == StateEscalated || to == StateDismissed
	case StateSent, StateEscalated:
		return to == StateDismissed
	default:
		return false
	}
}

// TrackedItem is a reminder or SLA-monitored record attached to a CRM
// entity (client, lead, deal, task, policy).
type TrackedItem struct {
	ID         string
	OwnerID    string
	OwnerEmail string
	Type       ItemType
	RefID      string
	Title      string
	Note       string

	// Status is the business status of the referenced entity at the
	// time the item was tracked (e.g. a policy in "sent_to_company").
	// SLA rules key on (Type, Status).
	Status string

	State ItemState

	// DueAt is immutable once set, except through an explicit
	// Reschedule on the repository.
	DueAt time.Time

	StatusEnteredAt time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewTrackedItem(ownerID string, itemType ItemType, refID, title string, dueAt time.Time) *TrackedItem {
	now := time.Now().UTC()
	return &TrackedItem{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		Type:            itemType,
		RefID:           refID,
		Title:           title,
		State:           StatePending,
		DueAt:           dueAt,
		StatusEnteredAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// DueBy reports whether the item's fire time has passed at now.
// Exact equality counts as due.
func (i *TrackedItem) DueBy(now time.Time) bool {
	return !i.DueAt.After(now)
}

// Dwell is the elapsed time the item has remained in its current
// business status.
func (i *TrackedItem) Dwell(now time.Time) time.Duration {
	return now.Sub(i.StatusEnteredAt)
}
