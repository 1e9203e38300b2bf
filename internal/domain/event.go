package domain

import "time"

// Channel identifies a notification delivery surface.
type Channel string

const (
	ChannelToast Channel = "toast"
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
)

func (c Channel) String() string {
	return string(c)
}

// EventKind classifies why a notification fired.
type EventKind string

const (
	EventReminderDue   EventKind = "reminder_due"
	EventSLAWarning    EventKind = "sla_warning"
	EventSLAEscalation EventKind = "sla_escalation"
)

// NotificationEvent is one delivery attempt for a due item. Events are
// ephemeral: they exist only for the duration of a dispatch call and
// are used to suppress duplicate delivery within a single sweep pass.
type NotificationEvent struct {
	ItemID     string
	OwnerID    string
	OwnerEmail string
	Kind       EventKind
	Severity   Severity
	Title      string
	Body       string
	FiredAt    time.Time
}

// DedupeKey identifies the logical due event within one sweep pass.
func (e *NotificationEvent) DedupeKey() string {
	return e.ItemID + ":" + string(e.Kind)
}

// ChannelFailure records one channel that failed during a dispatch.
type ChannelFailure struct {
	Channel Channel
	Reason  string
}

// DispatchResult summarizes one best-effort fan-out. A failed channel
// is never retried within the pass; the state commit has already made
// the item ineligible for the next pass, so delivery is attempted at
// most once.
type DispatchResult struct {
	Delivered []Channel
	Failed    []ChannelFailure
	Deduped   bool
}

// Partial reports whether at least one channel failed while others
// succeeded.
func (r *DispatchResult) Partial() bool {
	return len(r.Failed) > 0 && len(r.Delivered) > 0
}

// AllFailed reports whether every attempted channel failed.
func (r *DispatchResult) AllFailed() bool {
	return len(r.Failed) > 0 && len(r.Delivered) == 0
}
