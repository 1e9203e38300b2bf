package domain

import "time"

// Severity is the escalation level attached to an SLA rule.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Escalated returns the next severity level, capped at critical.
func (s Severity) Escalated() Severity {
	if s >= SeverityCritical {
		return SeverityCritical
	}
	return s + 1
}

// RuleKey uniquely identifies an SLA rule. At most one active rule
// exists per (item type, business status) pair.
type RuleKey struct {
	Type   ItemType
	Status string
}

// SLARule bounds how long an item may dwell in a business status
// before a breach is flagged.
type SLARule struct {
	Type     ItemType
	Status   string
	MaxDwell time.Duration
	Severity Severity
}

func (r *SLARule) Key() RuleKey {
	return RuleKey{Type: r.Type, Status: r.Status}
}

// Action is the rule engine's decision for one item.
type Action string

const (
	ActionNone     Action = "no_action"
	ActionWarn     Action = "warn"
	ActionEscalate Action = "escalate"
)

// Outcome is the result of evaluating one item against the active
// rule set.
type Outcome struct {
	Action   Action
	Severity Severity
	Dwell    time.Duration
}
