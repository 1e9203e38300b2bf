package rule

import (
	"time"

	"github.com/agencydesk/crm-sla-sweep/internal/domain"
)

// EscalateDwellFactor is the multiple of a rule's max dwell at which a
// breach stops being a warning and becomes an escalation. The severity
// boundary is invisible from the rule data itself, so it lives here as
// a named constant.
const EscalateDwellFactor = 2

// Engine evaluates tracked items against the active SLA rule set. It
// is a pure computation: no I/O, no clock reads.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate decides whether an item breaches its SLA at now. Both
// thresholds are inclusive: dwell equal to the max dwell already
// warns, and dwell equal to EscalateDwellFactor times the max dwell
// already escalates. Items without a matching rule never breach.
func (e *Engine) Evaluate(item *domain.TrackedItem, rules map[domain.RuleKey]domain.SLARule, now time.Time) domain.Outcome {
	dwell := item.Dwell(now)

	rule, ok := rules[domain.RuleKey{Type: item.Type, Status: item.Status}]
	if !ok || rule.MaxDwell <= 0 {
		return domain.Outcome{Action: domain.ActionNone, Dwell: dwell}
	}

	if dwell < rule.MaxDwell {
		return domain.Outcome{Action: domain.ActionNone, Dwell: dwell}
	}

	if dwell < time.Duration(EscalateDwellFactor)*rule.MaxDwell {
		return domain.Outcome{
			Action:   domain.ActionWarn,
			Severity: rule.Severity,
			Dwell:    dwell,
		}
	}

	return domain.Outcome{
		Action:   domain.ActionEscalate,
		Severity: rule.Severity.Escalated(),
		Dwell:    dwell,
	}
}
