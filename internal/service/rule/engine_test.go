package rule

import (
	"testing"
	"time"

	"github.com/agencydesk/crm-sla-sweep/internal/domain"
)

func TestEngineEvaluateBoundaries(t *testing.T) {
	engine := NewEngine()

	maxDwell := 4 * time.Hour
	rules := map[domain.RuleKey]domain.SLARule{
		{Type: domain.ItemTypePolicy, Status: "sent_to_company"}: {
			Type:     domain.ItemTypePolicy,
			Status:   "sent_to_company",
			MaxDwell: maxDwell,
			Severity: domain.SeverityMedium,
		},
	}

	entered := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	item := &domain.TrackedItem{
		ID:              "item-1",
		Type:            domain.ItemTypePolicy,
		Status:          "sent_to_company",
		State:           domain.StatePending,
		StatusEnteredAt: entered,
	}

	tests := []struct {
		name         string
		dwell        time.Duration
		wantAction   domain.Action
		wantSeverity domain.Severity
	}{
		{
			name:       "below threshold",
			dwell:      maxDwell - time.Second,
			wantAction: domain.ActionNone,
		},
		{
			name:         "exactly at threshold warns (inclusive)",
			dwell:        maxDwell,
			wantAction:   domain.ActionWarn,
			wantSeverity: domain.SeverityMedium,
		},
		{
			name:         "between thresholds warns",
			dwell:        maxDwell + time.Hour,
			wantAction:   domain.ActionWarn,
			wantSeverity: domain.SeverityMedium,
		},
		{
			name:         "just below double threshold still warns",
			dwell:        2*maxDwell - time.Second,
			wantAction:   domain.ActionWarn,
			wantSeverity: domain.SeverityMedium,
		},
		{
			name:         "exactly at double threshold escalates (inclusive)",
			dwell:        2 * maxDwell,
			wantAction:   domain.ActionEscalate,
			wantSeverity: domain.SeverityHigh,
		},
		{
			name:         "far beyond double threshold escalates",
			dwell:        10 * maxDwell,
			wantAction:   domain.ActionEscalate,
			wantSeverity: domain.SeverityHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := engine.Evaluate(item, rules, entered.Add(tt.dwell))

			if outcome.Action != tt.wantAction {
				t.Errorf("action = %s, want %s", outcome.Action, tt.wantAction)
			}
			if tt.wantAction != domain.ActionNone && outcome.Severity != tt.wantSeverity {
				t.Errorf("severity = %s, want %s", outcome.Severity, tt.wantSeverity)
			}
			if outcome.Dwell != tt.dwell {
				t.Errorf("dwell = %v, want %v", outcome.Dwell, tt.dwell)
			}
		})
	}
}

func TestEngineEvaluateNoRule(t *testing.T) {
	engine := NewEngine()

	item := &domain.TrackedItem{
		ID:              "item-2",
		Type:            domain.ItemTypeLead,
		Status:          "new",
		StatusEnteredAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}

	outcome := engine.Evaluate(item, map[domain.RuleKey]domain.SLARule{}, item.StatusEnteredAt.Add(100*time.Hour))
	if outcome.Action != domain.ActionNone {
		t.Errorf("action = %s, want %s for unruled item", outcome.Action, domain.ActionNone)
	}
}

func TestEngineEvaluateRuleKeyMismatch(t *testing.T) {
	engine := NewEngine()

	rules := map[domain.RuleKey]domain.SLARule{
		{Type: domain.ItemTypeLead, Status: "contacted"}: {
			Type:     domain.ItemTypeLead,
			Status:   "contacted",
			MaxDwell: time.Hour,
			Severity: domain.SeverityLow,
		},
	}

	// Same type, different status: the rule must not apply.
	item := &domain.TrackedItem{
		ID:              "item-3",
		Type:            domain.ItemTypeLead,
		Status:          "new",
		StatusEnteredAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}

	outcome := engine.Evaluate(item, rules, item.StatusEnteredAt.Add(48*time.Hour))
	if outcome.Action != domain.ActionNone {
		t.Errorf("action = %s, want %s when no rule matches (type, status)", outcome.Action, domain.ActionNone)
	}
}

func TestEscalateSeverityCapsAtCritical(t *testing.T) {
	engine := NewEngine()

	rules := map[domain.RuleKey]domain.SLARule{
		{Type: domain.ItemTypeDeal, Status: "stalled"}: {
			Type:     domain.ItemTypeDeal,
			Status:   "stalled",
			MaxDwell: time.Hour,
			Severity: domain.SeverityCritical,
		},
	}

	item := &domain.TrackedItem{
		ID:              "item-4",
		Type:            domain.ItemTypeDeal,
		Status:          "stalled",
		StatusEnteredAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}

	outcome := engine.Evaluate(item, rules, item.StatusEnteredAt.Add(3*time.Hour))
	if outcome.Action != domain.ActionEscalate {
		t.Fatalf("action = %s, want %s", outcome.Action, domain.ActionEscalate)
	}
	if outcome.Severity != domain.SeverityCritical {
		t.Errorf("severity = %s, want %s (capped)", outcome.Severity, domain.SeverityCritical)
	}
}
