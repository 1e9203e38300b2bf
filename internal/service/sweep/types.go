package sweep

import (
	"time"

	"github.com/agencydesk/crm-sla-sweep/internal/domain"
)

// Result summarizes one sweep pass.
type Result struct {
	RunID   string
	SweepAt time.Time

	Due              int
	Sent             int
	Warned           int
	Escalated        int
	Conflicts        int
	CommitFailures   int
	DispatchFailures int

	Items []ItemResult
}

// ItemResult is the per-item outcome of a pass.
type ItemResult struct {
	ItemID    string
	Action    domain.Action
	Kind      domain.EventKind
	Committed bool
	Dispatch  domain.DispatchResult
}

func (r *Result) record() domain.SweepRecord {
	return domain.SweepRecord{
		RunID:            r.RunID,
		SweepAt:          r.SweepAt,
		Due:              r.Due,
		Sent:             r.Sent,
		Warned:           r.Warned,
		Escalated:        r.Escalated,
		Conflicts:        r.Conflicts,
		CommitFailures:   r.CommitFailures,
		DispatchFailures: r.DispatchFailures,
	}
}
