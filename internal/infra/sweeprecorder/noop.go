package sweeprecorder

import (
	"context"

	"github.com/agencydesk/crm-sla-sweep/internal/domain"
)

type noopRecorder struct{}

func NewNoopRecorder() domain.SweepRecorder {
	return &noopRecorder{}
}

func (n *noopRecorder) RecordSweep(_ context.Context, _ domain.SweepRecord) error {
	return nil
}

func (n *noopRecorder) Close() error {
	return nil
}
