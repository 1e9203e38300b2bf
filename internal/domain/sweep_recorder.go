package domain

import (
	"context"
	"time"
)

// SweepRecord captures the outcome counts of one sweep pass for
// offline analysis.
type SweepRecord struct {
	RunID            string
	SweepAt          time.Time
	Due              int
	Sent             int
	Warned           int
	Escalated        int
	Conflicts        int
	CommitFailures   int
	DispatchFailures int
}

type SweepRecorder interface {
	RecordSweep(ctx context.Context, record SweepRecord) error
	Close() error
}
