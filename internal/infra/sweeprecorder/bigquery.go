//go:build gcloud

package sweeprecorder

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/agencydesk/crm-sla-sweep/internal/domain"
)

type bigQueryRecord struct {
	RecordedAt       time.Time `bigquery:"recorded_at"`
	SweepAt          time.Time `bigquery:"sweep_at"`
	RunID            string    `bigquery:"run_id"`
	DueCount         int64     `bigquery:"due_count"`
	SentCount        int64     `bigquery:"sent_count"`
	WarnedCount      int64     `bigquery:"warned_count"`
	EscalatedCount   int64     `bigquery:"escalated_count"`
	ConflictCount    int64     `bigquery:"conflict_count"`
	CommitFailures   int64     `bigquery:"commit_failures"`
	DispatchFailures int64     `bigquery:"dispatch_failures"`
}

type bigQueryRecorder struct {
	client   *bigquery.Client
	inserter *bigquery.Inserter
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.SweepRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "sweep result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.BigQueryProjectID == "" {
		slog.WarnContext(ctx, "BigQuery project ID not configured, sweep result recording disabled")
		return NewNoopRecorder(), nil
	}

	client, err := bigquery.NewClient(ctx, cfg.BigQueryProjectID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create BigQuery client, sweep result recording disabled",
			slog.String("error", err.Error()),
			slog.String("project_id", cfg.BigQueryProjectID),
		)
		return NewNoopRecorder(), nil
	}

	inserter := client.Dataset(cfg.BigQueryDataset).Table(cfg.BigQueryTable).Inserter()

	slog.InfoContext(ctx, "sweep result recorder initialized",
		slog.String("type", "bigquery"),
		slog.String("project_id", cfg.BigQueryProjectID),
		slog.String("dataset", cfg.BigQueryDataset),
		slog.String("table", cfg.BigQueryTable),
	)

	return &bigQueryRecorder{
		client:   client,
		inserter: inserter,
	}, nil
}

func (r *bigQueryRecorder) RecordSweep(ctx context.Context, record domain.SweepRecord) error {
	bqRecord := &bigQueryRecord{
		RecordedAt:       time.Now(),
		SweepAt:          record.SweepAt,
		RunID:            record.RunID,
		DueCount:         int64(record.Due),
		SentCount:        int64(record.Sent),
		WarnedCount:      int64(record.Warned),
		EscalatedCount:   int64(record.Escalated),
		ConflictCount:    int64(record.Conflicts),
		CommitFailures:   int64(record.CommitFailures),
		DispatchFailures: int64(record.DispatchFailures),
	}

	if err := r.inserter.Put(ctx, []*bigQueryRecord{bqRecord}); err != nil {
		slog.WarnContext(ctx, "failed to insert sweep result to BigQuery",
			slog.String("error", err.Error()),
		)
	}

	return nil
}

func (r *bigQueryRecorder) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
