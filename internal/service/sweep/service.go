package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agencydesk/crm-sla-sweep/internal/domain"
	"github.com/agencydesk/crm-sla-sweep/internal/observability/metrics"
	"github.com/agencydesk/crm-sla-sweep/internal/observability/tracing"
	"github.com/agencydesk/crm-sla-sweep/internal/service/dispatch"
	"github.com/agencydesk/crm-sla-sweep/internal/service/rule"
)

// Service runs the reminder sweep: list due items, evaluate each
// against the active SLA rules, commit the state transition, and fan
// the notification out. The commit happens before dispatch, so a lost
// compare-and-set race suppresses delivery entirely and no item fires
// twice.
type Service struct {
	items      domain.ItemRepository
	rules      domain.RuleRepository
	engine     *rule.Engine
	dispatcher *dispatch.Dispatcher
	recorder   domain.SweepRecorder
	metrics    *metrics.SweepMetrics
	opTimeout  time.Duration
}

func NewService(
	items domain.ItemRepository,
	rules domain.RuleRepository,
	engine *rule.Engine,
	dispatcher *dispatch.Dispatcher,
	recorder domain.SweepRecorder,
	sweepMetrics *metrics.SweepMetrics,
	opTimeout time.Duration,
) *Service {
	return &Service{
		items:      items,
		rules:      rules,
		engine:     engine,
		dispatcher: dispatcher,
		recorder:   recorder,
		metrics:    sweepMetrics,
		opTimeout:  opTimeout,
	}
}

// Run executes one sweep pass at the given reference time. ownerID
// narrows the pass to one owner when non-empty. A store failure while
// listing aborts the whole pass; per-item failures are counted and the
// pass continues.
func (s *Service) Run(ctx context.Context, now time.Time, ownerID string) (*Result, error) {
	runID := uuid.NewString()
	started := time.Now()

	ctx, span := tracing.StartSweepPassSpan(ctx, now, runID)
	defer span.End()

	result := &Result{RunID: runID, SweepAt: now}

	rules, err := s.listRules(ctx)
	if err != nil {
		err = fmt.Errorf("list active rules: %w", err)
		tracing.RecordSweepPassResult(span, 0, 0, 0, 0, 0, err)
		return nil, err
	}

	items, err := s.listDue(ctx, now, ownerID)
	if err != nil {
		err = fmt.Errorf("list due items: %w", err)
		tracing.RecordSweepPassResult(span, 0, 0, 0, 0, 0, err)
		return nil, err
	}
	result.Due = len(items)

	pass := s.dispatcher.BeginPass()
	for _, item := range items {
		if err := s.processItem(ctx, pass, item, rules, now, result); err != nil {
			// A timed-out store call means the store is stalled, not
			// racing: abandon the rest of the pass instead of feeding
			// it more writes. The remaining items stay pending and the
			// next pass picks them up.
			err = fmt.Errorf("abandoning sweep pass: %w", err)
			slog.ErrorContext(ctx, "sweep pass abandoned",
				slog.String("run_id", runID),
				slog.Int("processed", len(result.Items)),
				slog.Int("due", result.Due),
				slog.String("error", err.Error()),
			)
			tracing.RecordSweepPassResult(span,
				result.Due, result.Sent, result.Warned+result.Escalated,
				result.Conflicts, result.DispatchFailures, err)
			s.recordResult(ctx, result)
			return nil, err
		}
	}

	tracing.RecordSweepPassResult(span,
		result.Due, result.Sent, result.Warned+result.Escalated,
		result.Conflicts, result.DispatchFailures, nil)
	if s.metrics != nil {
		s.metrics.RecordSweepDuration(ctx, time.Since(started))
	}
	s.recordResult(ctx, result)

	slog.InfoContext(ctx, "sweep pass completed",
		slog.String("run_id", runID),
		slog.Int("due", result.Due),
		slog.Int("sent", result.Sent),
		slog.Int("warned", result.Warned),
		slog.Int("escalated", result.Escalated),
		slog.Int("conflicts", result.Conflicts),
		slog.Int("commit_failures", result.CommitFailures),
		slog.Int("dispatch_failures", result.DispatchFailures),
	)
	return result, nil
}

// listRules and listDue bound each store read with the per-call
// timeout, matching commitState. A stalled store fails the pass
// instead of holding the trigger request open.

func (s *Service) listRules(ctx context.Context) (map[domain.RuleKey]domain.SLARule, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.rules.ListActive(ctx)
}

func (s *Service) listDue(ctx context.Context, now time.Time, ownerID string) ([]*domain.TrackedItem, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.items.ListDue(ctx, now, ownerID)
}

func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *Service) processItem(
	ctx context.Context,
	pass *dispatch.Pass,
	item *domain.TrackedItem,
	rules map[domain.RuleKey]domain.SLARule,
	now time.Time,
	result *Result,
) error {
	outcome := s.engine.Evaluate(item, rules, now)
	target := targetState(outcome.Action)

	itemResult := ItemResult{
		ItemID: item.ID,
		Action: outcome.Action,
		Kind:   eventKind(outcome.Action),
	}
	if s.metrics != nil {
		s.metrics.RecordItemProcessed(ctx, item.Type.String(), string(outcome.Action))
	}

	if err := s.commitState(ctx, item.ID, item.State, target); err != nil {
		if errors.Is(err, domain.ErrStateConflict) {
			result.Conflicts++
			if s.metrics != nil {
				s.metrics.RecordCommitConflict(ctx, item.Type.String())
			}
			slog.DebugContext(ctx, "commit lost to concurrent writer",
				slog.String("item_id", item.ID),
			)
			result.Items = append(result.Items, itemResult)
			return nil
		}

		result.CommitFailures++
		slog.ErrorContext(ctx, "state commit failed",
			slog.String("item_id", item.ID),
			slog.String("error", err.Error()),
		)
		result.Items = append(result.Items, itemResult)
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("commit state for item %s: %w", item.ID, err)
		}
		return nil
	}
	itemResult.Committed = true

	switch outcome.Action {
	case domain.ActionWarn:
		result.Warned++
	case domain.ActionEscalate:
		result.Escalated++
	default:
		result.Sent++
	}

	event := buildEvent(item, outcome, now)
	dispatchCtx, dispatchSpan := tracing.StartDispatchSpan(ctx, item.ID, string(event.Kind))
	itemResult.Dispatch = pass.Dispatch(dispatchCtx, event)
	dispatchSpan.End()

	result.DispatchFailures += len(itemResult.Dispatch.Failed)
	result.Items = append(result.Items, itemResult)
	return nil
}

func (s *Service) commitState(ctx context.Context, id string, from, to domain.ItemState) error {
	if s.opTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opTimeout)
		defer cancel()
	}

	_, span := tracing.StartCommitSpan(ctx, id, from.String(), to.String())
	defer span.End()

	return s.items.CommitState(ctx, id, from, to)
}

func (s *Service) recordResult(ctx context.Context, result *Result) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordSweep(ctx, result.record()); err != nil {
		slog.WarnContext(ctx, "failed to record sweep result",
			slog.String("run_id", result.RunID),
			slog.String("error", err.Error()),
		)
	}
}

func targetState(action domain.Action) domain.ItemState {
	if action == domain.ActionEscalate {
		return domain.StateEscalated
	}
	return domain.StateSent
}

func eventKind(action domain.Action) domain.EventKind {
	switch action {
	case domain.ActionWarn:
		return domain.EventSLAWarning
	case domain.ActionEscalate:
		return domain.EventSLAEscalation
	default:
		return domain.EventReminderDue
	}
}

func buildEvent(item *domain.TrackedItem, outcome domain.Outcome, now time.Time) *domain.NotificationEvent {
	severity := outcome.Severity
	if severity == 0 {
		severity = domain.SeverityLow
	}
	return &domain.NotificationEvent{
		ItemID:     item.ID,
		OwnerID:    item.OwnerID,
		OwnerEmail: item.OwnerEmail,
		Kind:       eventKind(outcome.Action),
		Severity:   severity,
		Title:      item.Title,
		Body:       eventBody(item, outcome),
		FiredAt:    now,
	}
}

func eventBody(item *domain.TrackedItem, outcome domain.Outcome) string {
	switch outcome.Action {
	case domain.ActionWarn:
		return fmt.Sprintf("%s %q has been in %s for %s, past its service window",
			item.Type, item.Title, item.Status, outcome.Dwell.Round(time.Minute))
	case domain.ActionEscalate:
		return fmt.Sprintf("%s %q has been stuck in %s for %s and needs attention now",
			item.Type, item.Title, item.Status, outcome.Dwell.Round(time.Minute))
	default:
		if item.Note != "" {
			return item.Note
		}
		return fmt.Sprintf("%s %q is due", item.Type, item.Title)
	}
}
