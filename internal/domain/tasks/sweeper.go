package tasks

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/casework/casework/internal/platform/calendar"
	"github.com/casework/casework/internal/platform/events"
)

// Sweeper is the escalation scheduler: a periodic sweep over open tasks that
// applies auto-close and escalation policy. Safe to run alongside user
// actions and overlapping sweeps; the per-row CAS guarantees each task
// escalates at most once.
type Sweeper struct {
	tasks     TaskRepository
	history   TaskHistoryRepository
	pub       events.Publisher
	cal       calendar.BusinessCalendar
	tx        TxRunner
	logger    zerolog.Logger
	batchSize int
}

// Stats summarizes one sweep.
type Stats struct {
	Scanned    int `json:"scanned"`
	Escalated  int `json:"escalated"`
	AutoClosed int `json:"auto_closed"`
	Errors     int `json:"errors"`
}

func NewSweeper(tasks TaskRepository, history TaskHistoryRepository, pub events.Publisher,
	cal calendar.BusinessCalendar, tx TxRunner, logger zerolog.Logger, batchSize int) *Sweeper {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Sweeper{
		tasks:     tasks,
		history:   history,
		pub:       pub,
		cal:       cal,
		tx:        tx,
		logger:    logger,
		batchSize: batchSize,
	}
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("escalation sweeper stopped")
			return
		case <-ticker.C:
			stats, err := s.RunOnce(ctx)
			if err != nil {
				s.logger.Error().Err(err).Msg("escalation sweep failed")
				continue
			}
			s.logger.Info().
				Int("scanned", stats.Scanned).
				Int("escalated", stats.Escalated).
				Int("auto_closed", stats.AutoClosed).
				Int("errors", stats.Errors).
				Msg("escalation sweep complete")
		}
	}
}

// RunOnce sweeps one bounded batch of due tasks. Per-task failures are
// logged and counted without aborting the rest of the batch; a batch query
// failure aborts the sweep and the next one self-heals from durable state.
func (s *Sweeper) RunOnce(ctx context.Context) (Stats, error) {
	var stats Stats
	now := s.cal.Now()
	batch, err := s.tasks.DueForSweep(ctx, now, s.batchSize)
	if err != nil {
		return stats, err
	}

	for _, item := range batch {
		stats.Scanned++
		action, err := s.process(ctx, item, now)
		if err != nil {
			stats.Errors++
			s.logger.Error().Err(err).
				Str("task_id", item.Task.ID.String()).
				Str("type_code", item.Task.TypeCode).
				Msg("sweep: task transition failed")
			continue
		}
		switch action {
		case ActionEscalated:
			stats.Escalated++
		case ActionAutoClosed:
			stats.AutoClosed++
		}
	}
	return stats, nil
}

// process applies auto-close or escalation to one task. Returns the action
// taken, or "" for a no-op. Auto-close takes precedence over escalation.
func (s *Sweeper) process(ctx context.Context, item *TaskWithType, now time.Time) (string, error) {
	t, tt := item.Task, item.Type
	if !t.Open() {
		return "", nil
	}

	if tt.AutoCloseEnabled {
		closeAt := s.cal.AddBusinessDays(t.CreatedAt, tt.AutoCloseDays)
		if !now.Before(closeAt) {
			return ActionAutoClosed, s.autoClose(ctx, t)
		}
	}

	if tt.EscalationEnabled && s.shouldEscalate(t, tt, now) {
		return ActionEscalated, s.escalate(ctx, t, tt)
	}
	return "", nil
}

func (s *Sweeper) shouldEscalate(t *Task, tt *TaskType, now time.Time) bool {
	reserveDue := t.ReserveDeadline != nil && !now.Before(*t.ReserveDeadline)
	completionDue := t.CompletionDeadline != nil && !now.Before(*t.CompletionDeadline)
	if t.CompletionDeadline == nil && t.DueDate != nil {
		completionDue = !now.Before(*t.DueDate)
	}

	switch tt.EscalationCheckType {
	case CheckNotReserved:
		return t.Status == StatusOpen && reserveDue
	case CheckNotCompleted:
		return completionDue
	case CheckBoth:
		return (t.Status == StatusOpen && reserveDue) || completionDue
	default:
		return false
	}
}

func (s *Sweeper) escalate(ctx context.Context, t *Task, tt *TaskType) error {
	target := EscalationFallbackQueue
	if tt.EscalationTargetQueue != nil && *tt.EscalationTargetQueue != "" {
		target = *tt.EscalationTargetQueue
	}

	from := t.Status
	t.Status = StatusEscalated
	t.Queue = target

	err := s.tx(ctx, func(ctx context.Context) error {
		if err := s.tasks.UpdateCAS(ctx, t); err != nil {
			return err
		}
		return s.history.Append(ctx, &TaskHistory{
			TaskID:     t.ID,
			Action:     ActionEscalated,
			FromStatus: &from,
			ToStatus:   t.Status,
			Queue:      target,
			Actor:      "system",
		})
	})
	if err != nil {
		return err
	}
	s.publish(ctx, "TASK_ESCALATED", t, target)
	return nil
}

func (s *Sweeper) autoClose(ctx context.Context, t *Task) error {
	from := t.Status
	outcome := "auto-closed after retention period"
	t.Status = StatusClosed
	t.Outcome = &outcome

	err := s.tx(ctx, func(ctx context.Context) error {
		if err := s.tasks.UpdateCAS(ctx, t); err != nil {
			return err
		}
		return s.history.Append(ctx, &TaskHistory{
			TaskID:     t.ID,
			Action:     ActionAutoClosed,
			FromStatus: &from,
			ToStatus:   t.Status,
			Queue:      t.Queue,
			Detail:     &outcome,
			Actor:      "system",
		})
	})
	if err != nil {
		return err
	}
	s.publish(ctx, "TASK_AUTO_CLOSED", t, outcome)
	return nil
}

func (s *Sweeper) publish(ctx context.Context, eventType string, t *Task, detail string) {
	if s.pub == nil {
		return
	}
	caseID := ""
	if t.CaseID != nil {
		caseID = t.CaseID.String()
	}
	s.pub.Publish(ctx, events.Event{
		Type:       eventType,
		TaskID:     t.ID.String(),
		CaseID:     caseID,
		Actor:      "system",
		Detail:     detail,
		OccurredAt: s.cal.Now(),
	})
}
