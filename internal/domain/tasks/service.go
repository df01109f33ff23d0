package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/casework/casework/internal/apperr"
	"github.com/casework/casework/internal/platform/calendar"
	"github.com/casework/casework/internal/platform/events"
)

// TxRunner wraps a function in a storage transaction so a task's row update
// and its history row commit together.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// PassthroughTx runs fn without a transaction, for tests against mock repos.
func PassthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	tasks   TaskRepository
	types   TypeRepository
	history TaskHistoryRepository
	pub     events.Publisher
	cal     calendar.BusinessCalendar
	tx      TxRunner
}

func NewService(tasks TaskRepository, types TypeRepository, history TaskHistoryRepository,
	pub events.Publisher, cal calendar.BusinessCalendar, tx TxRunner) *Service {
	return &Service{
		tasks:   tasks,
		types:   types,
		history: history,
		pub:     pub,
		cal:     cal,
		tx:      tx,
	}
}

// CreateTaskInput carries the trigger context for a new task.
type CreateTaskInput struct {
	TypeCode string     `json:"type_code"`
	CaseID   *uuid.UUID `json:"case_id,omitempty"`
	Assignee *string    `json:"assignee,omitempty"`
	Detail   string     `json:"detail"`
}

// Create instantiates a task from its type: status OPEN, queue and priority
// from the catalog entry (notification types always get the lowest tier),
// business-day due and escalation dates.
func (s *Service) Create(ctx context.Context, in CreateTaskInput, actor string) (*Task, error) {
	if in.TypeCode == "" {
		return nil, apperr.Validation("task type code is required")
	}
	tt, err := s.types.Get(ctx, in.TypeCode)
	if err != nil {
		return nil, err
	}
	if !tt.Active {
		return nil, apperr.Validation("task type %s is inactive", tt.Code)
	}

	now := s.cal.Now()
	priority := tt.DefaultPriority
	if tt.Notification {
		priority = PriorityLow
	}

	t := &Task{
		TypeCode: tt.Code,
		CaseID:   in.CaseID,
		Queue:    tt.TargetQueue,
		Status:   StatusOpen,
		Priority: priority,
		Assignee: in.Assignee,
		Detail:   in.Detail,
	}

	if tt.DeadlineBusinessDays > 0 {
		due := s.cal.AddBusinessDays(now, tt.DeadlineBusinessDays)
		t.DueDate = &due
	}
	if tt.EscalationEnabled {
		reserveDays := tt.DeadlineBusinessDays
		if tt.ReserveDeadlineDays != nil {
			reserveDays = *tt.ReserveDeadlineDays
		}
		if reserveDays > 0 {
			d := s.cal.AddBusinessDays(now, reserveDays)
			t.ReserveDeadline = &d
			t.EscalationDate = &d
		}
		if tt.CompletionDeadlineDays != nil {
			d := s.cal.AddBusinessDays(now, *tt.CompletionDeadlineDays)
			t.CompletionDeadline = &d
		}
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.tasks.Create(ctx, t); err != nil {
			return err
		}
		return s.history.Append(ctx, &TaskHistory{
			TaskID:   t.ID,
			Action:   ActionCreated,
			ToStatus: StatusOpen,
			Queue:    t.Queue,
			Actor:    actor,
		})
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateForCase spawns a typed task against a case. It satisfies the case
// lifecycle engine's TaskCreator port.
func (s *Service) CreateForCase(ctx context.Context, typeCode string, caseID uuid.UUID, assignee, detail string) error {
	in := CreateTaskInput{TypeCode: typeCode, CaseID: &caseID, Detail: detail}
	if assignee != "" {
		in.Assignee = &assignee
	}
	_, err := s.Create(ctx, in, "system")
	return err
}

// Reserve claims an OPEN task for user.
func (s *Service) Reserve(ctx context.Context, id uuid.UUID, user string) (*Task, error) {
	return s.action(ctx, id, func(t *Task) (*TaskHistory, error) {
		if t.Status == StatusInProgress {
			holder := ""
			if t.Assignee != nil {
				holder = *t.Assignee
			}
			if holder != user {
				return nil, apperr.Conflict("task already reserved by %s", holder)
			}
		}
		if t.Status != StatusOpen && t.Status != StatusInProgress {
			return nil, apperr.InvalidTransition("task must be open to reserve, is %s", t.Status)
		}
		from := t.Status
		t.Status = StatusInProgress
		t.Assignee = &user
		return &TaskHistory{Action: ActionReserved, FromStatus: &from, ToStatus: t.Status, Actor: user}, nil
	})
}

// Unreserve releases a reserved task back to its queue.
func (s *Service) Unreserve(ctx context.Context, id uuid.UUID, actor string) (*Task, error) {
	return s.action(ctx, id, func(t *Task) (*TaskHistory, error) {
		if t.Status != StatusInProgress {
			return nil, apperr.InvalidTransition("task is not reserved, is %s", t.Status)
		}
		from := t.Status
		t.Status = StatusOpen
		t.Assignee = nil
		return &TaskHistory{Action: ActionUnreserved, FromStatus: &from, ToStatus: t.Status, Actor: actor}, nil
	})
}

// Forward reassigns a task to another queue and/or user without closing it.
// A forwarded task returns to OPEN unless a new assignee is named.
func (s *Service) Forward(ctx context.Context, id uuid.UUID, targetQueue, targetUser, actor string) (*Task, error) {
	if targetQueue == "" && targetUser == "" {
		return nil, apperr.Validation("forward requires a target queue or user")
	}
	return s.action(ctx, id, func(t *Task) (*TaskHistory, error) {
		if t.Status == StatusClosed {
			return nil, apperr.InvalidTransition("closed task cannot be forwarded")
		}
		from := t.Status
		if targetQueue != "" {
			t.Queue = targetQueue
		}
		if targetUser != "" {
			t.Assignee = &targetUser
		} else {
			t.Assignee = nil
			t.Status = StatusOpen
		}
		detail := "forwarded to " + t.Queue
		if targetUser != "" {
			detail = "forwarded to " + targetUser
		}
		return &TaskHistory{Action: ActionForwarded, FromStatus: &from, ToStatus: t.Status, Detail: &detail, Actor: actor}, nil
	})
}

// Defer pushes the due date out. No bound is enforced on how far or how often.
func (s *Service) Defer(ctx context.Context, id uuid.UUID, newDueDate time.Time, actor string) (*Task, error) {
	return s.action(ctx, id, func(t *Task) (*TaskHistory, error) {
		if t.Status == StatusClosed {
			return nil, apperr.InvalidTransition("closed task cannot be deferred")
		}
		from := t.Status
		t.DueDate = &newDueDate
		detail := "due date deferred to " + newDueDate.Format("2006-01-02")
		return &TaskHistory{Action: ActionDeferred, FromStatus: &from, ToStatus: t.Status, Detail: &detail, Actor: actor}, nil
	})
}

// Close completes a task with an outcome. Terminal: closing an already
// closed task fails and writes no history row.
func (s *Service) Close(ctx context.Context, id uuid.UUID, outcome, actor string) (*Task, error) {
	return s.action(ctx, id, func(t *Task) (*TaskHistory, error) {
		if t.Status == StatusClosed {
			return nil, apperr.InvalidTransition("task is already closed")
		}
		from := t.Status
		t.Status = StatusClosed
		if outcome != "" {
			t.Outcome = &outcome
		}
		var detail *string
		if outcome != "" {
			detail = &outcome
		}
		return &TaskHistory{Action: ActionClosed, FromStatus: &from, ToStatus: t.Status, Detail: detail, Actor: actor}, nil
	})
}

func (s *Service) GetTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *Service) ListByQueue(ctx context.Context, queue string, limit, offset int) ([]*Task, int, error) {
	return s.tasks.ListByQueue(ctx, queue, limit, offset)
}

func (s *Service) ListByAssignee(ctx context.Context, assignee string, limit, offset int) ([]*Task, int, error) {
	return s.tasks.ListByAssignee(ctx, assignee, limit, offset)
}

func (s *Service) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*Task, error) {
	return s.tasks.ListByCase(ctx, caseID)
}

func (s *Service) GetHistory(ctx context.Context, taskID uuid.UUID) ([]*TaskHistory, error) {
	return s.history.ListByTask(ctx, taskID)
}

func (s *Service) OpenCountsByQueue(ctx context.Context) (map[string]int, error) {
	return s.tasks.CountOpenByQueue(ctx)
}

func (s *Service) ListTypes(ctx context.Context) ([]*TaskType, error) {
	return s.types.List(ctx)
}

// SeedTypes upserts the default catalog, for the seed CLI command.
func (s *Service) SeedTypes(ctx context.Context) (int, error) {
	defaults := DefaultTaskTypes()
	for i := range defaults {
		if err := s.types.Upsert(ctx, &defaults[i]); err != nil {
			return i, err
		}
	}
	return len(defaults), nil
}

// action applies mutate to the task, then commits the CAS update together
// with the history row mutate produced. A validation failure writes nothing.
func (s *Service) action(ctx context.Context, id uuid.UUID, mutate func(t *Task) (*TaskHistory, error)) (*Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	h, err := mutate(t)
	if err != nil {
		return nil, err
	}
	h.TaskID = t.ID
	h.Queue = t.Queue
	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.tasks.UpdateCAS(ctx, t); err != nil {
			return err
		}
		return s.history.Append(ctx, h)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}
