package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	// UpdateCAS persists t only if the stored version still equals
	// t.Version; on success it bumps t.Version. A lost race returns Conflict.
	UpdateCAS(ctx context.Context, t *Task) error
	ListByQueue(ctx context.Context, queue string, limit, offset int) ([]*Task, int, error)
	ListByAssignee(ctx context.Context, assignee string, limit, offset int) ([]*Task, int, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]*Task, error)
	// DueForSweep returns up to limit OPEN/IN_PROGRESS tasks whose
	// escalation or auto-close deadline is at or before now, joined to
	// their task type.
	DueForSweep(ctx context.Context, now time.Time, limit int) ([]*TaskWithType, error)
	CountOpenByQueue(ctx context.Context) (map[string]int, error)
}

type TypeRepository interface {
	Get(ctx context.Context, code string) (*TaskType, error)
	List(ctx context.Context) ([]*TaskType, error)
	// Upsert seeds or refreshes a catalog entry, keyed by code.
	Upsert(ctx context.Context, tt *TaskType) error
}

// TaskHistoryRepository is append-only.
type TaskHistoryRepository interface {
	Append(ctx context.Context, h *TaskHistory) error
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*TaskHistory, error)
}
