package cases

import (
	"context"

	"github.com/google/uuid"
)

type CaseRepository interface {
	Create(ctx context.Context, c *Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*Case, error)
	GetByNumber(ctx context.Context, caseNumber string) (*Case, error)
	// GetForUpdate locks the row for the duration of the enclosing
	// transaction; lifecycle transitions serialize per case through it.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Case, error)
	Update(ctx context.Context, c *Case) error
	List(ctx context.Context, county, status string, limit, offset int) ([]*Case, int, error)
}

// HistoryRepository is append-only: rows are never updated or deleted.
type HistoryRepository interface {
	Append(ctx context.Context, h *StatusHistory) error
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]*StatusHistory, error)
}

// RescindRepository is append-only.
type RescindRepository interface {
	Append(ctx context.Context, r *StatusRescind) error
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]*StatusRescind, error)
}

// LeaveRepository is append-only.
type LeaveRepository interface {
	Append(ctx context.Context, l *Leave) error
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]*Leave, error)
}
