// Package tasks implements the task engine and escalation scheduler:
// declarative task types, business-day deadlines, worker actions under
// optimistic concurrency, and the periodic escalation/auto-close sweep.
package tasks

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses.
const (
	StatusOpen       = "OPEN"
	StatusInProgress = "IN_PROGRESS"
	StatusClosed     = "CLOSED"
	StatusEscalated  = "ESCALATED"
)

// Task priorities.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Escalation check policies.
const (
	CheckNotReserved  = "NOT_RESERVED"
	CheckNotCompleted = "NOT_COMPLETED"
	CheckBoth         = "BOTH"
)

// TaskHistory actions.
const (
	ActionCreated    = "CREATED"
	ActionReserved   = "RESERVED"
	ActionUnreserved = "UNRESERVED"
	ActionForwarded  = "FORWARDED"
	ActionDeferred   = "DEFERRED"
	ActionClosed     = "CLOSED"
	ActionEscalated  = "ESCALATED"
	ActionAutoClosed = "AUTO_CLOSED"
)

// EscalationFallbackQueue receives escalated tasks whose type declares no
// explicit escalation target.
const EscalationFallbackQueue = "ESCALATED"

// TaskType is a static catalog entry keyed by business code. Loaded once at
// seed time; immutable at runtime.
type TaskType struct {
	Code                   string  `db:"code" json:"code"`
	Name                   string  `db:"name" json:"name"`
	Description            string  `db:"description" json:"description"`
	TargetQueue            string  `db:"target_queue" json:"target_queue"`
	Notification           bool    `db:"notification" json:"notification"`
	DeadlineBusinessDays   int     `db:"deadline_business_days" json:"deadline_business_days"`
	EscalationEnabled      bool    `db:"escalation_enabled" json:"escalation_enabled"`
	EscalationCheckType    string  `db:"escalation_check_type" json:"escalation_check_type,omitempty"`
	EscalationTargetQueue  *string `db:"escalation_target_queue" json:"escalation_target_queue,omitempty"`
	ReserveDeadlineDays    *int    `db:"reserve_deadline_days" json:"reserve_deadline_days,omitempty"`
	CompletionDeadlineDays *int    `db:"completion_deadline_days" json:"completion_deadline_days,omitempty"`
	AutoCloseEnabled       bool    `db:"auto_close_enabled" json:"auto_close_enabled"`
	AutoCloseDays          int     `db:"auto_close_days" json:"auto_close_days"`
	DefaultPriority        string  `db:"default_priority" json:"default_priority"`
	FunctionalArea         string  `db:"functional_area" json:"functional_area"`
	Active                 bool    `db:"active" json:"active"`
}

// Task maps to the task table. Version backs the compare-and-set every
// mutation goes through.
type Task struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	TypeCode           string     `db:"type_code" json:"type_code"`
	CaseID             *uuid.UUID `db:"case_id" json:"case_id,omitempty"`
	Queue              string     `db:"queue" json:"queue"`
	Status             string     `db:"status" json:"status"`
	Priority           string     `db:"priority" json:"priority"`
	Assignee           *string    `db:"assignee" json:"assignee,omitempty"`
	Detail             string     `db:"detail" json:"detail"`
	DueDate            *time.Time `db:"due_date" json:"due_date,omitempty"`
	EscalationDate     *time.Time `db:"escalation_date" json:"escalation_date,omitempty"`
	ReserveDeadline    *time.Time `db:"reserve_deadline" json:"reserve_deadline,omitempty"`
	CompletionDeadline *time.Time `db:"completion_deadline" json:"completion_deadline,omitempty"`
	Outcome            *string    `db:"outcome" json:"outcome,omitempty"`
	Version            int        `db:"version" json:"version"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// Open reports whether the task is still actionable by the sweep.
func (t *Task) Open() bool {
	return t.Status == StatusOpen || t.Status == StatusInProgress
}

// TaskHistory is an append-only action log row.
type TaskHistory struct {
	ID         uuid.UUID `db:"id" json:"id"`
	TaskID     uuid.UUID `db:"task_id" json:"task_id"`
	Action     string    `db:"action" json:"action"`
	FromStatus *string   `db:"from_status" json:"from_status,omitempty"`
	ToStatus   string    `db:"to_status" json:"to_status"`
	Queue      string    `db:"queue" json:"queue"`
	Detail     *string   `db:"detail" json:"detail,omitempty"`
	Actor      string    `db:"actor" json:"actor"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// TaskWithType pairs a task with its catalog entry for the sweep.
type TaskWithType struct {
	Task *Task
	Type *TaskType
}
