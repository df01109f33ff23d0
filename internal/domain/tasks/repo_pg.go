package tasks

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casework/casework/internal/apperr"
	"github.com/casework/casework/internal/platform/db"
)

type taskRepoPG struct{ pool *pgxpool.Pool }

func NewTaskRepoPG(pool *pgxpool.Pool) TaskRepository {
	return &taskRepoPG{pool: pool}
}

const taskCols = `id, type_code, case_id, queue, status, priority, assignee, detail,
	due_date, escalation_date, reserve_deadline, completion_deadline,
	outcome, version, created_at, updated_at`

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.TypeCode, &t.CaseID, &t.Queue, &t.Status, &t.Priority,
		&t.Assignee, &t.Detail, &t.DueDate, &t.EscalationDate,
		&t.ReserveDeadline, &t.CompletionDeadline,
		&t.Outcome, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("task not found")
	}
	return &t, err
}

func (r *taskRepoPG) Create(ctx context.Context, t *Task) error {
	t.ID = uuid.New()
	t.Version = 1
	_, err := db.Runner(ctx, r.pool).Exec(ctx, `
		INSERT INTO task (id, type_code, case_id, queue, status, priority, assignee, detail,
			due_date, escalation_date, reserve_deadline, completion_deadline, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		t.ID, t.TypeCode, t.CaseID, t.Queue, t.Status, t.Priority, t.Assignee, t.Detail,
		t.DueDate, t.EscalationDate, t.ReserveDeadline, t.CompletionDeadline, t.Version)
	return err
}

func (r *taskRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	return scanTask(db.Runner(ctx, r.pool).QueryRow(ctx,
		`SELECT `+taskCols+` FROM task WHERE id = $1`, id))
}

func (r *taskRepoPG) UpdateCAS(ctx context.Context, t *Task) error {
	tag, err := db.Runner(ctx, r.pool).Exec(ctx, `
		UPDATE task SET queue=$3, status=$4, priority=$5, assignee=$6, detail=$7,
			due_date=$8, escalation_date=$9, reserve_deadline=$10, completion_deadline=$11,
			outcome=$12, version=version+1, updated_at=NOW()
		WHERE id = $1 AND version = $2`,
		t.ID, t.Version, t.Queue, t.Status, t.Priority, t.Assignee, t.Detail,
		t.DueDate, t.EscalationDate, t.ReserveDeadline, t.CompletionDeadline, t.Outcome)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("task %s was modified concurrently", t.ID)
	}
	t.Version++
	return nil
}

func (r *taskRepoPG) ListByQueue(ctx context.Context, queue string, limit, offset int) ([]*Task, int, error) {
	return r.list(ctx, `queue = $1`, queue, limit, offset)
}

func (r *taskRepoPG) ListByAssignee(ctx context.Context, assignee string, limit, offset int) ([]*Task, int, error) {
	return r.list(ctx, `assignee = $1`, assignee, limit, offset)
}

func (r *taskRepoPG) list(ctx context.Context, cond string, arg any, limit, offset int) ([]*Task, int, error) {
	var total int
	if err := db.Runner(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM task WHERE `+cond, arg).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := db.Runner(ctx, r.pool).Query(ctx,
		`SELECT `+taskCols+` FROM task WHERE `+cond+`
		ORDER BY CASE priority WHEN 'HIGH' THEN 0 WHEN 'MEDIUM' THEN 1 ELSE 2 END,
			due_date NULLS LAST, created_at
		LIMIT $2 OFFSET $3`, arg, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

func (r *taskRepoPG) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*Task, error) {
	rows, err := db.Runner(ctx, r.pool).Query(ctx,
		`SELECT `+taskCols+` FROM task WHERE case_id = $1 ORDER BY created_at DESC`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const typeCols = `code, name, description, target_queue, notification,
	deadline_business_days, escalation_enabled, escalation_check_type,
	escalation_target_queue, reserve_deadline_days, completion_deadline_days,
	auto_close_enabled, auto_close_days, default_priority, functional_area, active`

func (r *taskRepoPG) DueForSweep(ctx context.Context, now time.Time, limit int) ([]*TaskWithType, error) {
	// Over-selects on purpose: the sweeper re-evaluates each policy against
	// the exact deadlines before acting. The auto-close arm is bounded by a
	// calendar-day age floor so a backlog of fresh auto-close tasks cannot
	// crowd due escalations out of the batch; the business-day deadline is
	// never earlier than the same count of calendar days.
	rows, err := db.Runner(ctx, r.pool).Query(ctx, `
		SELECT `+prefixCols("t", taskCols)+`, `+prefixCols("tt", typeCols)+`
		FROM task t
		JOIN task_type tt ON tt.code = t.type_code
		WHERE t.status IN ('OPEN', 'IN_PROGRESS')
		  AND ((tt.auto_close_enabled AND t.created_at <= $1 - make_interval(days => tt.auto_close_days))
		       OR t.escalation_date <= $1
		       OR t.reserve_deadline <= $1
		       OR t.completion_deadline <= $1)
		ORDER BY t.created_at
		LIMIT $2`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*TaskWithType
	for rows.Next() {
		var t Task
		var tt TaskType
		if err := rows.Scan(
			&t.ID, &t.TypeCode, &t.CaseID, &t.Queue, &t.Status, &t.Priority,
			&t.Assignee, &t.Detail, &t.DueDate, &t.EscalationDate,
			&t.ReserveDeadline, &t.CompletionDeadline,
			&t.Outcome, &t.Version, &t.CreatedAt, &t.UpdatedAt,
			&tt.Code, &tt.Name, &tt.Description, &tt.TargetQueue, &tt.Notification,
			&tt.DeadlineBusinessDays, &tt.EscalationEnabled, &tt.EscalationCheckType,
			&tt.EscalationTargetQueue, &tt.ReserveDeadlineDays, &tt.CompletionDeadlineDays,
			&tt.AutoCloseEnabled, &tt.AutoCloseDays, &tt.DefaultPriority,
			&tt.FunctionalArea, &tt.Active); err != nil {
			return nil, err
		}
		items = append(items, &TaskWithType{Task: &t, Type: &tt})
	}
	return items, rows.Err()
}

func (r *taskRepoPG) CountOpenByQueue(ctx context.Context) (map[string]int, error) {
	rows, err := db.Runner(ctx, r.pool).Query(ctx, `
		SELECT queue, COUNT(*) FROM task
		WHERE status IN ('OPEN', 'IN_PROGRESS')
		GROUP BY queue`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var queue string
		var n int
		if err := rows.Scan(&queue, &n); err != nil {
			return nil, err
		}
		counts[queue] = n
	}
	return counts, rows.Err()
}

// prefixCols qualifies each column in a comma-separated list with a table
// alias for join queries.
func prefixCols(alias, cols string) string {
	parts := strings.Split(cols, ",")
	for i, col := range parts {
		parts[i] = alias + "." + strings.TrimSpace(col)
	}
	return strings.Join(parts, ", ")
}

type typeRepoPG struct{ pool *pgxpool.Pool }

func NewTypeRepoPG(pool *pgxpool.Pool) TypeRepository {
	return &typeRepoPG{pool: pool}
}

func scanType(row pgx.Row) (*TaskType, error) {
	var tt TaskType
	err := row.Scan(&tt.Code, &tt.Name, &tt.Description, &tt.TargetQueue, &tt.Notification,
		&tt.DeadlineBusinessDays, &tt.EscalationEnabled, &tt.EscalationCheckType,
		&tt.EscalationTargetQueue, &tt.ReserveDeadlineDays, &tt.CompletionDeadlineDays,
		&tt.AutoCloseEnabled, &tt.AutoCloseDays, &tt.DefaultPriority,
		&tt.FunctionalArea, &tt.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("task type not found")
	}
	return &tt, err
}

func (r *typeRepoPG) Get(ctx context.Context, code string) (*TaskType, error) {
	return scanType(db.Runner(ctx, r.pool).QueryRow(ctx,
		`SELECT `+typeCols+` FROM task_type WHERE code = $1`, code))
}

func (r *typeRepoPG) List(ctx context.Context) ([]*TaskType, error) {
	rows, err := db.Runner(ctx, r.pool).Query(ctx,
		`SELECT `+typeCols+` FROM task_type ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*TaskType
	for rows.Next() {
		tt, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, tt)
	}
	return items, rows.Err()
}

func (r *typeRepoPG) Upsert(ctx context.Context, tt *TaskType) error {
	_, err := db.Runner(ctx, r.pool).Exec(ctx, `
		INSERT INTO task_type (code, name, description, target_queue, notification,
			deadline_business_days, escalation_enabled, escalation_check_type,
			escalation_target_queue, reserve_deadline_days, completion_deadline_days,
			auto_close_enabled, auto_close_days, default_priority, functional_area, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (code) DO UPDATE SET
			name=EXCLUDED.name, description=EXCLUDED.description,
			target_queue=EXCLUDED.target_queue, notification=EXCLUDED.notification,
			deadline_business_days=EXCLUDED.deadline_business_days,
			escalation_enabled=EXCLUDED.escalation_enabled,
			escalation_check_type=EXCLUDED.escalation_check_type,
			escalation_target_queue=EXCLUDED.escalation_target_queue,
			reserve_deadline_days=EXCLUDED.reserve_deadline_days,
			completion_deadline_days=EXCLUDED.completion_deadline_days,
			auto_close_enabled=EXCLUDED.auto_close_enabled,
			auto_close_days=EXCLUDED.auto_close_days,
			default_priority=EXCLUDED.default_priority,
			functional_area=EXCLUDED.functional_area, active=EXCLUDED.active`,
		tt.Code, tt.Name, tt.Description, tt.TargetQueue, tt.Notification,
		tt.DeadlineBusinessDays, tt.EscalationEnabled, tt.EscalationCheckType,
		tt.EscalationTargetQueue, tt.ReserveDeadlineDays, tt.CompletionDeadlineDays,
		tt.AutoCloseEnabled, tt.AutoCloseDays, tt.DefaultPriority,
		tt.FunctionalArea, tt.Active)
	return err
}

type taskHistoryRepoPG struct{ pool *pgxpool.Pool }

func NewTaskHistoryRepoPG(pool *pgxpool.Pool) TaskHistoryRepository {
	return &taskHistoryRepoPG{pool: pool}
}

func (r *taskHistoryRepoPG) Append(ctx context.Context, h *TaskHistory) error {
	h.ID = uuid.New()
	_, err := db.Runner(ctx, r.pool).Exec(ctx, `
		INSERT INTO task_history (id, task_id, action, from_status, to_status, queue, detail, actor)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		h.ID, h.TaskID, h.Action, h.FromStatus, h.ToStatus, h.Queue, h.Detail, h.Actor)
	return err
}

func (r *taskHistoryRepoPG) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*TaskHistory, error) {
	rows, err := db.Runner(ctx, r.pool).Query(ctx, `
		SELECT id, task_id, action, from_status, to_status, queue, detail, actor, created_at
		FROM task_history WHERE task_id = $1 ORDER BY created_at`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*TaskHistory
	for rows.Next() {
		var h TaskHistory
		if err := rows.Scan(&h.ID, &h.TaskID, &h.Action, &h.FromStatus, &h.ToStatus,
			&h.Queue, &h.Detail, &h.Actor, &h.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &h)
	}
	return items, rows.Err()
}
