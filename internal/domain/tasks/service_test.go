package tasks

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/casework/casework/internal/apperr"
	"github.com/casework/casework/internal/platform/calendar"
	"github.com/casework/casework/internal/platform/events"
)

// -- Mock Repositories --

type mockTaskRepo struct {
	store map[uuid.UUID]*Task
	types *mockTypeRepo
	// raceBump simulates a concurrent writer: the next UpdateCAS loses.
	raceBump bool
}

func newMockTaskRepo(types *mockTypeRepo) *mockTaskRepo {
	return &mockTaskRepo{store: make(map[uuid.UUID]*Task), types: types}
}

func (m *mockTaskRepo) Create(_ context.Context, t *Task) error {
	t.ID = uuid.New()
	t.Version = 1
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, id uuid.UUID) (*Task, error) {
	t, ok := m.store[id]
	if !ok {
		return nil, apperr.NotFound("task not found")
	}
	cp := *t
	return &cp, nil
}

func (m *mockTaskRepo) UpdateCAS(_ context.Context, t *Task) error {
	stored, ok := m.store[t.ID]
	if !ok {
		return apperr.NotFound("task not found")
	}
	if m.raceBump {
		stored.Version++
		m.raceBump = false
	}
	if stored.Version != t.Version {
		return apperr.Conflict("task %s was modified concurrently", t.ID)
	}
	t.Version++
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *mockTaskRepo) ListByQueue(_ context.Context, queue string, _, _ int) ([]*Task, int, error) {
	var r []*Task
	for _, t := range m.store {
		if t.Queue == queue {
			r = append(r, t)
		}
	}
	return r, len(r), nil
}

func (m *mockTaskRepo) ListByAssignee(_ context.Context, assignee string, _, _ int) ([]*Task, int, error) {
	var r []*Task
	for _, t := range m.store {
		if t.Assignee != nil && *t.Assignee == assignee {
			r = append(r, t)
		}
	}
	return r, len(r), nil
}

func (m *mockTaskRepo) ListByCase(_ context.Context, caseID uuid.UUID) ([]*Task, error) {
	var r []*Task
	for _, t := range m.store {
		if t.CaseID != nil && *t.CaseID == caseID {
			r = append(r, t)
		}
	}
	return r, nil
}

// DueForSweep mirrors the SQL predicate: a deadline has passed, or the task
// is of an auto-close type and at least auto_close_days calendar days old.
func (m *mockTaskRepo) DueForSweep(_ context.Context, now time.Time, limit int) ([]*TaskWithType, error) {
	due := func(ts *time.Time) bool { return ts != nil && !ts.After(now) }
	var r []*TaskWithType
	for _, t := range m.store {
		if !t.Open() {
			continue
		}
		tt, ok := m.types.store[t.TypeCode]
		if !ok {
			continue
		}
		autoCloseAged := tt.AutoCloseEnabled && !t.CreatedAt.After(now.AddDate(0, 0, -tt.AutoCloseDays))
		if !autoCloseAged && !due(t.EscalationDate) && !due(t.ReserveDeadline) && !due(t.CompletionDeadline) {
			continue
		}
		cp := *t
		r = append(r, &TaskWithType{Task: &cp, Type: tt})
		if len(r) == limit {
			break
		}
	}
	return r, nil
}

func (m *mockTaskRepo) CountOpenByQueue(_ context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, t := range m.store {
		if t.Open() {
			counts[t.Queue]++
		}
	}
	return counts, nil
}

type mockTypeRepo struct {
	store map[string]*TaskType
}

func newMockTypeRepo() *mockTypeRepo {
	m := &mockTypeRepo{store: make(map[string]*TaskType)}
	for _, tt := range DefaultTaskTypes() {
		cp := tt
		m.store[tt.Code] = &cp
	}
	return m
}

func (m *mockTypeRepo) Get(_ context.Context, code string) (*TaskType, error) {
	tt, ok := m.store[code]
	if !ok {
		return nil, apperr.NotFound("task type not found")
	}
	cp := *tt
	return &cp, nil
}

func (m *mockTypeRepo) List(_ context.Context) ([]*TaskType, error) {
	var r []*TaskType
	for _, tt := range m.store {
		r = append(r, tt)
	}
	return r, nil
}

func (m *mockTypeRepo) Upsert(_ context.Context, tt *TaskType) error {
	cp := *tt
	m.store[tt.Code] = &cp
	return nil
}

type mockTaskHistoryRepo struct {
	rows []*TaskHistory
}

func (m *mockTaskHistoryRepo) Append(_ context.Context, h *TaskHistory) error {
	h.ID = uuid.New()
	cp := *h
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *mockTaskHistoryRepo) ListByTask(_ context.Context, taskID uuid.UUID) ([]*TaskHistory, error) {
	var r []*TaskHistory
	for _, h := range m.rows {
		if h.TaskID == taskID {
			r = append(r, h)
		}
	}
	return r, nil
}

func (m *mockTaskHistoryRepo) countAction(taskID uuid.UUID, action string) int {
	n := 0
	for _, h := range m.rows {
		if h.TaskID == taskID && h.Action == action {
			n++
		}
	}
	return n
}

type taskTestEnv struct {
	svc     *Service
	tasks   *mockTaskRepo
	types   *mockTypeRepo
	history *mockTaskHistoryRepo
	events  *events.Recorder
	now     *time.Time
}

func newTaskTestEnv() *taskTestEnv {
	// A Monday.
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	types := newMockTypeRepo()
	env := &taskTestEnv{
		tasks:   newMockTaskRepo(types),
		types:   types,
		history: &mockTaskHistoryRepo{},
		events:  &events.Recorder{},
		now:     &now,
	}
	cal := calendar.New(calendar.WithNow(func() time.Time { return *env.now }))
	env.svc = NewService(env.tasks, env.types, env.history, env.events, cal, PassthroughTx)
	return env
}

func (e *taskTestEnv) mustCreate(t *testing.T, typeCode string) *Task {
	t.Helper()
	task, err := e.svc.Create(context.Background(), CreateTaskInput{TypeCode: typeCode}, "worker1")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	// The store normally stamps created_at; the mock leaves it zero.
	e.tasks.store[task.ID].CreatedAt = *e.now
	return task
}

// -- Tests --

func TestCreateTask_BusinessDayDeadlines(t *testing.T) {
	env := newTaskTestEnv()
	// CI-111180: 5 business days, NOT_RESERVED escalation.
	task := env.mustCreate(t, "CI-111180")

	if task.Status != StatusOpen {
		t.Errorf("expected OPEN, got %s", task.Status)
	}
	if task.Queue != "CASE_OWNER" {
		t.Errorf("expected CASE_OWNER queue, got %s", task.Queue)
	}
	if task.Priority != PriorityMedium {
		t.Errorf("expected MEDIUM priority, got %s", task.Priority)
	}

	// Monday + 5 business days = the following Monday.
	wantDue := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC)
	if task.DueDate == nil || !task.DueDate.Equal(wantDue) {
		t.Errorf("expected due date %v, got %v", wantDue, task.DueDate)
	}
	if task.EscalationDate == nil || !task.EscalationDate.Equal(wantDue) {
		t.Errorf("expected escalation date %v, got %v", wantDue, task.EscalationDate)
	}
	if env.history.countAction(task.ID, ActionCreated) != 1 {
		t.Errorf("expected one CREATED history row")
	}
}

func TestCreateTask_NotificationPriority(t *testing.T) {
	env := newTaskTestEnv()
	// CI-111181 is notification-only: lowest priority, no deadline.
	task := env.mustCreate(t, "CI-111181")

	if task.Priority != PriorityLow {
		t.Errorf("expected LOW priority for notification task, got %s", task.Priority)
	}
	if task.DueDate != nil {
		t.Errorf("expected no due date, got %v", task.DueDate)
	}
}

func TestCreateTask_DualStageDeadlines(t *testing.T) {
	env := newTaskTestEnv()
	// CI-111176: 2-day reserve and 2-day completion deadlines, BOTH policy.
	task := env.mustCreate(t, "CI-111176")

	if task.Priority != PriorityHigh {
		t.Errorf("expected HIGH priority, got %s", task.Priority)
	}
	wantDeadline := time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)
	if task.ReserveDeadline == nil || !task.ReserveDeadline.Equal(wantDeadline) {
		t.Errorf("expected reserve deadline %v, got %v", wantDeadline, task.ReserveDeadline)
	}
	if task.CompletionDeadline == nil || !task.CompletionDeadline.Equal(wantDeadline) {
		t.Errorf("expected completion deadline %v, got %v", wantDeadline, task.CompletionDeadline)
	}
}

func TestCreateTask_UnknownType(t *testing.T) {
	env := newTaskTestEnv()
	_, err := env.svc.Create(context.Background(), CreateTaskInput{TypeCode: "CI-000000"}, "worker1")
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateTask_InactiveType(t *testing.T) {
	env := newTaskTestEnv()
	env.types.store["CI-111180"].Active = false
	_, err := env.svc.Create(context.Background(), CreateTaskInput{TypeCode: "CI-111180"}, "worker1")
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReserve(t *testing.T) {
	env := newTaskTestEnv()
	task := env.mustCreate(t, "CI-111180")

	got, err := env.svc.Reserve(context.Background(), task.ID, "alice")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if got.Status != StatusInProgress {
		t.Errorf("expected IN_PROGRESS, got %s", got.Status)
	}
	if got.Assignee == nil || *got.Assignee != "alice" {
		t.Errorf("expected assignee alice, got %v", got.Assignee)
	}
}

func TestReserve_AlreadyReserved(t *testing.T) {
	env := newTaskTestEnv()
	task := env.mustCreate(t, "CI-111180")
	if _, err := env.svc.Reserve(context.Background(), task.ID, "alice"); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	_, err := env.svc.Reserve(context.Background(), task.ID, "bob")
	if !apperr.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if !strings.Contains(err.Error(), "already reserved by alice") {
		t.Errorf("expected message naming the holder, got %q", err.Error())
	}
}

func TestUnreserve(t *testing.T) {
	env := newTaskTestEnv()
	task := env.mustCreate(t, "CI-111180")
	if _, err := env.svc.Reserve(context.Background(), task.ID, "alice"); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	got, err := env.svc.Unreserve(context.Background(), task.ID, "alice")
	if err != nil {
		t.Fatalf("unreserve: %v", err)
	}
	if got.Status != StatusOpen || got.Assignee != nil {
		t.Errorf("expected OPEN with no assignee, got %s / %v", got.Status, got.Assignee)
	}
}

func TestForward(t *testing.T) {
	env := newTaskTestEnv()
	task := env.mustCreate(t, "CI-111180")
	if _, err := env.svc.Reserve(context.Background(), task.ID, "alice"); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	got, err := env.svc.Forward(context.Background(), task.ID, "CASE_WORKER", "", "alice")
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if got.Queue != "CASE_WORKER" {
		t.Errorf("expected CASE_WORKER queue, got %s", got.Queue)
	}
	if got.Status != StatusOpen || got.Assignee != nil {
		t.Errorf("expected forward to release the reservation, got %s / %v", got.Status, got.Assignee)
	}
	if env.history.countAction(task.ID, ActionForwarded) != 1 {
		t.Errorf("expected one FORWARDED history row")
	}
}

func TestDefer(t *testing.T) {
	env := newTaskTestEnv()
	task := env.mustCreate(t, "CI-111180")

	newDue := env.now.AddDate(0, 0, 30)
	got, err := env.svc.Defer(context.Background(), task.ID, newDue, "alice")
	if err != nil {
		t.Fatalf("defer: %v", err)
	}
	if got.DueDate == nil || !got.DueDate.Equal(newDue) {
		t.Errorf("expected due date %v, got %v", newDue, got.DueDate)
	}
	if env.history.countAction(task.ID, ActionDeferred) != 1 {
		t.Errorf("expected one DEFERRED history row")
	}
}

func TestClose_Idempotence(t *testing.T) {
	env := newTaskTestEnv()
	task := env.mustCreate(t, "CI-111180")

	got, err := env.svc.Close(context.Background(), task.ID, "resolved", "alice")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if got.Status != StatusClosed {
		t.Errorf("expected CLOSED, got %s", got.Status)
	}
	if got.Outcome == nil || *got.Outcome != "resolved" {
		t.Errorf("expected outcome recorded, got %v", got.Outcome)
	}

	before := len(env.history.rows)
	if _, err := env.svc.Close(context.Background(), task.ID, "again", "alice"); !apperr.IsInvalidTransition(err) {
		t.Fatalf("expected invalid transition on double close, got %v", err)
	}
	if len(env.history.rows) != before {
		t.Errorf("double close must not write a history row")
	}
}

func TestClose_LostRace(t *testing.T) {
	env := newTaskTestEnv()
	task := env.mustCreate(t, "CI-111180")

	env.tasks.raceBump = true
	before := len(env.history.rows)
	_, err := env.svc.Close(context.Background(), task.ID, "resolved", "alice")
	if !apperr.IsConflict(err) {
		t.Fatalf("expected conflict on lost race, got %v", err)
	}
	if len(env.history.rows) != before {
		t.Errorf("lost race must not write a history row")
	}
}

func TestSeedTypes(t *testing.T) {
	env := newTaskTestEnv()
	env.types.store = make(map[string]*TaskType)

	n, err := env.svc.SeedTypes(context.Background())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != len(DefaultTaskTypes()) {
		t.Errorf("expected %d types seeded, got %d", len(DefaultTaskTypes()), n)
	}
	if _, ok := env.types.store[TaskTypeCaseAssignment]; !ok {
		t.Error("expected case assignment type in catalog")
	}
}
