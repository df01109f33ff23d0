package workqueue

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/casework/casework/internal/apperr"
)

// -- Mock Repositories --

type mockQueueRepo struct {
	store map[string]*WorkQueue
}

func newMockQueueRepo() *mockQueueRepo {
	m := &mockQueueRepo{store: make(map[string]*WorkQueue)}
	for _, wq := range DefaultQueues() {
		cp := wq
		m.store[wq.Name] = &cp
	}
	return m
}

func (m *mockQueueRepo) Get(_ context.Context, name string) (*WorkQueue, error) {
	wq, ok := m.store[name]
	if !ok {
		return nil, apperr.NotFound("work queue not found")
	}
	cp := *wq
	return &cp, nil
}

func (m *mockQueueRepo) List(_ context.Context) ([]*WorkQueue, error) {
	var r []*WorkQueue
	for _, wq := range m.store {
		r = append(r, wq)
	}
	return r, nil
}

func (m *mockQueueRepo) Upsert(_ context.Context, wq *WorkQueue) error {
	cp := *wq
	m.store[wq.Name] = &cp
	return nil
}

type subKey struct{ username, queue string }

type mockSubscriptionRepo struct {
	store map[subKey]*Subscription
}

func newMockSubscriptionRepo() *mockSubscriptionRepo {
	return &mockSubscriptionRepo{store: make(map[subKey]*Subscription)}
}

func (m *mockSubscriptionRepo) Get(_ context.Context, username, queueName string) (*Subscription, error) {
	s, ok := m.store[subKey{username, queueName}]
	if !ok {
		return nil, apperr.NotFound("subscription not found")
	}
	cp := *s
	return &cp, nil
}

func (m *mockSubscriptionRepo) Upsert(_ context.Context, sub *Subscription) error {
	key := subKey{sub.Username, sub.QueueName}
	if existing, ok := m.store[key]; ok {
		existing.GrantedBy = sub.GrantedBy
		sub.ID = existing.ID
		return nil
	}
	sub.ID = uuid.New()
	cp := *sub
	m.store[key] = &cp
	return nil
}

func (m *mockSubscriptionRepo) Delete(_ context.Context, username, queueName string) error {
	key := subKey{username, queueName}
	if _, ok := m.store[key]; !ok {
		return apperr.NotFound("subscription not found")
	}
	delete(m.store, key)
	return nil
}

func (m *mockSubscriptionRepo) ListByUser(_ context.Context, username string) ([]*Subscription, error) {
	var r []*Subscription
	for _, s := range m.store {
		if s.Username == username {
			r = append(r, s)
		}
	}
	return r, nil
}

func (m *mockSubscriptionRepo) ListByQueue(_ context.Context, queueName string) ([]*Subscription, error) {
	var r []*Subscription
	for _, s := range m.store {
		if s.QueueName == queueName {
			r = append(r, s)
		}
	}
	return r, nil
}

func newTestService() (*Service, *mockQueueRepo, *mockSubscriptionRepo) {
	queues := newMockQueueRepo()
	subs := newMockSubscriptionRepo()
	return NewService(queues, subs), queues, subs
}

// -- Tests --

func TestCanView_RoleCategoryMatch(t *testing.T) {
	svc, _, _ := newTestService()
	worker := Viewer{Username: "alice", Roles: []string{CategoryCaseMgmt}}

	ok, err := svc.CanView(context.Background(), worker, "CASE_OWNER")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("case management role should see CASE_OWNER")
	}

	ok, err = svc.CanView(context.Background(), worker, "QA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("case management role should not see QA without a subscription")
	}
}

func TestCanView_SupervisorOnly(t *testing.T) {
	svc, _, _ := newTestService()

	supervisor := Viewer{Username: "sup", Supervisor: true}
	ok, err := svc.CanView(context.Background(), supervisor, "SW_RESERVE_ASSIGNED")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("supervisor should see supervisor-only queues")
	}

	// A category role alone does not grant a supervisor-only queue.
	qaWorker := Viewer{Username: "alice", Roles: []string{CategoryQA}}
	ok, err = svc.CanView(context.Background(), qaWorker, "QA_SUPERVISOR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("non-supervisor should not see QA_SUPERVISOR")
	}
}

func TestCanView_Subscription(t *testing.T) {
	svc, _, subs := newTestService()
	viewer := Viewer{Username: "alice", Roles: []string{CategoryCaseMgmt}}

	if _, err := svc.Subscribe(context.Background(), "alice", "QA", Viewer{Username: "alice"}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	ok, err := svc.CanView(context.Background(), viewer, "QA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("subscription should grant visibility")
	}
	if len(subs.store) != 1 {
		t.Errorf("expected one subscription row, got %d", len(subs.store))
	}
}

func TestCanView_OutOfBandRowOnNonSubscribableQueue(t *testing.T) {
	svc, _, subs := newTestService()
	// Row inserted around the service on a supervisor-only queue.
	subs.store[subKey{"alice", "SW_RESERVE_ASSIGNED"}] = &Subscription{
		ID: uuid.New(), Username: "alice", QueueName: "SW_RESERVE_ASSIGNED", GrantedBy: "alice",
	}

	ok, err := svc.CanView(context.Background(), Viewer{Username: "alice"}, "SW_RESERVE_ASSIGNED")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("out-of-band subscription row must not grant a non-subscribable queue")
	}
}

func TestSubscribe_SupervisorOnlyQueueRejected(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Subscribe(context.Background(), "alice", "SW_RESERVE_ASSIGNED", Viewer{Username: "alice"})
	if !apperr.IsAuthorizationDenied(err) {
		t.Fatalf("expected authorization denied, got %v", err)
	}
}

func TestSubscribe_NotSubscribableRejected(t *testing.T) {
	svc, queues, _ := newTestService()
	queues.store["CASE_OWNER"].SubscriptionAllowed = false

	_, err := svc.Subscribe(context.Background(), "alice", "CASE_OWNER", Viewer{Username: "alice"})
	if !apperr.IsAuthorizationDenied(err) {
		t.Fatalf("expected authorization denied, got %v", err)
	}
}

func TestSubscribe_ForOtherUserRequiresSupervisor(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Subscribe(context.Background(), "bob", "QA", Viewer{Username: "alice"})
	if !apperr.IsAuthorizationDenied(err) {
		t.Fatalf("expected authorization denied, got %v", err)
	}

	sub, err := svc.Subscribe(context.Background(), "bob", "QA", Viewer{Username: "sup", Supervisor: true})
	if err != nil {
		t.Fatalf("supervisor grant: %v", err)
	}
	if sub.GrantedBy != "sup" {
		t.Errorf("expected granted_by sup, got %s", sub.GrantedBy)
	}
}

func TestSubscribe_UpsertNotDuplicate(t *testing.T) {
	svc, _, subs := newTestService()

	if _, err := svc.Subscribe(context.Background(), "alice", "QA", Viewer{Username: "alice"}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := svc.Subscribe(context.Background(), "alice", "QA", Viewer{Username: "sup", Supervisor: true}); err != nil {
		t.Fatalf("re-subscribe: %v", err)
	}

	if len(subs.store) != 1 {
		t.Fatalf("re-subscribing must update, not duplicate; got %d rows", len(subs.store))
	}
	if subs.store[subKey{"alice", "QA"}].GrantedBy != "sup" {
		t.Errorf("expected granted_by updated to sup")
	}
}

func TestUnsubscribe(t *testing.T) {
	svc, _, subs := newTestService()
	if _, err := svc.Subscribe(context.Background(), "alice", "QA", Viewer{Username: "alice"}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := svc.Unsubscribe(context.Background(), "alice", "QA", Viewer{Username: "bob"}); !apperr.IsAuthorizationDenied(err) {
		t.Fatalf("expected authorization denied for other user, got %v", err)
	}
	if err := svc.Unsubscribe(context.Background(), "alice", "QA", Viewer{Username: "alice"}); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if len(subs.store) != 0 {
		t.Errorf("expected subscription removed")
	}
}

func TestVisibleQueues(t *testing.T) {
	svc, _, _ := newTestService()
	viewer := Viewer{Username: "alice", Roles: []string{CategoryQA}}
	if _, err := svc.Subscribe(context.Background(), "alice", "TRAVEL_CLAIM", Viewer{Username: "alice"}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	visible, err := svc.VisibleQueues(context.Background(), viewer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := make(map[string]bool, len(visible))
	for _, wq := range visible {
		names[wq.Name] = true
	}
	if !names["QA"] {
		t.Error("expected QA visible via role")
	}
	if !names["TRAVEL_CLAIM"] {
		t.Error("expected TRAVEL_CLAIM visible via subscription")
	}
	if names["QA_SUPERVISOR"] {
		t.Error("supervisor-only queue must not be visible to a non-supervisor")
	}
	if names["CASE_OWNER"] {
		t.Error("unrelated category queue must not be visible")
	}
}

func TestSeedQueues(t *testing.T) {
	svc, queues, _ := newTestService()
	queues.store = make(map[string]*WorkQueue)

	n, err := svc.SeedQueues(context.Background())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != len(DefaultQueues()) {
		t.Errorf("expected %d queues seeded, got %d", len(DefaultQueues()), n)
	}
	if wq, ok := queues.store["ESCALATED"]; !ok || !wq.SupervisorOnly {
		t.Error("expected supervisor-only ESCALATED queue in catalog")
	}
}
