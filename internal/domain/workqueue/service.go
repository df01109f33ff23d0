package workqueue

import (
	"context"

	"github.com/casework/casework/internal/apperr"
)

// Viewer is the identity a visibility check runs against: the caller's role
// set and supervisor flag, supplied by the identity provider.
type Viewer struct {
	Username   string
	Roles      []string
	Supervisor bool
}

// HasRole reports whether the viewer holds a role matching the category.
func (v Viewer) HasRole(category string) bool {
	for _, r := range v.Roles {
		if r == category {
			return true
		}
	}
	return false
}

type Service struct {
	queues QueueRepository
	subs   SubscriptionRepository
}

func NewService(queues QueueRepository, subs SubscriptionRepository) *Service {
	return &Service{queues: queues, subs: subs}
}

func (s *Service) GetQueue(ctx context.Context, name string) (*WorkQueue, error) {
	return s.queues.Get(ctx, name)
}

func (s *Service) ListQueues(ctx context.Context) ([]*WorkQueue, error) {
	return s.queues.List(ctx)
}

// CanView resolves queue visibility for a viewer: a category role grants the
// queue unless it is supervisor-only, the supervisor flag grants
// supervisor-only queues, and a subscription row grants a queue only while
// it allows subscriptions. Inactive queues are visible to no one.
func (s *Service) CanView(ctx context.Context, v Viewer, queueName string) (bool, error) {
	wq, err := s.queues.Get(ctx, queueName)
	if err != nil {
		return false, err
	}
	if !wq.Active {
		return false, nil
	}
	if v.HasRole(wq.Category) && !wq.SupervisorOnly {
		return true, nil
	}
	if v.Supervisor && wq.SupervisorOnly {
		return true, nil
	}
	if wq.SubscriptionAllowed {
		if _, err := s.subs.Get(ctx, v.Username, queueName); err == nil {
			return true, nil
		} else if !apperr.IsNotFound(err) {
			return false, err
		}
	}
	return false, nil
}

// VisibleQueues filters the catalog down to what the viewer can see.
func (s *Service) VisibleQueues(ctx context.Context, v Viewer) ([]*WorkQueue, error) {
	all, err := s.queues.List(ctx)
	if err != nil {
		return nil, err
	}
	subs, err := s.subs.ListByUser(ctx, v.Username)
	if err != nil {
		return nil, err
	}
	subscribed := make(map[string]bool, len(subs))
	for _, sub := range subs {
		subscribed[sub.QueueName] = true
	}

	var visible []*WorkQueue
	for _, wq := range all {
		if !wq.Active {
			continue
		}
		switch {
		case v.HasRole(wq.Category) && !wq.SupervisorOnly:
		case v.Supervisor && wq.SupervisorOnly:
		case wq.SubscriptionAllowed && subscribed[wq.Name]:
		default:
			continue
		}
		visible = append(visible, wq)
	}
	return visible, nil
}

// Subscribe grants username visibility into a queue. Granting for another
// user requires the granter to be a supervisor; supervisor-only and
// non-subscribable queues reject everyone.
func (s *Service) Subscribe(ctx context.Context, username, queueName string, granter Viewer) (*Subscription, error) {
	if username == "" {
		return nil, apperr.Validation("username is required")
	}
	if username != granter.Username && !granter.Supervisor {
		return nil, apperr.AuthorizationDenied("only supervisors may manage subscriptions for other users")
	}

	wq, err := s.queues.Get(ctx, queueName)
	if err != nil {
		return nil, err
	}
	if !wq.Active {
		return nil, apperr.Validation("queue %s is inactive", queueName)
	}
	if wq.SupervisorOnly {
		return nil, apperr.AuthorizationDenied("queue %s is supervisor-only and cannot be subscribed to", queueName)
	}
	if !wq.SubscriptionAllowed {
		return nil, apperr.AuthorizationDenied("queue %s does not allow subscriptions", queueName)
	}

	sub := &Subscription{
		Username:  username,
		QueueName: queueName,
		GrantedBy: granter.Username,
	}
	if err := s.subs.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Unsubscribe removes a grant. Removing another user's grant requires a
// supervisor.
func (s *Service) Unsubscribe(ctx context.Context, username, queueName string, caller Viewer) error {
	if username != caller.Username && !caller.Supervisor {
		return apperr.AuthorizationDenied("only supervisors may manage subscriptions for other users")
	}
	return s.subs.Delete(ctx, username, queueName)
}

func (s *Service) ListUserSubscriptions(ctx context.Context, username string) ([]*Subscription, error) {
	return s.subs.ListByUser(ctx, username)
}

func (s *Service) ListQueueSubscribers(ctx context.Context, queueName string) ([]*Subscription, error) {
	if _, err := s.queues.Get(ctx, queueName); err != nil {
		return nil, err
	}
	return s.subs.ListByQueue(ctx, queueName)
}

// SeedQueues upserts the default catalog, for the seed CLI command.
func (s *Service) SeedQueues(ctx context.Context) (int, error) {
	defaults := DefaultQueues()
	for i := range defaults {
		if err := s.queues.Upsert(ctx, &defaults[i]); err != nil {
			return i, err
		}
	}
	return len(defaults), nil
}
