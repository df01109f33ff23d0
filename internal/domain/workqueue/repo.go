package workqueue

import "context"

type QueueRepository interface {
	Get(ctx context.Context, name string) (*WorkQueue, error)
	List(ctx context.Context) ([]*WorkQueue, error)
	// Upsert seeds or refreshes a catalog entry, keyed by name.
	Upsert(ctx context.Context, wq *WorkQueue) error
}

type SubscriptionRepository interface {
	Get(ctx context.Context, username, queueName string) (*Subscription, error)
	// Upsert inserts or updates on the unique (username, queue_name) pair.
	Upsert(ctx context.Context, sub *Subscription) error
	Delete(ctx context.Context, username, queueName string) error
	ListByUser(ctx context.Context, username string) ([]*Subscription, error)
	ListByQueue(ctx context.Context, queueName string) ([]*Subscription, error)
}
