package workqueue

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casework/casework/internal/apperr"
	"github.com/casework/casework/internal/platform/db"
)

type queueRepoPG struct{ pool *pgxpool.Pool }

func NewQueueRepoPG(pool *pgxpool.Pool) QueueRepository {
	return &queueRepoPG{pool: pool}
}

const queueCols = `name, display_name, description, category, supervisor_only,
	subscription_allowed, sensitivity_level, active, created_at`

func scanQueue(row pgx.Row) (*WorkQueue, error) {
	var wq WorkQueue
	err := row.Scan(&wq.Name, &wq.DisplayName, &wq.Description, &wq.Category,
		&wq.SupervisorOnly, &wq.SubscriptionAllowed, &wq.SensitivityLevel,
		&wq.Active, &wq.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("work queue not found")
	}
	return &wq, err
}

func (r *queueRepoPG) Get(ctx context.Context, name string) (*WorkQueue, error) {
	return scanQueue(db.Runner(ctx, r.pool).QueryRow(ctx,
		`SELECT `+queueCols+` FROM work_queue WHERE name = $1`, name))
}

func (r *queueRepoPG) List(ctx context.Context) ([]*WorkQueue, error) {
	rows, err := db.Runner(ctx, r.pool).Query(ctx,
		`SELECT `+queueCols+` FROM work_queue ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*WorkQueue
	for rows.Next() {
		wq, err := scanQueue(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, wq)
	}
	return items, rows.Err()
}

func (r *queueRepoPG) Upsert(ctx context.Context, wq *WorkQueue) error {
	_, err := db.Runner(ctx, r.pool).Exec(ctx, `
		INSERT INTO work_queue (name, display_name, description, category,
			supervisor_only, subscription_allowed, sensitivity_level, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (name) DO UPDATE SET
			display_name=EXCLUDED.display_name, description=EXCLUDED.description,
			category=EXCLUDED.category, supervisor_only=EXCLUDED.supervisor_only,
			subscription_allowed=EXCLUDED.subscription_allowed,
			sensitivity_level=EXCLUDED.sensitivity_level, active=EXCLUDED.active`,
		wq.Name, wq.DisplayName, wq.Description, wq.Category,
		wq.SupervisorOnly, wq.SubscriptionAllowed, wq.SensitivityLevel, wq.Active)
	return err
}

type subscriptionRepoPG struct{ pool *pgxpool.Pool }

func NewSubscriptionRepoPG(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepoPG{pool: pool}
}

const subCols = `id, username, queue_name, granted_by, created_at, updated_at`

func scanSubscription(row pgx.Row) (*Subscription, error) {
	var s Subscription
	err := row.Scan(&s.ID, &s.Username, &s.QueueName, &s.GrantedBy, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("subscription not found")
	}
	return &s, err
}

func (r *subscriptionRepoPG) Get(ctx context.Context, username, queueName string) (*Subscription, error) {
	return scanSubscription(db.Runner(ctx, r.pool).QueryRow(ctx,
		`SELECT `+subCols+` FROM work_queue_subscription WHERE username = $1 AND queue_name = $2`,
		username, queueName))
}

func (r *subscriptionRepoPG) Upsert(ctx context.Context, sub *Subscription) error {
	sub.ID = uuid.New()
	_, err := db.Runner(ctx, r.pool).Exec(ctx, `
		INSERT INTO work_queue_subscription (id, username, queue_name, granted_by)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (username, queue_name) DO UPDATE SET
			granted_by=EXCLUDED.granted_by, updated_at=NOW()`,
		sub.ID, sub.Username, sub.QueueName, sub.GrantedBy)
	return err
}

func (r *subscriptionRepoPG) Delete(ctx context.Context, username, queueName string) error {
	tag, err := db.Runner(ctx, r.pool).Exec(ctx,
		`DELETE FROM work_queue_subscription WHERE username = $1 AND queue_name = $2`,
		username, queueName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("subscription not found")
	}
	return nil
}

func (r *subscriptionRepoPG) ListByUser(ctx context.Context, username string) ([]*Subscription, error) {
	return r.list(ctx, `username = $1`, username)
}

func (r *subscriptionRepoPG) ListByQueue(ctx context.Context, queueName string) ([]*Subscription, error) {
	return r.list(ctx, `queue_name = $1`, queueName)
}

func (r *subscriptionRepoPG) list(ctx context.Context, cond string, arg any) ([]*Subscription, error) {
	rows, err := db.Runner(ctx, r.pool).Query(ctx,
		`SELECT `+subCols+` FROM work_queue_subscription WHERE `+cond+` ORDER BY queue_name`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
