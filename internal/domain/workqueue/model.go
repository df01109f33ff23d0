// Package workqueue implements the work queue directory: the queue catalog,
// role/subscription visibility resolution, and supervisor-managed
// subscriptions.
package workqueue

import (
	"time"

	"github.com/google/uuid"
)

// Queue categories.
const (
	CategoryCaseMgmt    = "CASE_MGMT"
	CategoryQA          = "QA"
	CategoryPayroll     = "PAYROLL"
	CategoryTraining    = "TRAINING"
	CategoryProvider    = "PROVIDER"
	CategoryInternalOps = "INTERNAL_OPS"
	CategorySupervisor  = "SUPERVISOR"
)

// WorkQueue is a catalog entry, keyed by name.
type WorkQueue struct {
	Name                string    `db:"name" json:"name"`
	DisplayName         string    `db:"display_name" json:"display_name"`
	Description         string    `db:"description" json:"description"`
	Category            string    `db:"category" json:"category"`
	SupervisorOnly      bool      `db:"supervisor_only" json:"supervisor_only"`
	SubscriptionAllowed bool      `db:"subscription_allowed" json:"subscription_allowed"`
	SensitivityLevel    int       `db:"sensitivity_level" json:"sensitivity_level"`
	Active              bool      `db:"active" json:"active"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// Subscription grants a user visibility into a queue. (Username, QueueName)
// is unique; re-subscribing updates the existing row.
type Subscription struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	QueueName string    `db:"queue_name" json:"queue_name"`
	GrantedBy string    `db:"granted_by" json:"granted_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
