package cases

import (
	"time"

	"github.com/google/uuid"
)

// Case statuses. ACTIVE/INACTIVE are derived dashboard groupings and never
// stored here.
const (
	StatusPending              = "PENDING"
	StatusEligible             = "ELIGIBLE"
	StatusPresumptiveEligible  = "PRESUMPTIVE_ELIGIBLE"
	StatusOnLeave              = "ON_LEAVE"
	StatusTerminated           = "TERMINATED"
	StatusDenied               = "DENIED"
	StatusApplicationWithdrawn = "APPLICATION_WITHDRAWN"
	StatusInProgress           = "IN_PROGRESS"
)

// Lifecycle actions recorded in the status history.
const (
	ActionCreate           = "CREATE"
	ActionApprove          = "APPROVE"
	ActionDeny             = "DENY"
	ActionTerminate        = "TERMINATE"
	ActionLeave            = "LEAVE"
	ActionWithdraw         = "WITHDRAW"
	ActionRescind          = "RESCIND"
	ActionReactivate       = "REACTIVATE"
	ActionTransferInitiate = "TRANSFER_INITIATE"
	ActionTransferComplete = "TRANSFER_COMPLETE"
)

// Inter-county transfer states.
const (
	TransferInitiated = "INITIATED"
	TransferCompleted = "COMPLETED"
)

// Case maps to the case_record table. The Previous* fields are the restore
// snapshot captured by every suspending/terminating action; rescind reads
// them back verbatim.
type Case struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	CaseNumber      string     `db:"case_number" json:"case_number"`
	CaseType        *string    `db:"case_type" json:"case_type,omitempty"`
	County          string     `db:"county" json:"county"`
	Status          string     `db:"status" json:"status"`
	CaseOwner       *string    `db:"case_owner" json:"case_owner,omitempty"`
	ApplicationDate *time.Time `db:"application_date" json:"application_date,omitempty"`
	EligibilityDate *time.Time `db:"eligibility_date" json:"eligibility_date,omitempty"`
	AuthStartDate   *time.Time `db:"auth_start_date" json:"auth_start_date,omitempty"`
	AuthEndDate     *time.Time `db:"auth_end_date" json:"auth_end_date,omitempty"`
	HealthCertDue   *time.Time `db:"health_cert_due" json:"health_cert_due,omitempty"`
	MediCalStatus   *string    `db:"medi_cal_status" json:"medi_cal_status,omitempty"`

	TerminationReason *string    `db:"termination_reason" json:"termination_reason,omitempty"`
	TerminationDate   *time.Time `db:"termination_date" json:"termination_date,omitempty"`
	DenialReason      *string    `db:"denial_reason" json:"denial_reason,omitempty"`
	DenialDate        *time.Time `db:"denial_date" json:"denial_date,omitempty"`
	LeaveReason       *string    `db:"leave_reason" json:"leave_reason,omitempty"`
	LeaveDate         *time.Time `db:"leave_date" json:"leave_date,omitempty"`
	WithdrawalReason  *string    `db:"withdrawal_reason" json:"withdrawal_reason,omitempty"`
	WithdrawalDate    *time.Time `db:"withdrawal_date" json:"withdrawal_date,omitempty"`
	RescindReason     *string    `db:"rescind_reason" json:"rescind_reason,omitempty"`
	RescindDate       *time.Time `db:"rescind_date" json:"rescind_date,omitempty"`

	ResourceSuspensionEnd *time.Time `db:"resource_suspension_end" json:"resource_suspension_end,omitempty"`

	PreviousStatus        *string    `db:"previous_status" json:"previous_status,omitempty"`
	PreviousAuthStartDate *time.Time `db:"previous_auth_start_date" json:"previous_auth_start_date,omitempty"`
	PreviousAuthEndDate   *time.Time `db:"previous_auth_end_date" json:"previous_auth_end_date,omitempty"`

	TransferStatus  *string    `db:"transfer_status" json:"transfer_status,omitempty"`
	SendingCounty   *string    `db:"sending_county" json:"sending_county,omitempty"`
	ReceivingCounty *string    `db:"receiving_county" json:"receiving_county,omitempty"`
	TransferDate    *time.Time `db:"transfer_date" json:"transfer_date,omitempty"`
	// TransferPreviousStatus freezes the pre-transfer status for the
	// transfer window. It is separate from PreviousStatus so a transfer
	// never disturbs the rescind restore snapshot.
	TransferPreviousStatus *string `db:"transfer_previous_status" json:"transfer_previous_status,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasRestoreSnapshot reports whether the case carries the state a rescind
// would restore.
func (c *Case) HasRestoreSnapshot() bool {
	return c.PreviousStatus != nil && *c.PreviousStatus != ""
}

// snapshotRestoreState captures current status and authorization window
// before a suspending/terminating action mutates them.
func (c *Case) snapshotRestoreState() {
	status := c.Status
	c.PreviousStatus = &status
	c.PreviousAuthStartDate = c.AuthStartDate
	c.PreviousAuthEndDate = c.AuthEndDate
}

// StatusHistory is one append-only audit row per transition.
type StatusHistory struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	CaseID            uuid.UUID  `db:"case_id" json:"case_id"`
	PreviousStatus    *string    `db:"previous_status" json:"previous_status,omitempty"`
	NewStatus         string     `db:"new_status" json:"new_status"`
	Action            string     `db:"action" json:"action"`
	ReasonCode        *string    `db:"reason_code" json:"reason_code,omitempty"`
	ReasonDescription *string    `db:"reason_description" json:"reason_description,omitempty"`
	EffectiveDate     *time.Time `db:"effective_date" json:"effective_date,omitempty"`
	AuthEndDate       *time.Time `db:"auth_end_date" json:"auth_end_date,omitempty"`
	ChangedBy         string     `db:"changed_by" json:"changed_by"`
	ChangedAt         time.Time  `db:"changed_at" json:"changed_at"`
}

// StatusRescind is the richer snapshot written only on rescind: the generic
// history row does not carry the before/after pair, the Medi-Cal eligibility
// snapshot, or the generated notice.
type StatusRescind struct {
	ID             uuid.UUID `db:"id" json:"id"`
	CaseID         uuid.UUID `db:"case_id" json:"case_id"`
	BeforeStatus   string    `db:"before_status" json:"before_status"`
	AfterStatus    string    `db:"after_status" json:"after_status"`
	RescindReason  string    `db:"rescind_reason" json:"rescind_reason"`
	RescindDate    time.Time `db:"rescind_date" json:"rescind_date"`
	LastMediCal    *string   `db:"last_medi_cal" json:"last_medi_cal,omitempty"`
	NoticeGenerated string   `db:"notice_generated" json:"notice_generated"`
	ChangedBy      string    `db:"changed_by" json:"changed_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Leave is written when a case is suspended, capturing the dates a later
// restore needs without reverse-engineering history.
type Leave struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	CaseID                uuid.UUID  `db:"case_id" json:"case_id"`
	LeaveReason           string     `db:"leave_reason" json:"leave_reason"`
	LeaveDate             time.Time  `db:"leave_date" json:"leave_date"`
	AuthEndDate           *time.Time `db:"auth_end_date" json:"auth_end_date,omitempty"`
	ResourceSuspensionEnd *time.Time `db:"resource_suspension_end" json:"resource_suspension_end,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
}
