// Package cases implements the case status lifecycle engine: source-state
// validated transitions with restore snapshots, append-only audit history,
// and exact-state rescind.
package cases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/casework/casework/internal/apperr"
	"github.com/casework/casework/internal/domain/codes"
	"github.com/casework/casework/internal/platform/calendar"
	"github.com/casework/casework/internal/platform/events"
)

// TxRunner wraps a function in a storage transaction. Lifecycle transitions
// run inside one so the row lock taken by GetForUpdate serializes them per
// case and the status update commits atomically with its history row.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// PassthroughTx runs fn without a transaction, for tests against mock repos.
func PassthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// TaskCreator is the slice of the task engine the lifecycle engine needs:
// spawning a typed task against a case.
type TaskCreator interface {
	CreateForCase(ctx context.Context, taskTypeCode string, caseID uuid.UUID, assignee, detail string) error
}

// TaskTypeCaseAssignment is the task type spawned when a case is created or
// reactivated with an assigned worker.
const TaskTypeCaseAssignment = "CI-111160"

type Service struct {
	cases    CaseRepository
	history  HistoryRepository
	rescinds RescindRepository
	leaves   LeaveRepository
	tasks    TaskCreator
	pub      events.Publisher
	cal      calendar.BusinessCalendar
	tx       TxRunner
}

func NewService(cases CaseRepository, history HistoryRepository, rescinds RescindRepository,
	leaves LeaveRepository, tasks TaskCreator, pub events.Publisher,
	cal calendar.BusinessCalendar, tx TxRunner) *Service {
	return &Service{
		cases:    cases,
		history:  history,
		rescinds: rescinds,
		leaves:   leaves,
		tasks:    tasks,
		pub:      pub,
		cal:      cal,
		tx:       tx,
	}
}

// CreateCaseInput carries the fields needed to open a new case.
type CreateCaseInput struct {
	County        string     `json:"county"`
	CaseType      *string    `json:"case_type,omitempty"`
	CaseOwner     *string    `json:"case_owner,omitempty"`
	AuthStartDate *time.Time `json:"auth_start_date,omitempty"`
	AuthEndDate   *time.Time `json:"auth_end_date,omitempty"`
	MediCalStatus *string    `json:"medi_cal_status,omitempty"`
}

// CreateCase opens a PENDING case, writes its CREATE history row, and spawns
// a case-assignment task when an owner is named.
func (s *Service) CreateCase(ctx context.Context, in CreateCaseInput, actor string) (*Case, error) {
	if in.County == "" {
		return nil, apperr.Validation("county is required")
	}

	now := s.cal.Now()
	appDate := now
	c := &Case{
		CaseNumber:      generateCaseNumber(in.County, now),
		CaseType:        in.CaseType,
		County:          in.County,
		Status:          StatusPending,
		CaseOwner:       in.CaseOwner,
		ApplicationDate: &appDate,
		AuthStartDate:   in.AuthStartDate,
		AuthEndDate:     in.AuthEndDate,
		MediCalStatus:   in.MediCalStatus,
	}

	err := s.tx(ctx, func(ctx context.Context) error {
		if err := s.cases.Create(ctx, c); err != nil {
			return err
		}
		return s.appendHistory(ctx, c, nil, ActionCreate, nil, "Case created with status PENDING", &now, actor)
	})
	if err != nil {
		return nil, err
	}

	if c.CaseOwner != nil && s.tasks != nil {
		if err := s.tasks.CreateForCase(ctx, TaskTypeCaseAssignment, c.ID, *c.CaseOwner,
			"New case assignment: "+c.CaseNumber); err != nil {
			return nil, fmt.Errorf("create assignment task: %w", err)
		}
	}

	s.publish(ctx, "CASE_CREATE", c, actor, "")
	return c, nil
}

// Approve moves a PENDING or PRESUMPTIVE_ELIGIBLE case to ELIGIBLE.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, actor string) (*Case, error) {
	c, err := s.transition(ctx, id, func(ctx context.Context, c *Case) error {
		if c.Status != StatusPending && c.Status != StatusPresumptiveEligible {
			return apperr.InvalidTransition("case must be Pending or Presumptive Eligible to approve, is %s", c.Status)
		}
		now := s.cal.Now()
		prev := c.Status
		c.Status = StatusEligible
		c.EligibilityDate = &now
		return s.appendHistory(ctx, c, &prev, ActionApprove, nil, "Case approved", &now, actor)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "CASE_APPROVE", c, actor, "")
	return c, nil
}

// Deny moves a PENDING case to DENIED with a catalogued denial reason code.
func (s *Service) Deny(ctx context.Context, id uuid.UUID, reason, actor string) (*Case, error) {
	desc, ok := codes.DenialReasons.Description(reason)
	if !ok || !codes.DenialReasons.Enabled(reason) {
		return nil, apperr.Validation("reason code %s is not valid for denial", reason)
	}
	c, err := s.transition(ctx, id, func(ctx context.Context, c *Case) error {
		if c.Status != StatusPending {
			return apperr.InvalidTransition("case must be Pending to deny, is %s", c.Status)
		}
		now := s.cal.Now()
		prev := c.Status
		c.snapshotRestoreState()
		c.Status = StatusDenied
		c.DenialReason = &reason
		c.DenialDate = &now
		return s.appendHistory(ctx, c, &prev, ActionDeny, &reason, desc, &now, actor)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "CASE_DENY", c, actor, reason)
	return c, nil
}

// Terminate ends an active case. The authorization end date defaults to
// today and may be at most one month in the future.
func (s *Service) Terminate(ctx context.Context, id uuid.UUID, reason string, authEndDate *time.Time, actor string) (*Case, error) {
	desc, ok := codes.TerminationReasons.Description(reason)
	if !ok || !codes.TerminationReasons.Enabled(reason) {
		return nil, apperr.Validation("reason code %s is not valid for termination", reason)
	}

	c, err := s.transition(ctx, id, func(ctx context.Context, c *Case) error {
		switch c.Status {
		case StatusEligible, StatusPresumptiveEligible, StatusOnLeave:
		default:
			return apperr.InvalidTransition("case must be Eligible, Presumptive Eligible, or On Leave to terminate, is %s", c.Status)
		}
		if err := s.checkTransferNotInProgress(c, "terminated"); err != nil {
			return err
		}

		now := s.cal.Now()
		effective := now
		if authEndDate != nil {
			effective = *authEndDate
		}
		if effective.After(now.AddDate(0, 1, 0)) {
			return apperr.Validation("termination authorization end date may not be more than one month in the future")
		}

		prev := c.Status
		c.snapshotRestoreState()
		c.Status = StatusTerminated
		c.TerminationReason = &reason
		c.TerminationDate = &effective
		c.AuthEndDate = &effective
		return s.appendHistory(ctx, c, &prev, ActionTerminate, &reason, desc, &effective, actor)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "CASE_TERMINATE", c, actor, reason)
	return c, nil
}

// PlaceOnLeave suspends an active case. The undervalue-disposal reason
// requires a resource suspension end date.
func (s *Service) PlaceOnLeave(ctx context.Context, id uuid.UUID, reason string, authEndDate time.Time, suspensionEnd *time.Time, actor string) (*Case, error) {
	desc, ok := codes.LeaveReasons.Description(reason)
	if !ok || !codes.LeaveReasons.Enabled(reason) {
		return nil, apperr.Validation("reason code %s is not valid for leave", reason)
	}
	if reason == codes.LeaveReasonUndervalueDisposal && suspensionEnd == nil {
		return nil, apperr.Validation("leave reason %s requires a resource suspension end date", reason)
	}

	c, err := s.transition(ctx, id, func(ctx context.Context, c *Case) error {
		if c.Status != StatusEligible && c.Status != StatusPresumptiveEligible {
			return apperr.InvalidTransition("case must be Eligible or Presumptive Eligible to place on leave, is %s", c.Status)
		}
		if err := s.checkTransferNotInProgress(c, "placed on leave"); err != nil {
			return err
		}

		now := s.cal.Now()
		if authEndDate.After(now.AddDate(0, 1, 0)) {
			return apperr.Validation("leave authorization end date may not be more than one month in the future")
		}

		prev := c.Status
		c.snapshotRestoreState()
		c.Status = StatusOnLeave
		c.LeaveReason = &reason
		c.LeaveDate = &now
		c.AuthEndDate = &authEndDate
		c.ResourceSuspensionEnd = suspensionEnd

		if err := s.leaves.Append(ctx, &Leave{
			CaseID:                c.ID,
			LeaveReason:           reason,
			LeaveDate:             now,
			AuthEndDate:           &authEndDate,
			ResourceSuspensionEnd: suspensionEnd,
		}); err != nil {
			return err
		}
		return s.appendHistory(ctx, c, &prev, ActionLeave, &reason, desc, &authEndDate, actor)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "CASE_LEAVE", c, actor, reason)
	return c, nil
}

// Withdraw moves a PENDING application to APPLICATION_WITHDRAWN. The
// withdrawal date may not be in the future or before the application date.
func (s *Service) Withdraw(ctx context.Context, id uuid.UUID, reason string, withdrawalDate *time.Time, actor string) (*Case, error) {
	desc, ok := codes.WithdrawalReasons.Description(reason)
	if !ok || !codes.WithdrawalReasons.Enabled(reason) {
		return nil, apperr.Validation("reason code %s is not valid for withdrawal", reason)
	}

	c, err := s.transition(ctx, id, func(ctx context.Context, c *Case) error {
		if c.Status != StatusPending {
			return apperr.InvalidTransition("only pending applications can be withdrawn, case is %s", c.Status)
		}

		now := s.cal.Now()
		effective := now
		if withdrawalDate != nil {
			effective = *withdrawalDate
		}
		if effective.After(now) {
			return apperr.Validation("withdrawal date must be on or before the current date")
		}
		if c.ApplicationDate != nil && effective.Before(*c.ApplicationDate) {
			return apperr.Validation("withdrawal date cannot be before the application date")
		}

		prev := c.Status
		c.snapshotRestoreState()
		c.Status = StatusApplicationWithdrawn
		c.WithdrawalReason = &reason
		c.WithdrawalDate = &effective
		return s.appendHistory(ctx, c, &prev, ActionWithdraw, &reason, desc, &effective, actor)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "CASE_WITHDRAW", c, actor, reason)
	return c, nil
}

// Rescind reverses a prior suspending/terminating action, restoring the
// exact pre-action status and authorization window from the snapshot. The
// automated Medi-Cal resolution code is rejected here; it is reachable only
// through ResolveMediCalCompliance.
func (s *Service) Rescind(ctx context.Context, id uuid.UUID, reason, actor string) (*Case, error) {
	if !codes.RescindReasons.Enabled(reason) {
		return nil, apperr.Validation("reason code %s is not valid for rescind", reason)
	}
	return s.rescind(ctx, id, reason, actor)
}

// ResolveMediCalCompliance is the automated rescind path: a resolved
// Medi-Cal non-compliance rescinds the related termination with the reserved
// reason code and its TR26 notice.
func (s *Service) ResolveMediCalCompliance(ctx context.Context, id uuid.UUID, actor string) (*Case, error) {
	return s.rescind(ctx, id, codes.RescindReasonMediCalResolved, actor)
}

func (s *Service) rescind(ctx context.Context, id uuid.UUID, reason, actor string) (*Case, error) {
	desc, ok := codes.RescindReasons.Description(reason)
	if !ok {
		return nil, apperr.Validation("unknown rescind reason code %s", reason)
	}
	notice := codes.NoticeForRescindReason(reason)

	c, err := s.transition(ctx, id, func(ctx context.Context, c *Case) error {
		switch c.Status {
		case StatusTerminated, StatusOnLeave, StatusDenied, StatusApplicationWithdrawn:
		default:
			return apperr.InvalidTransition("case must be Terminated, On Leave, Denied, or Application Withdrawn to rescind, is %s", c.Status)
		}
		if !c.HasRestoreSnapshot() {
			return apperr.InvalidTransition("case has no rescindable action: no restore snapshot present")
		}

		now := s.cal.Now()
		before := c.Status

		if err := s.rescinds.Append(ctx, &StatusRescind{
			CaseID:          c.ID,
			BeforeStatus:    before,
			AfterStatus:     *c.PreviousStatus,
			RescindReason:   reason,
			RescindDate:     now,
			LastMediCal:     c.MediCalStatus,
			NoticeGenerated: notice,
			ChangedBy:       actor,
		}); err != nil {
			return err
		}

		c.Status = *c.PreviousStatus
		c.AuthStartDate = c.PreviousAuthStartDate
		c.AuthEndDate = c.PreviousAuthEndDate
		c.RescindReason = &reason
		c.RescindDate = &now
		c.TerminationReason = nil
		c.TerminationDate = nil
		c.DenialReason = nil
		c.DenialDate = nil
		c.LeaveReason = nil
		c.LeaveDate = nil
		c.WithdrawalReason = nil
		c.WithdrawalDate = nil
		c.PreviousStatus = nil
		c.PreviousAuthStartDate = nil
		c.PreviousAuthEndDate = nil
		return s.appendHistory(ctx, c, &before, ActionRescind, &reason, desc, &now, actor)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "CASE_RESCIND", c, actor, notice)
	return c, nil
}

// Reactivate opens a new application on a closed case: status back to
// PENDING with a fresh application date. Not allowed the same day the
// closing action was taken.
func (s *Service) Reactivate(ctx context.Context, id uuid.UUID, assignedWorker, actor string) (*Case, error) {
	c, err := s.transition(ctx, id, func(ctx context.Context, c *Case) error {
		switch c.Status {
		case StatusTerminated, StatusDenied, StatusApplicationWithdrawn:
		default:
			return apperr.InvalidTransition("case must be Terminated, Denied, or Application Withdrawn to reactivate, is %s", c.Status)
		}

		now := s.cal.Now()
		actionDate := c.TerminationDate
		if actionDate == nil {
			actionDate = c.DenialDate
		}
		if actionDate == nil {
			actionDate = c.WithdrawalDate
		}
		if actionDate != nil && sameDay(*actionDate, now) {
			return apperr.InvalidTransition("case may not be reactivated the same day as a denial, termination, or withdrawal")
		}

		previous := c.Status
		c.Status = StatusPending
		c.ApplicationDate = &now
		if assignedWorker != "" {
			c.CaseOwner = &assignedWorker
		}
		c.TerminationReason = nil
		c.TerminationDate = nil
		c.DenialReason = nil
		c.DenialDate = nil
		c.WithdrawalReason = nil
		c.WithdrawalDate = nil
		c.RescindReason = nil
		c.RescindDate = nil
		c.PreviousStatus = nil
		c.PreviousAuthStartDate = nil
		c.PreviousAuthEndDate = nil
		return s.appendHistory(ctx, c, &previous, ActionReactivate, nil, "Reactivated from "+previous, &now, actor)
	})
	if err != nil {
		return nil, err
	}

	if assignedWorker != "" && s.tasks != nil {
		if err := s.tasks.CreateForCase(ctx, TaskTypeCaseAssignment, c.ID, assignedWorker,
			"New case assignment: "+c.CaseNumber); err != nil {
			return nil, fmt.Errorf("create assignment task: %w", err)
		}
	}

	s.publish(ctx, "CASE_REACTIVATE", c, actor, "")
	return c, nil
}

// InitiateTransfer starts an inter-county transfer: the case sits in
// IN_PROGRESS for the transfer window, blocking terminate/leave.
func (s *Service) InitiateTransfer(ctx context.Context, id uuid.UUID, receivingCounty, actor string) (*Case, error) {
	if receivingCounty == "" {
		return nil, apperr.Validation("receiving county is required")
	}
	c, err := s.transition(ctx, id, func(ctx context.Context, c *Case) error {
		if c.TransferStatus != nil && *c.TransferStatus == TransferInitiated {
			return apperr.InvalidTransition("case already has an in-progress inter-county transfer")
		}
		now := s.cal.Now()
		status := TransferInitiated
		sending := c.County
		prev := c.Status
		c.TransferStatus = &status
		c.SendingCounty = &sending
		c.ReceivingCounty = &receivingCounty
		c.TransferDate = &now
		c.TransferPreviousStatus = &prev
		c.Status = StatusInProgress
		return s.appendHistory(ctx, c, &prev, ActionTransferInitiate, nil,
			"Inter-county transfer initiated to "+receivingCounty, &now, actor)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "CASE_TRANSFER", c, actor, receivingCounty)
	return c, nil
}

// CompleteTransfer finishes an initiated transfer: the case moves to the
// receiving county and returns to its pre-transfer status.
func (s *Service) CompleteTransfer(ctx context.Context, id uuid.UUID, newOwner, actor string) (*Case, error) {
	c, err := s.transition(ctx, id, func(ctx context.Context, c *Case) error {
		if c.TransferStatus == nil || *c.TransferStatus != TransferInitiated {
			return apperr.InvalidTransition("case has no in-progress inter-county transfer")
		}
		now := s.cal.Now()
		status := TransferCompleted
		prev := c.Status
		c.TransferStatus = &status
		if c.ReceivingCounty != nil {
			c.County = *c.ReceivingCounty
		}
		if c.TransferPreviousStatus != nil {
			c.Status = *c.TransferPreviousStatus
			c.TransferPreviousStatus = nil
		}
		if newOwner != "" {
			c.CaseOwner = &newOwner
		}
		return s.appendHistory(ctx, c, &prev, ActionTransferComplete, nil,
			"Inter-county transfer completed", &now, actor)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "CASE_TRANSFER_COMPLETE", c, actor, "")
	return c, nil
}

func (s *Service) GetCase(ctx context.Context, id uuid.UUID) (*Case, error) {
	return s.cases.GetByID(ctx, id)
}

func (s *Service) GetCaseByNumber(ctx context.Context, caseNumber string) (*Case, error) {
	return s.cases.GetByNumber(ctx, caseNumber)
}

func (s *Service) ListCases(ctx context.Context, county, status string, limit, offset int) ([]*Case, int, error) {
	return s.cases.List(ctx, county, status, limit, offset)
}

func (s *Service) GetStatusHistory(ctx context.Context, caseID uuid.UUID) ([]*StatusHistory, error) {
	return s.history.ListByCase(ctx, caseID)
}

func (s *Service) GetRescinds(ctx context.Context, caseID uuid.UUID) ([]*StatusRescind, error) {
	return s.rescinds.ListByCase(ctx, caseID)
}

func (s *Service) GetLeaves(ctx context.Context, caseID uuid.UUID) ([]*Leave, error) {
	return s.leaves.ListByCase(ctx, caseID)
}

// transition runs mutate against a row-locked case inside one transaction
// and persists the result.
func (s *Service) transition(ctx context.Context, id uuid.UUID, mutate func(ctx context.Context, c *Case) error) (*Case, error) {
	var c *Case
	err := s.tx(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.cases.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := mutate(ctx, c); err != nil {
			return err
		}
		return s.cases.Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// appendHistory writes one audit row. previousStatus is the status the case
// held before this transition, captured by the caller before mutating it; it
// is deliberately not read from the restore snapshot, which some transitions
// never take and others clear.
func (s *Service) appendHistory(ctx context.Context, c *Case, previousStatus *string, action string, reasonCode *string, reasonDesc string, effectiveDate *time.Time, actor string) error {
	var desc *string
	if reasonDesc != "" {
		desc = &reasonDesc
	}
	return s.history.Append(ctx, &StatusHistory{
		CaseID:            c.ID,
		PreviousStatus:    previousStatus,
		NewStatus:         c.Status,
		Action:            action,
		ReasonCode:        reasonCode,
		ReasonDescription: desc,
		EffectiveDate:     effectiveDate,
		AuthEndDate:       c.AuthEndDate,
		ChangedBy:         actor,
	})
}

func (s *Service) checkTransferNotInProgress(c *Case, verb string) error {
	if c.TransferStatus != nil && *c.TransferStatus == TransferInitiated {
		return apperr.InvalidTransition("case may not be %s while an in-progress inter-county transfer exists", verb)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, c *Case, actor, detail string) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(ctx, events.Event{
		Type:       eventType,
		CaseID:     c.ID.String(),
		Actor:      actor,
		Detail:     detail,
		OccurredAt: s.cal.Now(),
	})
}

// generateCaseNumber builds CC-YYYYMMDD-XXXXX, CC being the county code.
func generateCaseNumber(county string, now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:5])
	return fmt.Sprintf("%s-%s-%s", county, now.Format("20060102"), suffix)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
