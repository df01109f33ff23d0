package cases

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casework/casework/internal/apperr"
	"github.com/casework/casework/internal/platform/db"
)

type caseRepoPG struct{ pool *pgxpool.Pool }

func NewCaseRepoPG(pool *pgxpool.Pool) CaseRepository {
	return &caseRepoPG{pool: pool}
}

const caseCols = `id, case_number, case_type, county, status, case_owner,
	application_date, eligibility_date, auth_start_date, auth_end_date,
	health_cert_due, medi_cal_status,
	termination_reason, termination_date, denial_reason, denial_date,
	leave_reason, leave_date, withdrawal_reason, withdrawal_date,
	rescind_reason, rescind_date, resource_suspension_end,
	previous_status, previous_auth_start_date, previous_auth_end_date,
	transfer_status, sending_county, receiving_county, transfer_date,
	transfer_previous_status,
	created_at, updated_at`

func scanCase(row pgx.Row) (*Case, error) {
	var c Case
	err := row.Scan(&c.ID, &c.CaseNumber, &c.CaseType, &c.County, &c.Status, &c.CaseOwner,
		&c.ApplicationDate, &c.EligibilityDate, &c.AuthStartDate, &c.AuthEndDate,
		&c.HealthCertDue, &c.MediCalStatus,
		&c.TerminationReason, &c.TerminationDate, &c.DenialReason, &c.DenialDate,
		&c.LeaveReason, &c.LeaveDate, &c.WithdrawalReason, &c.WithdrawalDate,
		&c.RescindReason, &c.RescindDate, &c.ResourceSuspensionEnd,
		&c.PreviousStatus, &c.PreviousAuthStartDate, &c.PreviousAuthEndDate,
		&c.TransferStatus, &c.SendingCounty, &c.ReceivingCounty, &c.TransferDate,
		&c.TransferPreviousStatus,
		&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("case not found")
	}
	return &c, err
}

func (r *caseRepoPG) Create(ctx context.Context, c *Case) error {
	c.ID = uuid.New()
	_, err := db.Runner(ctx, r.pool).Exec(ctx, `
		INSERT INTO case_record (id, case_number, case_type, county, status, case_owner,
			application_date, eligibility_date, auth_start_date, auth_end_date,
			health_cert_due, medi_cal_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		c.ID, c.CaseNumber, c.CaseType, c.County, c.Status, c.CaseOwner,
		c.ApplicationDate, c.EligibilityDate, c.AuthStartDate, c.AuthEndDate,
		c.HealthCertDue, c.MediCalStatus)
	return err
}

func (r *caseRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Case, error) {
	return scanCase(db.Runner(ctx, r.pool).QueryRow(ctx,
		`SELECT `+caseCols+` FROM case_record WHERE id = $1`, id))
}

func (r *caseRepoPG) GetByNumber(ctx context.Context, caseNumber string) (*Case, error) {
	return scanCase(db.Runner(ctx, r.pool).QueryRow(ctx,
		`SELECT `+caseCols+` FROM case_record WHERE case_number = $1`, caseNumber))
}

func (r *caseRepoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*Case, error) {
	return scanCase(db.Runner(ctx, r.pool).QueryRow(ctx,
		`SELECT `+caseCols+` FROM case_record WHERE id = $1 FOR UPDATE`, id))
}

func (r *caseRepoPG) Update(ctx context.Context, c *Case) error {
	_, err := db.Runner(ctx, r.pool).Exec(ctx, `
		UPDATE case_record SET status=$2, case_owner=$3, county=$4,
			application_date=$5, eligibility_date=$6, auth_start_date=$7, auth_end_date=$8,
			health_cert_due=$9, medi_cal_status=$10,
			termination_reason=$11, termination_date=$12, denial_reason=$13, denial_date=$14,
			leave_reason=$15, leave_date=$16, withdrawal_reason=$17, withdrawal_date=$18,
			rescind_reason=$19, rescind_date=$20, resource_suspension_end=$21,
			previous_status=$22, previous_auth_start_date=$23, previous_auth_end_date=$24,
			transfer_status=$25, sending_county=$26, receiving_county=$27, transfer_date=$28,
			transfer_previous_status=$29,
			updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Status, c.CaseOwner, c.County,
		c.ApplicationDate, c.EligibilityDate, c.AuthStartDate, c.AuthEndDate,
		c.HealthCertDue, c.MediCalStatus,
		c.TerminationReason, c.TerminationDate, c.DenialReason, c.DenialDate,
		c.LeaveReason, c.LeaveDate, c.WithdrawalReason, c.WithdrawalDate,
		c.RescindReason, c.RescindDate, c.ResourceSuspensionEnd,
		c.PreviousStatus, c.PreviousAuthStartDate, c.PreviousAuthEndDate,
		c.TransferStatus, c.SendingCounty, c.ReceivingCounty, c.TransferDate,
		c.TransferPreviousStatus)
	return err
}

func (r *caseRepoPG) List(ctx context.Context, county, status string, limit, offset int) ([]*Case, int, error) {
	where := ` WHERE ($1 = '' OR county = $1) AND ($2 = '' OR status = $2)`
	var total int
	if err := db.Runner(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM case_record`+where, county, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := db.Runner(ctx, r.pool).Query(ctx,
		`SELECT `+caseCols+` FROM case_record`+where+` ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		county, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

type historyRepoPG struct{ pool *pgxpool.Pool }

func NewHistoryRepoPG(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepoPG{pool: pool}
}

func (r *historyRepoPG) Append(ctx context.Context, h *StatusHistory) error {
	h.ID = uuid.New()
	_, err := db.Runner(ctx, r.pool).Exec(ctx, `
		INSERT INTO case_status_history (id, case_id, previous_status, new_status, action,
			reason_code, reason_description, effective_date, auth_end_date, changed_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		h.ID, h.CaseID, h.PreviousStatus, h.NewStatus, h.Action,
		h.ReasonCode, h.ReasonDescription, h.EffectiveDate, h.AuthEndDate, h.ChangedBy)
	return err
}

func (r *historyRepoPG) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*StatusHistory, error) {
	rows, err := db.Runner(ctx, r.pool).Query(ctx, `
		SELECT id, case_id, previous_status, new_status, action, reason_code,
			reason_description, effective_date, auth_end_date, changed_by, changed_at
		FROM case_status_history WHERE case_id = $1 ORDER BY changed_at DESC`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*StatusHistory
	for rows.Next() {
		var h StatusHistory
		if err := rows.Scan(&h.ID, &h.CaseID, &h.PreviousStatus, &h.NewStatus, &h.Action,
			&h.ReasonCode, &h.ReasonDescription, &h.EffectiveDate, &h.AuthEndDate,
			&h.ChangedBy, &h.ChangedAt); err != nil {
			return nil, err
		}
		items = append(items, &h)
	}
	return items, rows.Err()
}

type rescindRepoPG struct{ pool *pgxpool.Pool }

func NewRescindRepoPG(pool *pgxpool.Pool) RescindRepository {
	return &rescindRepoPG{pool: pool}
}

func (r *rescindRepoPG) Append(ctx context.Context, sr *StatusRescind) error {
	sr.ID = uuid.New()
	_, err := db.Runner(ctx, r.pool).Exec(ctx, `
		INSERT INTO case_status_rescind (id, case_id, before_status, after_status,
			rescind_reason, rescind_date, last_medi_cal, notice_generated, changed_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		sr.ID, sr.CaseID, sr.BeforeStatus, sr.AfterStatus,
		sr.RescindReason, sr.RescindDate, sr.LastMediCal, sr.NoticeGenerated, sr.ChangedBy)
	return err
}

func (r *rescindRepoPG) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*StatusRescind, error) {
	rows, err := db.Runner(ctx, r.pool).Query(ctx, `
		SELECT id, case_id, before_status, after_status, rescind_reason, rescind_date,
			last_medi_cal, notice_generated, changed_by, created_at
		FROM case_status_rescind WHERE case_id = $1 ORDER BY created_at DESC`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*StatusRescind
	for rows.Next() {
		var sr StatusRescind
		if err := rows.Scan(&sr.ID, &sr.CaseID, &sr.BeforeStatus, &sr.AfterStatus,
			&sr.RescindReason, &sr.RescindDate, &sr.LastMediCal, &sr.NoticeGenerated,
			&sr.ChangedBy, &sr.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &sr)
	}
	return items, rows.Err()
}

type leaveRepoPG struct{ pool *pgxpool.Pool }

func NewLeaveRepoPG(pool *pgxpool.Pool) LeaveRepository {
	return &leaveRepoPG{pool: pool}
}

func (r *leaveRepoPG) Append(ctx context.Context, l *Leave) error {
	l.ID = uuid.New()
	_, err := db.Runner(ctx, r.pool).Exec(ctx, `
		INSERT INTO case_leave (id, case_id, leave_reason, leave_date,
			auth_end_date, resource_suspension_end)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		l.ID, l.CaseID, l.LeaveReason, l.LeaveDate, l.AuthEndDate, l.ResourceSuspensionEnd)
	return err
}

func (r *leaveRepoPG) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*Leave, error) {
	rows, err := db.Runner(ctx, r.pool).Query(ctx, `
		SELECT id, case_id, leave_reason, leave_date, auth_end_date,
			resource_suspension_end, created_at
		FROM case_leave WHERE case_id = $1 ORDER BY created_at DESC`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Leave
	for rows.Next() {
		var l Leave
		if err := rows.Scan(&l.ID, &l.CaseID, &l.LeaveReason, &l.LeaveDate,
			&l.AuthEndDate, &l.ResourceSuspensionEnd, &l.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &l)
	}
	return items, rows.Err()
}
