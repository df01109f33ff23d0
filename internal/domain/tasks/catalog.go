package tasks

// Default task type catalog, loaded by the seed command. Codes, queues,
// deadlines, and escalation policy follow the DSD reference data.

// TaskTypeCaseAssignment is spawned when a case is created or reactivated
// with an assigned worker.
const TaskTypeCaseAssignment = "CI-111160"

func standardType(code, name, desc, targetQueue string, notification bool,
	deadlineDays int, escalation bool, escalationTarget, area string) TaskType {
	priority := PriorityMedium
	if notification {
		priority = PriorityLow
	}
	tt := TaskType{
		Code:                 code,
		Name:                 name,
		Description:          desc,
		TargetQueue:          targetQueue,
		Notification:         notification,
		DeadlineBusinessDays: deadlineDays,
		EscalationEnabled:    escalation,
		EscalationCheckType:  CheckNotReserved,
		DefaultPriority:      priority,
		FunctionalArea:       area,
		Active:               true,
	}
	if escalationTarget != "" {
		tt.EscalationTargetQueue = &escalationTarget
	}
	return tt
}

func paymentType(code, name, desc, targetQueue string, deadlineDays int,
	checkType string, reserveDays int, completionDays *int, escalationTarget string) TaskType {
	tt := TaskType{
		Code:                   code,
		Name:                   name,
		Description:            desc,
		TargetQueue:            targetQueue,
		DeadlineBusinessDays:   deadlineDays,
		EscalationEnabled:      true,
		EscalationCheckType:    checkType,
		EscalationTargetQueue:  &escalationTarget,
		ReserveDeadlineDays:    &reserveDays,
		CompletionDeadlineDays: completionDays,
		DefaultPriority:        PriorityHigh,
		FunctionalArea:         "Payroll",
		Active:                 true,
	}
	return tt
}

func autoCloseType(code, name, desc, targetQueue string, autoCloseDays int) TaskType {
	return TaskType{
		Code:                 code,
		Name:                 name,
		Description:          desc,
		TargetQueue:          targetQueue,
		DeadlineBusinessDays: autoCloseDays,
		AutoCloseEnabled:     true,
		AutoCloseDays:        autoCloseDays,
		DefaultPriority:      PriorityMedium,
		FunctionalArea:       "Internal Ops",
		Active:               true,
	}
}

func intPtr(n int) *int { return &n }

// DefaultTaskTypes returns the full catalog.
func DefaultTaskTypes() []TaskType {
	return []TaskType{
		// Case management
		standardType(TaskTypeCaseAssignment, "Case Assignment", "New or reactivated case assigned to a worker",
			"CASE_OWNER", false, 5, true, "SW_RESERVE_ASSIGNED", "Case Management"),
		standardType("CI-111180", "Case Review Approval/Rejection", "Upon approval or rejection of a Case Review Authorization",
			"CASE_OWNER", false, 5, true, "SW_RESERVE_ASSIGNED", "Case Management"),
		standardType("CI-111181", "Multiple New Cases Assigned", "When multiple new cases are assigned through bulk assignment",
			"CASE_OWNER", true, 0, false, "", "Case Management"),
		standardType("CI-111182", "Case Pending Approval 5 Days", "Case submitted for approval not acted on in 5 business days",
			"CASE_OWNER", false, 5, false, "", "Case Management"),
		standardType("CI-111183", "Treatment/Authorization TAR", "Upon receipt of a TAR for an eligible case",
			"CASE_WORKER", false, 5, true, "SW_RESERVE_ASSIGNED", "Case Management"),
		standardType("CI-111184", "Provider Unreviewed Affidavits", "Provider has multiple unreviewed affidavits in a year",
			"CASE_OWNER", true, 0, false, "", "Case Management"),
		standardType("CI-111192", "Recipient Death Notification (MEDS/CDPH)", "Death match from CDPH, MEDS, or SSA with DOD not populated",
			"CASE_OWNER", false, 5, true, "SW_RESERVE_ASSIGNED", "Case Management"),
		standardType("CI-111193", "Recipient Death Notification (SCD)", "Death match from SCD source with DOD not populated",
			"QA", false, 5, true, "QA_SUPERVISOR", "Case Management"),
		standardType("CI-111194", "Death Confirmation", "Death confirmation required for matched record",
			"CASE_WORKER", false, 5, true, "SW_RESERVE_ASSIGNED", "Case Management"),
		standardType("CI-488670", "Companion Case Rescission", "Terminated case in companion collection gets rescinded",
			"CASE_OWNER", false, 5, true, "SW_RESERVE_ASSIGNED", "Case Management"),
		standardType("CI-488671", "Companion Case Funding Source Update", "Funding source updated on any case in companion collection",
			"CASE_OWNER", false, 5, true, "SW_RESERVE_ASSIGNED", "Case Management"),
		standardType("CI-489033", "Recipient Phone Number Update", "Timesheet review shows incorrect phone number",
			"CASE_OWNER", false, 1, false, "", "Case Management"),
		standardType("CI-770242", "Health Care Certification Due in 10 Days", "HC certification approaching expiry",
			"HEALTH_CARE_CERT", false, 10, true, "SW_RESERVE_ASSIGNED", "Case Management"),
		standardType("CI-823959", "Medi-Cal Discontinuance (WPCS)", "Medi-Cal discontinued for WPCS case",
			"WPCS_CASE", false, 5, true, "SW_RESERVE_ASSIGNED", "Case Management"),

		// Payroll, dual-stage escalation
		paymentType("CI-111174", "Special Transaction Request", "Special transaction submitted for approval",
			"PAYMENTS_PENDING_APPROVAL", 3, CheckNotReserved, 3, nil, "PAYROLL_SUPERVISOR"),
		paymentType("CI-111176", "Cross County Special Transaction", "Payment correction for cross-county case",
			"PAYMENTS_PENDING_APPROVAL", 2, CheckBoth, 2, intPtr(2), "PAYROLL_SUPERVISOR"),
		paymentType("CI-111177", "Payment Correction Request", "Payment correction submitted for approval",
			"PAYMENTS_PENDING_APPROVAL", 3, CheckNotReserved, 3, nil, "PAYROLL_SUPERVISOR"),
		standardType("CI-111178", "Special Transaction Rejection", "Payroll approver rejected special transaction",
			"SPECIAL_TRANSACTION_REQUESTER", false, 5, true, "SW_RESERVE_ASSIGNED", "Payroll"),
		standardType("CI-111179", "Payment Correction Rejection", "Payroll approver rejected payment correction",
			"SPECIAL_TRANSACTION_REQUESTER", false, 5, true, "SW_RESERVE_ASSIGNED", "Payroll"),

		// Payroll notifications
		standardType("CI-111166", "Special Transaction Approval", "Payroll approver approved special transaction",
			"SPECIAL_TRANSACTION_REQUESTER", true, 0, false, "", "Payroll"),
		standardType("CI-111167", "Cross County Payroll Activity", "Payroll action on case in different county",
			"CASE_WORKER", true, 0, false, "", "Payroll"),
		standardType("CI-111168", "Cross County Special Transaction Activity", "Special transaction on cross-county case",
			"CASE_OWNER", true, 0, false, "", "Payroll"),
		standardType("CI-111169", "Cross County Payment Correction Activity", "Payment correction on cross-county case",
			"CASE_OWNER", true, 0, false, "", "Payroll"),
		standardType("CI-111170", "Overpayment Recovery Activity", "Overpayment recovery action taken",
			"CASE_WORKER", true, 0, false, "", "Payroll"),
		standardType("CI-111171", "Cross County Overpayment Recovery", "Overpayment recovery on cross-county case",
			"CASE_OWNER", true, 0, false, "", "Payroll"),
		standardType("CI-111172", "Cross County Pay Reconciliation", "Advance pay recon action by service month",
			"CASE_OWNER", true, 0, false, "", "Payroll"),
		standardType("CI-111173", "Overpayment Collection Complete", "Collection fully satisfies overpayment balance",
			"PAYROLL_SUPERVISOR", true, 0, false, "", "Payroll"),

		// QA
		standardType("CI-111190", "Paid Claim Match", "Monthly Medi-Cal service match file received",
			"QA", false, 5, true, "QA_SUPERVISOR", "QA"),
		standardType("CI-111191", "Paid Claim Match Escalation", "QA worker hasn't actioned paid claim match in 5 days",
			"QA_SUPERVISOR", false, 5, false, "", "QA"),

		// Training / CDSS
		standardType("CI-823404", "Training Time Claim Approval", "CDSS worker submitted training time claim",
			"CDSS_PAYMENTS_PENDING", false, 0, false, "", "Training"),
		standardType("CI-823427", "Career Path Training Time Claim", "Training time claim for career pathway",
			"CDSS_CAREER_PATHWAYS", false, 0, false, "", "Training"),
		standardType("CI-823433", "Rejected Training Time Claim", "Training time claim rejected, returned to submitter",
			"SUBMITTED_BY_WORKER", false, 5, true, "SW_RESERVE_ASSIGNED", "Training"),

		// Provider management
		standardType("CI-313305", "Provider Overpayment Recovery Designation", "Provider/payee designated for overpayment recovery",
			"PAYROLL_SUPERVISOR", true, 0, false, "", "Provider"),
		standardType("CI-486349", "Incorrect Recipient Entry (3x)", "Same incorrect recipient entered 3 times on timesheet",
			"TIMESHEET_ELIGIBILITY", false, 5, true, "SW_RESERVE_ASSIGNED", "Provider"),

		// Internal operations
		autoCloseType("CI-822312", "Travel Claim Exception", "TPF error during travel claim processing",
			"TRAVEL_CLAIM_ERRORS", 10),
		autoCloseType("CI-822321", "Sick Leave Claim Exception", "TPF error during sick leave claim processing",
			"SICK_LEAVE_ERRORS", 10),
		standardType("CI-873788", "Travel Claim Cancellation", "Travel claim cancelled",
			"TRAVEL_CLAIM", false, 5, true, "SW_RESERVE_ASSIGNED", "Internal Ops"),
		standardType("CI-873789", "Travel Claim Cancellation (View)", "Travel claim cancellation notification",
			"VIEW_TRAVEL_CLAIM", true, 0, false, "", "Internal Ops"),
		standardType("CI-832559", "IHSS ESP Batch Status", "Batch job 5005DMAN executed",
			"IHSS_ESP", true, 0, false, "", "Internal Ops"),
		standardType("CI-824056", "Electronic Form Submission", "Electronic form submitted",
			"FORM_COMPLETION", false, 5, true, "SW_RESERVE_ASSIGNED", "Internal Ops"),
		standardType("CI-824057", "Electronic Form Completion", "Electronic form requires completion",
			"FORM_COMPLETION", false, 5, true, "SW_RESERVE_ASSIGNED", "Internal Ops"),
	}
}
