package workqueue

// Default queue catalog, loaded by the seed command. Queue names and
// categories follow the DSD reference data. Subscription is allowed on every
// queue that is not supervisor-only.

func q(name, displayName, desc, category string, supervisorOnly bool) WorkQueue {
	return WorkQueue{
		Name:                name,
		DisplayName:         displayName,
		Description:         desc,
		Category:            category,
		SupervisorOnly:      supervisorOnly,
		SubscriptionAllowed: !supervisorOnly,
		SensitivityLevel:    1,
		Active:              true,
	}
}

// DefaultQueues returns the full queue catalog.
func DefaultQueues() []WorkQueue {
	return []WorkQueue{
		// Case management
		q("CASE_OWNER", "Case Owner Queue", "Primary queue for case assignment and general case management tasks", CategoryCaseMgmt, false),
		q("CASE_WORKER", "Case Worker Queue", "Frontline tasks: death confirmations, notifications, determinations", CategoryCaseMgmt, false),
		q("CASE_HOME", "Case Home Queue", "Home visits, health care certifications, case-specific maintenance", CategoryCaseMgmt, false),
		q("CASE_CLOSURE", "Case Closure Queue", "Companion case rescissions, funding source updates, termination workflows", CategoryCaseMgmt, false),
		q("WPCS_CASE", "WPCS Case Queue", "Medi-Cal discontinuance for WPCS cases", CategoryCaseMgmt, false),
		q("HEALTH_CARE_CERT", "Health Care Certification Queue", "Health care certification due date monitoring", CategoryCaseMgmt, false),
		q("FORM_COMPLETION", "Form Completion Queue", "Electronic form submissions processing", CategoryCaseMgmt, false),

		// QA
		q("QA", "QA Queue", "Paid claim matching, death match processing (SCD source)", CategoryQA, false),
		q("QA_SUPERVISOR", "QA Supervisor Queue", "Escalated QA tasks: paid claim match not actioned within 5 days", CategoryQA, true),

		// Payroll
		q("PAYMENTS_PENDING_APPROVAL", "Payments Pending Approval Queue", "Special transaction approvals, payment correction approvals", CategoryPayroll, false),
		q("PAYROLL_SUPERVISOR", "Payroll Supervisor Work Queue", "Overpayment recovery, escalated payment approvals", CategoryPayroll, true),
		q("SPECIAL_TRANSACTION_REQUESTER", "Special Transaction Requester Queue", "Rejected special transactions returned to requester for correction", CategoryPayroll, false),
		q("PAYMENT_SEARCH_BY_CASE", "Payment Search by Case Queue", "Cross-county advance pay reconciliation", CategoryPayroll, false),
		q("OVERPAYMENT_RECOVERY", "Overpayment Recovery Queue", "Overpayment recovery tracking, collection notifications", CategoryPayroll, false),

		// Training / CDSS
		q("CDSS_PAYMENTS_PENDING", "CDSS Payments Pending Approval Queue", "Training time claim approvals (1st and 2nd level)", CategoryTraining, false),
		q("CDSS_CAREER_PATHWAYS", "CDSS Career Pathways Work Queue", "Career pathway training approvals", CategoryTraining, false),
		q("SUBMITTED_BY_WORKER", "Submitted By Worker Queue", "Rejected training time claims returned to submitter", CategoryTraining, false),

		// Provider management
		q("PROVIDER_MANAGEMENT", "Provider Management Queue", "Provider enrollment, modifications, overpayment recovery designation", CategoryProvider, false),
		q("TIMESHEET_ELIGIBILITY", "Timesheet Eligibility Work Queue", "Provider timesheet validation, incorrect recipient entry", CategoryProvider, false),
		q("BLIND_VISUALLY", "Blind Visually Work Queue", "Blind/visually impaired recipient contact issues", CategoryProvider, false),

		// Internal operations
		q("TRAVEL_CLAIM", "Travel Claim Work Queue", "Travel claim processing and validation", CategoryInternalOps, false),
		q("TRAVEL_CLAIM_ERRORS", "Travel Claim Errors Work Queue", "Travel claim TPF errors, auto-closed after 10 days", CategoryInternalOps, false),
		q("VIEW_TRAVEL_CLAIM", "View Travel Claim Queue", "Travel claim cancellations", CategoryInternalOps, false),
		q("SICK_LEAVE_ERRORS", "Sick Leave Errors Work Queue", "Sick leave claim TPF errors, auto-closed after 10 days", CategoryInternalOps, false),
		q("VIEW_SICK_LEAVE", "View Sick Leave Claim Queue", "Sick leave claim processing", CategoryInternalOps, false),
		q("IHSS_ESP", "IHSS ESP Queue", "Electronic Services Portal batch processing", CategoryInternalOps, false),

		// Supervisor
		q("SW_RESERVE_ASSIGNED", "SW Reserve Assigned Tasks Queue", "Escalated tasks that exceeded deadlines, supervisor review", CategorySupervisor, true),
		q("SW_USER_APPROVALS", "SW User Approvals Queue", "Pending case approval requests for supervisor", CategorySupervisor, true),
		q("SW_MY_USERS", "SW My Users Queue", "Team workload monitoring and management", CategorySupervisor, true),
		q("ESCALATED", "Escalated Tasks Queue", "Default escalation destination for overdue tasks", CategorySupervisor, true),
	}
}
