// Package codes holds the immutable code-table catalogs for the case
// lifecycle: status codes, action reason codes, and the rescind-reason to
// notice (NOA) mapping. Each reason catalog keeps two frozen views: the full
// set, which describes historical rows, and the enabled subset, which gates
// new entries. Conversion-only codes exist in the full set only.
package codes

// ReasonSet is a frozen reason-code catalog with an enabled subset.
type ReasonSet struct {
	all     map[string]string
	enabled map[string]string
}

// Description returns the display text for a code in the full catalog.
func (s ReasonSet) Description(code string) (string, bool) {
	d, ok := s.all[code]
	return d, ok
}

// Enabled reports whether the code may be used for new entries.
func (s ReasonSet) Enabled(code string) bool {
	_, ok := s.enabled[code]
	return ok
}

// EnabledCodes returns a copy of the enabled subset.
func (s ReasonSet) EnabledCodes() map[string]string {
	out := make(map[string]string, len(s.enabled))
	for k, v := range s.enabled {
		out[k] = v
	}
	return out
}

// AllCodes returns a copy of the full catalog.
func (s ReasonSet) AllCodes() map[string]string {
	out := make(map[string]string, len(s.all))
	for k, v := range s.all {
		out[k] = v
	}
	return out
}

func newReasonSet(all map[string]string, disabled ...string) ReasonSet {
	enabled := make(map[string]string, len(all))
	for k, v := range all {
		enabled[k] = v
	}
	for _, code := range disabled {
		delete(enabled, code)
	}
	return ReasonSet{all: all, enabled: enabled}
}

// CaseStatusCodes maps status codes to display names. CS009/CS010
// (Active/Inactive) are derived dashboard groupings, never stored.
var CaseStatusCodes = map[string]string{
	"CS001": "Pending",
	"CS002": "Eligible",
	"CS003": "Presumptive Eligible",
	"CS004": "Leave",
	"CS005": "Terminated",
	"CS006": "Denied",
	"CS007": "Application Withdrawn",
	"CS008": "In-Progress",
	"CS009": "Active",
	"CS010": "Inactive",
}

// WithdrawalReasons: WO002 is set at conversion only.
var WithdrawalReasons = newReasonSet(map[string]string{
	"WO001": "Withdrawal requested by Recipient",
	"WO002": "Withdrawal Status at Conversion",
}, "WO002")

// LeaveReasons: L0007 is set at conversion only.
var LeaveReasons = newReasonSet(map[string]string{
	"L0001": "Temporarily in Hospital",
	"L0002": "Temporarily in SNF",
	"L0003": "Temporarily in ICF",
	"L0004": "Temporarily in CCF",
	"L0005": "Temporarily out of State over 6 months",
	"L0006": "Undervalue disposal of resources",
	"L0007": "Leave Status at Conversion",
	"L0008": "Other Facility",
}, "L0007")

// LeaveReasonUndervalueDisposal requires a resource suspension end date.
const LeaveReasonUndervalueDisposal = "L0006"

// DenialReasons mirror the application denial codes; all are selectable.
var DenialReasons = newReasonSet(map[string]string{
	"NOT_MEDI_CAL_ELIGIBLE":     "Not Medi-Cal eligible",
	"NOT_CA_RESIDENT":           "Not a California resident",
	"NOT_COUNTY_RESIDENT":       "Not a resident of the county",
	"DOES_NOT_MEET_DISABILITY":  "Does not meet disability criteria",
	"DOES_NOT_MEET_AGE":         "Does not meet age criteria",
	"UNSAFE_LIVING_ENVIRONMENT": "Unsafe living environment",
	"INSTITUTIONALIZED":         "Institutionalized",
	"DUPLICATE_APPLICATION":     "Duplicate application",
	"INCOMPLETE_APPLICATION":    "Incomplete application",
	"FAILED_TO_COOPERATE":       "Failed to cooperate with eligibility determination",
	"OTHER":                     "Other",
})

// TerminationReasons: CC515 is set at conversion only.
var TerminationReasons = newReasonSet(map[string]string{
	"CC501": "No longer in own home",
	"CC502": "Recipient request",
	"CC503": "Recipient did not pay IHSS Share of Cost",
	"CC504": "Out of State longer than 60 days",
	"CC505": "Moved out of State",
	"CC506": "Failure to provide needed information",
	"CC507": "Not returning home from Hospital",
	"CC508": "Not returning home from CCF",
	"CC509": "Not returning home from ICF",
	"CC510": "Not returning home from SNF",
	"CC511": "Recipient Death",
	"CC512": "Out of Country longer than 30 days",
	"CC513": "Whereabouts unknown",
	"CC514": "Non-cooperation with Medi-Cal",
	"CC515": "Terminated at Conversion",
	"CC516": "Suspect SSN",
	"CC517": "Duplicate SSN",
	"CC518": "Health Care Certification - Not Received",
	"CC519": "Non-Compliance - UHV",
	"CC520": "Health Care Certification - No Need",
	"CC522": "Enrolled in PACE program",
}, "CC515")

// RescindReasons: R0005 is reachable only through the automated Medi-Cal
// resolution path, never user-selected.
var RescindReasons = newReasonSet(map[string]string{
	"R0001": "State Hearing Filed before Termination effective",
	"R0002": "Recipient rescinds request for termination of services",
	"R0003": "Administrative Error",
	"R0004": "State Hearing Decision",
	"R0005": "Medi-Cal Non-Compliance Resolved",
}, "R0005")

// RescindReasonMediCalResolved is the automated-only rescind code.
const RescindReasonMediCalResolved = "R0005"

// NoticeForRescindReason returns the NOA text generated for a rescind reason
// code, or "" when the code has no notice.
func NoticeForRescindReason(code string) string {
	switch code {
	case "R0001":
		return "SH05 NOA + all NOAs from Eligible/Presumptive Eligible status"
	case "R0002", "R0004":
		return "All NOAs from Eligible/Presumptive Eligible status"
	case "R0003":
		return "TR18 NOA"
	case "R0005":
		return "TR26 NOA"
	default:
		return ""
	}
}
