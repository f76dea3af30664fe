package models

// Audit event actions describe how a consent choice was committed.
const (
	AuditActionConsentAcceptedAll = "consent_accepted_all"
	AuditActionConsentDeniedAll   = "consent_denied_all"
	AuditActionConsentSaved       = "consent_saved"
)

// Audit event decisions summarise the committed state.
const (
	AuditDecisionAllGranted = "all_granted"
	AuditDecisionNecessary  = "necessary_only"
	AuditDecisionPartial    = "partial"
)

// AuditDecision classifies a committed state for the audit trail.
func AuditDecision(s State) string {
	switch s.Normalize() {
	case AcceptAllState():
		return AuditDecisionAllGranted
	case DenyAllState():
		return AuditDecisionNecessary
	default:
		return AuditDecisionPartial
	}
}

// AuditAction names a commit: explicit all/none choices get their own
// action, everything else (including a saved draft) is consent_saved.
func AuditAction(s State, explicit bool) string {
	if !explicit {
		return AuditActionConsentSaved
	}
	switch s.Normalize() {
	case AcceptAllState():
		return AuditActionConsentAcceptedAll
	case DenyAllState():
		return AuditActionConsentDeniedAll
	default:
		return AuditActionConsentSaved
	}
}
