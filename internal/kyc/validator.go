package kyc

import (
	"time"
)

// Reason identifies the hard-failure rule that invalidated a document.
type Reason string

const (
	ReasonFutureIssueDate Reason = "FUTURE_ISSUE_DATE"
	ReasonCCLength        Reason = "CC_LENGTH"
	ReasonCCExpiredByAge  Reason = "CC_EXPIRED_BY_AGE"
	ReasonTILength        Reason = "TI_LENGTH"
	ReasonCEMissingExpiry Reason = "CE_MISSING_EXPIRY"
	ReasonCEExpired       Reason = "CE_EXPIRED"
)

// Description returns the human-readable explanation for a failure reason,
// suitable for user-facing error messages.
func (r Reason) Description() string {
	switch r {
	case ReasonFutureIssueDate:
		return "issue date cannot be in the future"
	case ReasonCCLength:
		return "CC must have between 7 and 10 digits"
	case ReasonCCExpiredByAge:
		return "CC is older than 10 years and must be renewed"
	case ReasonTILength:
		return "TI must have between 8 and 11 digits"
	case ReasonCEMissingExpiry:
		return "CE must have an expiry date"
	case ReasonCEExpired:
		return "CE is expired"
	default:
		return string(r)
	}
}

// Warning flags a non-fatal observation about a document. Warnings never flip
// a verdict from valid to invalid.
type Warning string

const (
	WarningTIHolderLikelyAdult Warning = "TI_HOLDER_LIKELY_ADULT"
	WarningCENearExpiry        Warning = "CE_NEAR_EXPIRY"
	WarningDocumentVeryOld     Warning = "DOCUMENT_VERY_OLD"
)

// Verdict is the structured outcome of document validation. Reason is empty
// when Valid is true; Warnings keep their emission order.
type Verdict struct {
	Valid    bool
	Reason   Reason
	Warnings []Warning
}

const (
	ccMaxAgeYears    = 10
	tiAdultAgeYears  = 18
	ceNearExpiryDays = 30
	daysPerYear      = 365

	// veryOldAge matches the upstream cutoff of 20 * 365 days exactly.
	veryOldAge = 20 * 365 * 24 * time.Hour
)

// Validate applies the type-specific business rules to a claim. It is a pure
// function of (claim, now): callers inject now so results are reproducible.
// The first failing rule short-circuits; warnings accumulate in rule order.
//
// Year arithmetic is days/365, not calendar-aware. This approximation is kept
// deliberately for verdict compatibility with the upstream rule set; do not
// replace it with AddDate-style calendar math.
func Validate(claim DocumentClaim, now time.Time) Verdict {
	verdict := Verdict{Valid: true}

	if claim.IssueDate().After(now) {
		return Verdict{Reason: ReasonFutureIssueDate}
	}

	switch claim.Type() {
	case DocumentTypeCC:
		if !allDigits(claim.Number()) || len(claim.Number()) < 7 || len(claim.Number()) > 10 {
			return Verdict{Reason: ReasonCCLength}
		}
		if yearsBetween(claim.IssueDate(), now) > ccMaxAgeYears {
			return Verdict{Reason: ReasonCCExpiredByAge}
		}

	case DocumentTypeTI:
		if !allDigits(claim.Number()) || len(claim.Number()) < 8 || len(claim.Number()) > 11 {
			return Verdict{Reason: ReasonTILength}
		}
		if yearsBetween(claim.IssueDate(), now) > tiAdultAgeYears {
			verdict.Warnings = append(verdict.Warnings, WarningTIHolderLikelyAdult)
		}

	case DocumentTypeCE:
		expiry := claim.ExpiryDate()
		if expiry == nil {
			return Verdict{Reason: ReasonCEMissingExpiry}
		}
		if !expiry.After(now) {
			return Verdict{Reason: ReasonCEExpired}
		}
		if daysBetween(now, *expiry) < ceNearExpiryDays {
			verdict.Warnings = append(verdict.Warnings, WarningCENearExpiry)
		}
	}

	if now.Sub(claim.IssueDate()) > veryOldAge {
		verdict.Warnings = append(verdict.Warnings, WarningDocumentVeryOld)
	}

	return verdict
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// daysBetween returns whole days from a to b, truncated.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// yearsBetween returns fractional years as days/365.
func yearsBetween(a, b time.Time) float64 {
	return float64(daysBetween(a, b)) / daysPerYear
}
