package kyc

import (
	"fmt"
	"time"

	dErrors "kycgate/pkg/domain-errors"
)

// DocumentType is the closed set of national identity document codes the
// service knows how to verify. Adding a new type is a compile-time-visible
// change: every switch over DocumentType must handle it.
type DocumentType string

const (
	// DocumentTypeCC is the citizen card.
	DocumentTypeCC DocumentType = "CC"
	// DocumentTypeTI is the minor's identity card.
	DocumentTypeTI DocumentType = "TI"
	// DocumentTypeCE is the foreigner's card.
	DocumentTypeCE DocumentType = "CE"
)

// ParseDocumentType converts a wire string into a DocumentType.
func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(s) {
	case DocumentTypeCC:
		return DocumentTypeCC, nil
	case DocumentTypeTI:
		return DocumentTypeTI, nil
	case DocumentTypeCE:
		return DocumentTypeCE, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("document_type must be one of [CC TI CE], got %q", s))
	}
}

const (
	minNumberLength   = 6
	maxNumberLength   = 15
	minCENumberLength = 8
)

// DocumentClaim is the immutable document data an applicant submits.
// Construction enforces the claim-level invariants; type-specific business
// rules live in Validate.
type DocumentClaim struct {
	documentType   DocumentType
	documentNumber string
	issueDate      time.Time
	expiryDate     *time.Time
}

// NewDocumentClaim builds a claim, enforcing construction invariants:
// number length within [6,15] (CE needs at least 8), expiry (when present)
// after issue and not already past at submission time. now is injected so
// tests are deterministic.
func NewDocumentClaim(documentType DocumentType, documentNumber string, issueDate time.Time, expiryDate *time.Time, now time.Time) (DocumentClaim, error) {
	if l := len(documentNumber); l < minNumberLength || l > maxNumberLength {
		return DocumentClaim{}, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("document_number must have between %d and %d characters", minNumberLength, maxNumberLength))
	}
	if documentType == DocumentTypeCE && len(documentNumber) < minCENumberLength {
		return DocumentClaim{}, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("CE document_number must have at least %d characters", minCENumberLength))
	}
	if expiryDate != nil {
		if !expiryDate.After(issueDate) {
			return DocumentClaim{}, dErrors.New(dErrors.CodeValidation,
				"expiry_date must be after issue_date")
		}
		if expiryDate.Before(now) {
			return DocumentClaim{}, dErrors.New(dErrors.CodeValidation,
				"document is already expired")
		}
	}
	claim := DocumentClaim{
		documentType:   documentType,
		documentNumber: documentNumber,
		issueDate:      issueDate,
	}
	if expiryDate != nil {
		// Copy so callers cannot mutate the claim through the pointer.
		e := *expiryDate
		claim.expiryDate = &e
	}
	return claim, nil
}

// Type returns the document type code.
func (c DocumentClaim) Type() DocumentType { return c.documentType }

// Number returns the document number as submitted.
func (c DocumentClaim) Number() string { return c.documentNumber }

// IssueDate returns the date the document was issued.
func (c DocumentClaim) IssueDate() time.Time { return c.issueDate }

// ExpiryDate returns the expiry date, or nil when the document has none.
func (c DocumentClaim) ExpiryDate() *time.Time {
	if c.expiryDate == nil {
		return nil
	}
	e := *c.expiryDate
	return &e
}
