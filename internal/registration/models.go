package registration

import (
	"io"
	"time"

	"github.com/google/uuid"

	"kycgate/internal/kyc"
)

// KYCStatus is the outcome of identity verification attached to a record.
type KYCStatus string

const (
	KYCStatusApproved KYCStatus = "approved"
	KYCStatusRejected KYCStatus = "rejected"
)

// DocumentRecord is the validated document embedded in a UserRecord,
// exactly one per record.
type DocumentRecord struct {
	ID          uuid.UUID
	Type        kyc.DocumentType
	Number      string
	IssueDate   time.Time
	ExpiryDate  *time.Time
	IsValid     bool
	Warnings    []kyc.Warning
	BlobURL     string
	ValidatedAt time.Time
}

// UserRecord is the persisted registration entity. Records are append-only:
// they are created by a successful Register call and never mutated after.
type UserRecord struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Document  DocumentRecord
	KYCStatus KYCStatus
	CreatedAt time.Time
}

// FileUpload carries the uploaded document blob and its declared metadata.
// Size is -1 when the transport could not determine it.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// RegisterRequest is the coordinator's single entry point input. The
// transport layer only parses fields into this struct; business rules are
// never re-implemented there.
type RegisterRequest struct {
	Name           string `validate:"required,notblank,max=100"`
	Email          string `validate:"required,email,max=255"`
	DocumentType   string `validate:"required,oneof=CC TI CE"`
	DocumentNumber string `validate:"required,min=6,max=15"`
	IssueDate      time.Time
	ExpiryDate     *time.Time
	File           FileUpload
}

// Credential is the opaque bearer token minted for a freshly registered user.
type Credential struct {
	AccessToken string
	TokenType   string
}
