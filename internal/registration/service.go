package registration

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks UserStore,TokenIssuer,TokenVerifier,BlobStore,AuditPublisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"kycgate/internal/audit"
	"kycgate/internal/blobstore"
	"kycgate/internal/filecheck"
	"kycgate/internal/kyc"
	"kycgate/internal/platform/metrics"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/sentinel"
	s "kycgate/pkg/string"
	"kycgate/pkg/validation"
)

// UserStore defines the persistence interface for user records.
// Error Contract:
//   - Reserve returns sentinel.ErrConflict when the email is taken or reserved.
//   - FindByID returns sentinel.ErrNotFound when the record doesn't exist.
//   - Reserve, Commit, and Rollback together implement the reservation
//     protocol: Reserve must be atomic with respect to concurrent callers,
//     Commit finalizes the caller's reservation, Rollback releases it.
type UserStore interface {
	Reserve(ctx context.Context, email string) error
	Commit(ctx context.Context, record *UserRecord) error
	Rollback(ctx context.Context, email string) error
	FindByID(ctx context.Context, id uuid.UUID) (*UserRecord, error)
}

// TokenIssuer mints an opaque bearer credential for a subject.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

// TokenVerifier checks a presented credential and returns its subject.
type TokenVerifier interface {
	Verify(credential string) (uuid.UUID, error)
}

// BlobStore persists the uploaded document and returns a reference.
type BlobStore interface {
	Put(ctx context.Context, content io.Reader, meta blobstore.Metadata) (string, error)
}

// AuditPublisher records domain events.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service coordinates one registration attempt end to end and serves record
// lookups under authorization. It is the only writer of the user store.
type Service struct {
	users    UserStore
	blobs    BlobStore
	issuer   TokenIssuer
	verifier TokenVerifier

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	now            func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(svc *Service) {
		svc.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(svc *Service) {
		svc.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(svc *Service) {
		svc.metrics = m
	}
}

// WithClock injects the time source so tests can pin "now".
func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		if now != nil {
			svc.now = now
		}
	}
}

func NewService(users UserStore, blobs BlobStore, issuer TokenIssuer, verifier TokenVerifier, opts ...Option) *Service {
	svc := &Service{
		users:    users,
		blobs:    blobs,
		issuer:   issuer,
		verifier: verifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// Register runs one registration attempt: email reservation, file-type
// check, document validation, blob upload, record commit, credential
// issuance. The email is reserved atomically before the slow blob upload and
// finalized or rolled back afterwards, so uploads never block unrelated
// registrations. An invalid document aborts the attempt entirely: no record
// is persisted and no credential is minted.
func (svc *Service) Register(ctx context.Context, req *RegisterRequest) (*Credential, error) {
	s.TrimStrings(&req.Name, &req.Email, &req.DocumentType, &req.DocumentNumber)

	if err := validation.Validate(req); err != nil {
		svc.incrementRegistrationFailure("validation")
		return nil, err
	}
	if req.IssueDate.IsZero() {
		svc.incrementRegistrationFailure("validation")
		return nil, dErrors.New(dErrors.CodeValidation, "issue_date is required")
	}

	now := svc.now()

	docType, err := kyc.ParseDocumentType(req.DocumentType)
	if err != nil {
		svc.incrementRegistrationFailure("validation")
		return nil, err
	}
	claim, err := kyc.NewDocumentClaim(docType, req.DocumentNumber, req.IssueDate, req.ExpiryDate, now)
	if err != nil {
		svc.incrementRegistrationFailure("validation")
		return nil, err
	}

	if err := svc.users.Reserve(ctx, req.Email); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			svc.incrementRegistrationFailure("duplicate_email")
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reserve email")
	}

	credential, err := svc.registerReserved(ctx, req, claim, now)
	if err != nil {
		if rbErr := svc.users.Rollback(ctx, req.Email); rbErr != nil {
			svc.logger.ErrorContext(ctx, "failed to roll back email reservation",
				"error", rbErr,
				"email", req.Email,
			)
		}
		return nil, err
	}
	return credential, nil
}

// registerReserved performs the steps that run while the caller holds the
// email reservation. Any error here makes Register roll the reservation back.
func (svc *Service) registerReserved(ctx context.Context, req *RegisterRequest, claim kyc.DocumentClaim, now time.Time) (*Credential, error) {
	if err := filecheck.Check(req.File.Filename, req.File.ContentType, req.File.Size); err != nil {
		svc.incrementRegistrationFailure("file_rejected")
		return nil, err
	}

	verdict := kyc.Validate(claim, now)
	svc.observeVerdict(verdict)
	if !verdict.Valid {
		svc.incrementRegistrationFailure("invalid_document")
		svc.emitAudit(ctx, audit.Event{
			Email:    req.Email,
			Action:   string(audit.EventRegistrationRejected),
			Decision: string(KYCStatusRejected),
			Reason:   string(verdict.Reason),
		})
		return nil, dErrors.New(dErrors.CodeInvalidDocument,
			"invalid document: "+verdict.Reason.Description())
	}

	userID := uuid.New()

	blobURL, err := svc.blobs.Put(ctx, req.File.Content, blobstore.Metadata{
		SubjectID:        userID.String(),
		OriginalFilename: req.File.Filename,
		ContentType:      req.File.ContentType,
		UploadedAt:       now,
	})
	if err != nil {
		svc.incrementRegistrationFailure("storage")
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "failed to store document")
	}

	record := &UserRecord{
		ID:    userID,
		Name:  req.Name,
		Email: req.Email,
		Document: DocumentRecord{
			ID:          uuid.New(),
			Type:        claim.Type(),
			Number:      claim.Number(),
			IssueDate:   claim.IssueDate(),
			ExpiryDate:  claim.ExpiryDate(),
			IsValid:     true,
			Warnings:    verdict.Warnings,
			BlobURL:     blobURL,
			ValidatedAt: now,
		},
		KYCStatus: KYCStatusApproved,
		CreatedAt: now,
	}

	if err := svc.users.Commit(ctx, record); err != nil {
		// A conflict here means another caller won the email between our
		// reservation expiring and the commit landing.
		if errors.Is(err, sentinel.ErrConflict) {
			svc.incrementRegistrationFailure("duplicate_email")
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "email already registered")
		}
		svc.incrementRegistrationFailure("storage")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist user record")
	}

	token, err := svc.issuer.Issue(record.ID)
	if err != nil {
		// The record is committed; surface the failure without undoing it.
		svc.logger.ErrorContext(ctx, "credential issuance failed after commit",
			"error", err,
			"user_id", record.ID.String(),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue credential")
	}

	svc.incrementRegistrations()
	svc.emitAudit(ctx, audit.Event{
		UserID:   record.ID.String(),
		Email:    record.Email,
		Action:   string(audit.EventUserRegistered),
		Decision: string(record.KYCStatus),
	})
	svc.logger.InfoContext(ctx, "user registered",
		"user_id", record.ID.String(),
		"document_type", string(record.Document.Type),
		"warnings", len(record.Document.Warnings),
	)

	return &Credential{AccessToken: token, TokenType: "bearer"}, nil
}

// Get verifies the presented credential and returns the record for id.
// It is a pure read; the record must never be mutated by callers.
func (svc *Service) Get(ctx context.Context, id uuid.UUID, credential string) (*UserRecord, error) {
	if _, err := svc.verifier.Verify(credential); err != nil {
		svc.incrementAuthFailures()
		svc.emitAudit(ctx, audit.Event{
			UserID: id.String(),
			Action: string(audit.EventAuthFailed),
			Reason: "invalid_credential",
		})
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired credential")
	}

	record, err := svc.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user record")
	}

	svc.incrementLookups()
	svc.emitAudit(ctx, audit.Event{
		UserID: record.ID.String(),
		Action: string(audit.EventUserAccessed),
	})
	return record, nil
}

func (svc *Service) emitAudit(ctx context.Context, event audit.Event) {
	if svc.auditPublisher == nil {
		return
	}
	if err := svc.auditPublisher.Emit(ctx, event); err != nil {
		svc.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", event.Action,
		)
	}
}

func (svc *Service) observeVerdict(verdict kyc.Verdict) {
	if svc.metrics == nil {
		return
	}
	if verdict.Valid {
		svc.metrics.ObserveVerdict("valid")
	} else {
		svc.metrics.ObserveVerdict("invalid")
	}
	for _, warning := range verdict.Warnings {
		svc.metrics.ObserveWarning(string(warning))
	}
}

func (svc *Service) incrementRegistrations() {
	if svc.metrics != nil {
		svc.metrics.IncrementRegistrations()
	}
}

func (svc *Service) incrementRegistrationFailure(reason string) {
	if svc.metrics != nil {
		svc.metrics.IncrementRegistrationFailures(reason)
	}
}

func (svc *Service) incrementLookups() {
	if svc.metrics != nil {
		svc.metrics.IncrementLookups()
	}
}

func (svc *Service) incrementAuthFailures() {
	if svc.metrics != nil {
		svc.metrics.IncrementAuthFailures()
	}
}
