package registration

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"kycgate/internal/kyc"
	"kycgate/pkg/sentinel"
)

// PostgresUserStore persists user records in PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE kyc_email_reservations (
//	    email       TEXT PRIMARY KEY,
//	    reserved_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//
//	CREATE TABLE kyc_users (
//	    id            UUID PRIMARY KEY,
//	    name          TEXT NOT NULL,
//	    email         TEXT NOT NULL UNIQUE,
//	    kyc_status    TEXT NOT NULL,
//	    created_at    TIMESTAMPTZ NOT NULL,
//	    doc_id        UUID NOT NULL,
//	    doc_type      TEXT NOT NULL,
//	    doc_number    TEXT NOT NULL,
//	    doc_issued    TIMESTAMPTZ NOT NULL,
//	    doc_expires   TIMESTAMPTZ,
//	    doc_valid     BOOLEAN NOT NULL,
//	    doc_warnings  JSONB NOT NULL DEFAULT '[]',
//	    doc_blob_url  TEXT NOT NULL,
//	    doc_validated TIMESTAMPTZ NOT NULL
//	);
type PostgresUserStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

// Reserve inserts a reservation row, refusing when the email is already
// reserved or committed. Uniqueness is enforced by the database so the
// check-and-insert is atomic across instances.
func (s *PostgresUserStore) Reserve(ctx context.Context, email string) error {
	key := normalizeEmail(email)
	query := `
		INSERT INTO kyc_email_reservations (email)
		SELECT $1
		WHERE NOT EXISTS (SELECT 1 FROM kyc_users WHERE email = $1)
	`
	res, err := s.db.ExecContext(ctx, query, key)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", email, sentinel.ErrConflict)
		}
		return fmt.Errorf("reserve email: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve email rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("email %s: %w", email, sentinel.ErrConflict)
	}
	return nil
}

// Commit writes the record and releases its reservation in one transaction.
func (s *PostgresUserStore) Commit(ctx context.Context, record *UserRecord) error {
	if record == nil {
		return fmt.Errorf("user record is required")
	}
	warnings, err := json.Marshal(record.Document.Warnings)
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is no-op
	}()

	key := normalizeEmail(record.Email)
	if _, err := tx.ExecContext(ctx, `DELETE FROM kyc_email_reservations WHERE email = $1`, key); err != nil {
		return fmt.Errorf("release reservation: %w", err)
	}

	query := `
		INSERT INTO kyc_users (
			id, name, email, kyc_status, created_at,
			doc_id, doc_type, doc_number, doc_issued, doc_expires,
			doc_valid, doc_warnings, doc_blob_url, doc_validated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = tx.ExecContext(ctx, query,
		record.ID,
		record.Name,
		key,
		string(record.KYCStatus),
		record.CreatedAt,
		record.Document.ID,
		string(record.Document.Type),
		record.Document.Number,
		record.Document.IssueDate,
		record.Document.ExpiryDate,
		record.Document.IsValid,
		warnings,
		record.Document.BlobURL,
		record.Document.ValidatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", record.Email, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) Rollback(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM kyc_email_reservations WHERE email = $1`, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("release reservation: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id uuid.UUID) (*UserRecord, error) {
	query := `
		SELECT id, name, email, kyc_status, created_at,
		       doc_id, doc_type, doc_number, doc_issued, doc_expires,
		       doc_valid, doc_warnings, doc_blob_url, doc_validated
		FROM kyc_users
		WHERE id = $1
	`
	var (
		record   UserRecord
		docType  string
		status   string
		warnings []byte
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.Name,
		&record.Email,
		&status,
		&record.CreatedAt,
		&record.Document.ID,
		&docType,
		&record.Document.Number,
		&record.Document.IssueDate,
		&record.Document.ExpiryDate,
		&record.Document.IsValid,
		&warnings,
		&record.Document.BlobURL,
		&record.Document.ValidatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	record.KYCStatus = KYCStatus(status)
	record.Document.Type = kyc.DocumentType(docType)
	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &record.Document.Warnings); err != nil {
			return nil, fmt.Errorf("unmarshal warnings: %w", err)
		}
	}
	return &record, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
