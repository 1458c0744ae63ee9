package registration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"kycgate/internal/kyc"
	"kycgate/pkg/sentinel"
	"kycgate/pkg/testutil"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryUserStore
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryUserStore()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) record(email string) *UserRecord {
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
	return &UserRecord{
		ID:    uuid.New(),
		Name:  "Maria Gomez",
		Email: email,
		Document: DocumentRecord{
			ID:          uuid.New(),
			Type:        kyc.DocumentTypeCC,
			Number:      "1234567",
			IssueDate:   now.AddDate(-1, 0, 0),
			IsValid:     true,
			BlobURL:     "memory://documents/x",
			ValidatedAt: now,
		},
		KYCStatus: KYCStatusApproved,
		CreatedAt: now,
	}
}

func (s *MemoryStoreSuite) TestReserveCommitFind() {
	record := s.record("maria@example.com")

	s.Require().NoError(s.store.Reserve(s.ctx, record.Email))
	s.Require().NoError(s.store.Commit(s.ctx, record))

	got, err := s.store.FindByID(s.ctx, record.ID)
	s.Require().NoError(err)
	s.Equal(record.Email, got.Email)
	s.Equal(record.Document.Number, got.Document.Number)
}

func (s *MemoryStoreSuite) TestReserveHeldEmailConflicts() {
	s.Require().NoError(s.store.Reserve(s.ctx, "maria@example.com"))

	err := s.store.Reserve(s.ctx, "maria@example.com")
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *MemoryStoreSuite) TestReserveCommittedEmailConflicts() {
	record := s.record("maria@example.com")
	s.Require().NoError(s.store.Reserve(s.ctx, record.Email))
	s.Require().NoError(s.store.Commit(s.ctx, record))

	err := s.store.Reserve(s.ctx, record.Email)
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *MemoryStoreSuite) TestReserveIsCaseInsensitive() {
	s.Require().NoError(s.store.Reserve(s.ctx, "Maria@Example.com"))

	err := s.store.Reserve(s.ctx, "maria@example.com")
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *MemoryStoreSuite) TestRollbackFreesEmail() {
	s.Require().NoError(s.store.Reserve(s.ctx, "maria@example.com"))
	s.Require().NoError(s.store.Rollback(s.ctx, "maria@example.com"))

	s.Require().NoError(s.store.Reserve(s.ctx, "maria@example.com"))
}

func (s *MemoryStoreSuite) TestFindByIDMissing() {
	_, err := s.store.FindByID(s.ctx, uuid.New())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestFindByIDReturnsCopy() {
	record := s.record("maria@example.com")
	record.Document.Warnings = []kyc.Warning{kyc.WarningDocumentVeryOld}
	s.Require().NoError(s.store.Reserve(s.ctx, record.Email))
	s.Require().NoError(s.store.Commit(s.ctx, record))

	first, err := s.store.FindByID(s.ctx, record.ID)
	s.Require().NoError(err)
	first.Name = "mutated"
	first.Document.Warnings[0] = "mutated"

	second, err := s.store.FindByID(s.ctx, record.ID)
	s.Require().NoError(err)
	s.Equal("Maria Gomez", second.Name)
	s.Equal(kyc.WarningDocumentVeryOld, second.Document.Warnings[0])
}

func (s *MemoryStoreSuite) TestConcurrentReserveSameEmail() {
	result := testutil.RunConcurrent(50, func(int) error {
		return s.store.Reserve(s.ctx, "race@example.com")
	})

	s.Equal(int32(1), result.Successes)
	s.Equal(int32(49), result.Conflicts)
}

func (s *MemoryStoreSuite) TestConcurrentDistinctEmailsAllSucceed() {
	result := testutil.RunConcurrent(50, func(idx int) error {
		record := s.record(uuid.NewString() + "@example.com")
		if err := s.store.Reserve(s.ctx, record.Email); err != nil {
			return err
		}
		return s.store.Commit(s.ctx, record)
	})

	s.Equal(int32(50), result.Successes)
	s.Equal(50, s.store.Len())
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}
