package registration

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"kycgate/internal/kyc"
	"kycgate/pkg/sentinel"
	syncutil "kycgate/pkg/sync"
)

// InMemoryUserStore is a thread-safe in-memory UserStore for development
// and testing. Email reservation is serialized per email through a sharded
// mutex so two concurrent attempts on the same address cannot both succeed.
type InMemoryUserStore struct {
	emailLocks *syncutil.ShardedMutex

	mu       sync.RWMutex
	users    map[uuid.UUID]*UserRecord
	byEmail  map[string]uuid.UUID
	reserved map[string]struct{}
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		emailLocks: syncutil.NewShardedMutex(),
		users:      make(map[uuid.UUID]*UserRecord),
		byEmail:    make(map[string]uuid.UUID),
		reserved:   make(map[string]struct{}),
	}
}

func (s *InMemoryUserStore) Reserve(_ context.Context, email string) error {
	key := normalizeEmail(email)
	s.emailLocks.Lock(key)
	defer s.emailLocks.Unlock(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[key]; taken {
		return fmt.Errorf("email %s: %w", email, sentinel.ErrConflict)
	}
	if _, held := s.reserved[key]; held {
		return fmt.Errorf("email %s: %w", email, sentinel.ErrConflict)
	}
	s.reserved[key] = struct{}{}
	return nil
}

func (s *InMemoryUserStore) Commit(_ context.Context, record *UserRecord) error {
	key := normalizeEmail(record.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.reserved, key)
	s.users[record.ID] = cloneRecord(record)
	s.byEmail[key] = record.ID
	return nil
}

func (s *InMemoryUserStore) Rollback(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.reserved, normalizeEmail(email))
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id uuid.UUID) (*UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, sentinel.ErrNotFound)
	}
	return cloneRecord(record), nil
}

// Len returns the number of committed records, for tests.
func (s *InMemoryUserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// cloneRecord copies the record so callers cannot alias internal state.
func cloneRecord(record *UserRecord) *UserRecord {
	clone := *record
	if record.Document.ExpiryDate != nil {
		expiry := *record.Document.ExpiryDate
		clone.Document.ExpiryDate = &expiry
	}
	if record.Document.Warnings != nil {
		clone.Document.Warnings = append([]kyc.Warning(nil), record.Document.Warnings...)
	}
	return &clone
}
