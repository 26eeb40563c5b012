package store

import (
	"sync"

	"sealchat/internal/domain"
)

// MemoryIdentityStore keeps identity records in process memory only. It backs
// the degraded mode entered when durable storage is unavailable, and tests.
type MemoryIdentityStore struct {
	mu   sync.Mutex
	recs map[domain.UserID]domain.IdentityRecord
}

// NewMemoryIdentityStore returns an empty in-memory store.
func NewMemoryIdentityStore() *MemoryIdentityStore {
	return &MemoryIdentityStore{recs: make(map[domain.UserID]domain.IdentityRecord)}
}

// SaveIdentity stores the record for userID.
func (s *MemoryIdentityStore) SaveIdentity(userID domain.UserID, rec domain.IdentityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[userID] = rec
	return nil
}

// LoadIdentity retrieves the record for userID.
func (s *MemoryIdentityStore) LoadIdentity(userID domain.UserID) (domain.IdentityRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[userID]
	return rec, ok, nil
}

// Compile-time assertion that MemoryIdentityStore implements domain.IdentityStore.
var _ domain.IdentityStore = (*MemoryIdentityStore)(nil)
