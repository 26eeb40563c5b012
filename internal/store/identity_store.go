package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"sealchat/internal/domain"
)

// IdentityFileStore persists identity records to disk, one encrypted file
// per user, keyed by a digest of the user id so arbitrary identifiers are
// safe as filenames.
type IdentityFileStore struct {
	dir        string
	passphrase string
	mu         sync.Mutex
}

// NewIdentityFileStore returns an IdentityFileStore rooted at dir. The
// passphrase protects records at rest on this device only.
func NewIdentityFileStore(dir, passphrase string) *IdentityFileStore {
	return &IdentityFileStore{dir: dir, passphrase: passphrase}
}

// SaveIdentity writes the encrypted identity record for userID.
func (s *IdentityFileStore) SaveIdentity(userID domain.UserID, rec domain.IdentityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	N, r, p := scryptParamsDefault()
	ct, err := encrypt(s.passphrase, raw, N, r, p)
	if err != nil {
		return err
	}
	return writeFile(s.path(userID), ct, 0o600)
}

// LoadIdentity reads and decrypts the identity record for userID.
// A missing record reports ok=false with a nil error; a present but
// undecryptable record reports ErrCorruptKeystore so the caller can fall
// back to regeneration.
func (s *IdentityFileStore) LoadIdentity(userID domain.UserID) (domain.IdentityRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(s.path(userID))
	if err != nil {
		return domain.IdentityRecord{}, false, err
	}
	if b == nil {
		return domain.IdentityRecord{}, false, nil
	}
	raw, err := decrypt(s.passphrase, b)
	if err != nil {
		return domain.IdentityRecord{}, false, err
	}
	var rec domain.IdentityRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.IdentityRecord{}, false, fmt.Errorf("%w: %v", ErrCorruptKeystore, err)
	}
	return rec, true, nil
}

func (s *IdentityFileStore) path(userID domain.UserID) string {
	sum := sha256.Sum256([]byte(userID))
	return filepath.Join(s.dir, "identity-"+hex.EncodeToString(sum[:8])+".enc")
}

// Ensure ensures the store directory exists.
func (s *IdentityFileStore) Ensure() error {
	return os.MkdirAll(s.dir, 0o700)
}

// Compile-time assertion that IdentityFileStore implements domain.IdentityStore.
var _ domain.IdentityStore = (*IdentityFileStore)(nil)
