package identity

import (
	"context"
	"fmt"
	"sync"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
)

// Service manages identity key creation and access using a backing store
// and the shared directory.
type Service struct {
	store     domain.IdentityStore
	directory domain.Directory

	mu        sync.Mutex
	cached    map[domain.UserID]domain.Identity
	published map[string]bool // keyed by (user, scope): one record per pair
	degraded  bool
}

// New returns an identity service backed by the given store and directory.
func New(store domain.IdentityStore, directory domain.Directory) *Service {
	return &Service{
		store:     store,
		directory: directory,
		cached:    make(map[domain.UserID]domain.Identity),
		published: make(map[string]bool),
	}
}

// GetOrCreate loads the persisted keypair for userID, or generates and
// persists a fresh one. Idempotent within a session: the first result is
// cached and returned for every subsequent call. Store failures degrade to
// an in-memory identity for the current session rather than failing.
func (s *Service) GetOrCreate(userID domain.UserID) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.cached[userID]; ok {
		return id, nil
	}

	rec, ok, err := s.store.LoadIdentity(userID)
	if err == nil && ok {
		if id, impErr := parseRecord(userID, rec); impErr == nil {
			s.cached[userID] = id
			return id, nil
		}
		// Undecodable record: fall through to regeneration.
	}
	// err != nil means the store is unavailable or the blob is corrupt;
	// both regenerate rather than crash.

	id, rec, genErr := generate(userID)
	if genErr != nil {
		return domain.Identity{}, genErr
	}
	if saveErr := s.store.SaveIdentity(userID, rec); saveErr != nil {
		// Keep the session alive without persistence.
		s.degraded = true
	}
	s.cached[userID] = id
	return id, nil
}

// Publish writes the public-key directory record for (userID, scope).
// At most one publish per (user, scope) pair per session; the backend
// enforces create-once for the pair. One identity may publish under
// several scopes, each with its own record.
func (s *Service) Publish(ctx context.Context, userID domain.UserID, scope domain.Scope) error {
	id, err := s.GetOrCreate(userID)
	if err != nil {
		return err
	}

	key := publishKey(userID, scope)
	s.mu.Lock()
	already := s.published[key]
	s.mu.Unlock()
	if already {
		return nil
	}

	rec := domain.PublicKeyRecord{
		UserID:       userID,
		Scope:        scope,
		PublicKeyJWK: id.PublicKeyJWK,
		KeyType:      crypto.KeyType,
	}
	if err := s.directory.PublishPublicKey(ctx, rec); err != nil {
		return fmt.Errorf("publish public key: %w", err)
	}

	s.mu.Lock()
	s.published[key] = true
	s.mu.Unlock()
	return nil
}

func publishKey(userID domain.UserID, scope domain.Scope) string {
	return scope.String() + "|" + userID.String()
}

// SafetyCode derives the human-comparable verification code for userID and
// peer. Both sides compute the same code regardless of argument order.
func (s *Service) SafetyCode(ctx context.Context, userID, peer domain.UserID, scope domain.Scope) (string, error) {
	id, err := s.GetOrCreate(userID)
	if err != nil {
		return "", err
	}
	peerRec, err := s.directory.FetchPublicKey(ctx, peer, scope)
	if err != nil {
		return "", err
	}
	return crypto.SafetyCode(id.PublicKeyJWK, peerRec.PublicKeyJWK), nil
}

// Degraded reports whether the service fell back to non-persistent mode.
func (s *Service) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func generate(userID domain.UserID) (domain.Identity, domain.IdentityRecord, error) {
	priv, err := crypto.GenerateKeypair()
	if err != nil {
		return domain.Identity{}, domain.IdentityRecord{}, err
	}
	pubJWK, err := crypto.ExportPublicKeyJWK(priv.PublicKey())
	if err != nil {
		return domain.Identity{}, domain.IdentityRecord{}, err
	}
	privJWK, err := crypto.ExportPrivateKeyJWK(priv)
	if err != nil {
		return domain.Identity{}, domain.IdentityRecord{}, err
	}
	id := domain.Identity{
		UserID:       userID,
		Private:      priv,
		Public:       priv.PublicKey(),
		PublicKeyJWK: pubJWK,
	}
	return id, domain.IdentityRecord{PrivateKeyJWK: privJWK, PublicKeyJWK: pubJWK}, nil
}

func parseRecord(userID domain.UserID, rec domain.IdentityRecord) (domain.Identity, error) {
	priv, err := crypto.ImportPrivateKeyJWK(rec.PrivateKeyJWK)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{
		UserID:       userID,
		Private:      priv,
		Public:       priv.PublicKey(),
		PublicKeyJWK: rec.PublicKeyJWK,
	}, nil
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
