package keywrap

import (
	"crypto/ecdh"
	"crypto/rand"
	"errors"
	"fmt"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
)

var (
	// ErrUnwrapFailed signals an AEAD tag mismatch on unwrap: key-store
	// corruption or a directory-record mismatch. The conversation is
	// unreadable until resolved.
	ErrUnwrapFailed = errors.New("conversation key unwrap failed")

	// ErrUnsupportedVersion is returned for wrap records whose version this
	// build does not know how to process.
	ErrUnsupportedVersion = errors.New("unsupported wrap record version")

	// ErrNoPublicKey reports a participant with no usable directory record.
	ErrNoPublicKey = errors.New("no public key for participant")
)

// NewConversationKey returns a fresh random conversation key.
func NewConversationKey() ([]byte, error) {
	key := make([]byte, crypto.KeyBytes)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// Wrap encrypts conversationKey for the holder of recipientPub. Salt and IV
// are fresh per call and never reused.
func Wrap(conversationKey []byte, senderPriv *ecdh.PrivateKey, recipientPub *ecdh.PublicKey) (domain.WrapRecord, error) {
	salt := make([]byte, crypto.SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return domain.WrapRecord{}, err
	}

	secret, err := crypto.SharedSecret(senderPriv, recipientPub)
	if err != nil {
		return domain.WrapRecord{}, err
	}
	defer crypto.Wipe(secret)

	wrappingKey, err := crypto.DeriveKey(secret, salt, crypto.InfoConversationKeyWrap, crypto.KeyBytes)
	if err != nil {
		return domain.WrapRecord{}, err
	}
	defer crypto.Wipe(wrappingKey)

	wrapped, iv, err := crypto.Seal(wrappingKey, conversationKey)
	if err != nil {
		return domain.WrapRecord{}, err
	}

	return domain.WrapRecord{
		WrappedKeyB64: crypto.B64(wrapped),
		IVB64:         crypto.B64(iv),
		SaltB64:       crypto.B64(salt),
		Version:       domain.KeyWrapVersion,
	}, nil
}

// Unwrap recovers the conversation key from rec. ECDH agreement is symmetric,
// so the recipient recomputes the sender's shared secret from the other side.
func Unwrap(rec domain.WrapRecord, recipientPriv *ecdh.PrivateKey, senderPub *ecdh.PublicKey) ([]byte, error) {
	if rec.Version != domain.KeyWrapVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, rec.Version)
	}

	wrapped, err := crypto.FromB64(rec.WrappedKeyB64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad wrapped key encoding", ErrUnwrapFailed)
	}
	iv, err := crypto.FromB64(rec.IVB64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad iv encoding", ErrUnwrapFailed)
	}
	salt, err := crypto.FromB64(rec.SaltB64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad salt encoding", ErrUnwrapFailed)
	}

	secret, err := crypto.SharedSecret(recipientPriv, senderPub)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(secret)

	wrappingKey, err := crypto.DeriveKey(secret, salt, crypto.InfoConversationKeyWrap, crypto.KeyBytes)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(wrappingKey)

	key, err := crypto.Open(wrappingKey, wrapped, iv)
	if err != nil {
		return nil, ErrUnwrapFailed
	}
	return key, nil
}

// FanOut wraps conversationKey once per recipient. A nil public key fails
// the whole fan-out naming the participant: silently excluding one would
// leave them permanently unable to read the conversation.
func FanOut(conversationKey []byte, senderPriv *ecdh.PrivateKey, recipients map[domain.UserID]*ecdh.PublicKey) (domain.KeyWraps, error) {
	wraps := make(domain.KeyWraps, len(recipients))
	for userID, pub := range recipients {
		if pub == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoPublicKey, userID)
		}
		rec, err := Wrap(conversationKey, senderPriv, pub)
		if err != nil {
			return nil, fmt.Errorf("wrap for %s: %w", userID, err)
		}
		wraps[userID] = rec
	}
	return wraps, nil
}
