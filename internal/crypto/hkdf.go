package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Domain-separation labels for DeriveKey. Different purposes must use
// different labels even when secret and salt coincide.
const (
	InfoConversationKeyWrap = "ConversationKeyWrap.v1"
)

// DeriveKey derives length bytes from secret using HKDF-SHA-256.
// A nil or empty salt is replaced by a zero-filled block per RFC 5869.
// Deterministic: identical inputs always yield identical output.
func DeriveKey(secret, salt []byte, info string, length int) ([]byte, error) {
	if len(salt) == 0 {
		salt = make([]byte, sha256.Size)
	}
	r := hkdf.New(sha256.New, secret, salt, []byte(info))
	key := make([]byte, length)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}
