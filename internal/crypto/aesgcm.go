package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

const (
	// KeyBytes is the size of an AES-256 key.
	KeyBytes = 32
	// IVBytes is the size of an AES-GCM nonce.
	IVBytes = 12
	// SaltBytes is the size of the key-derivation salt used for wrapping.
	SaltBytes = 32
)

var (
	// ErrDecryptFailed is returned on AEAD authentication failure: wrong
	// key, corrupted ciphertext, or tampering.
	ErrDecryptFailed = errors.New("decryption failed")

	// ErrInvalidKeySize is returned when a symmetric key is not KeyBytes long.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidIVSize is returned when an IV is not IVBytes long.
	ErrInvalidIVSize = errors.New("invalid iv size")
)

// Seal encrypts plaintext under key with AES-256-GCM and a fresh random IV.
// The IV is generated per call and never reused.
func Seal(key, plaintext []byte) (ciphertext, iv []byte, err error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}
	iv = make([]byte, IVBytes)
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, err
	}
	return aead.Seal(nil, iv, plaintext, nil), iv, nil
}

// Open decrypts ciphertext under key and iv. Authentication failure maps to
// ErrDecryptFailed so callers can branch without string matching.
func Open(key, ciphertext, iv []byte) ([]byte, error) {
	if len(iv) != IVBytes {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidIVSize, len(iv), IVBytes)
	}
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return pt, nil
}

// NewSymmetricKey returns KeyBytes of fresh random key material.
func NewSymmetricKey() ([]byte, error) {
	key := make([]byte, KeyBytes)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeyBytes {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), KeyBytes)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
