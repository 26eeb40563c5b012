package envelope

import (
	"encoding/json"
	"fmt"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
)

// EncryptMessage seals plaintext under the conversation key and returns the
// base64 ciphertext and IV for the message record.
func EncryptMessage(conversationKey []byte, plaintext string) (ctB64, ivB64 string, err error) {
	ct, iv, err := crypto.Seal(conversationKey, []byte(plaintext))
	if err != nil {
		return "", "", fmt.Errorf("encrypt message: %w", err)
	}
	return crypto.B64(ct), crypto.B64(iv), nil
}

// DecryptMessage opens a message body. Tampering, corruption or a wrong key
// yields crypto.ErrDecryptFailed.
func DecryptMessage(conversationKey []byte, ctB64, ivB64 string) (string, error) {
	ct, err := crypto.FromB64(ctB64)
	if err != nil {
		return "", crypto.ErrDecryptFailed
	}
	iv, err := crypto.FromB64(ivB64)
	if err != nil {
		return "", crypto.ErrDecryptFailed
	}
	pt, err := crypto.Open(conversationKey, ct, iv)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

// EncryptMetadata serializes the tagged metadata union and seals it under
// the conversation key. The IV is prepended to the ciphertext inside one
// base64 field, matching the message record's single metadata column.
func EncryptMetadata(conversationKey []byte, meta domain.Metadata) (string, error) {
	if err := meta.Validate(); err != nil {
		return "", err
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	ct, iv, err := crypto.Seal(conversationKey, raw)
	if err != nil {
		return "", fmt.Errorf("encrypt metadata: %w", err)
	}
	return crypto.B64(append(iv, ct...)), nil
}

// DecryptMetadata reverses EncryptMetadata. Any failure returns a nil
// metadata rather than an error: a bad metadata blob should not make the
// message itself unreadable.
func DecryptMetadata(conversationKey []byte, blobB64 string) *domain.Metadata {
	blob, err := crypto.FromB64(blobB64)
	if err != nil || len(blob) <= crypto.IVBytes {
		return nil
	}
	raw, err := crypto.Open(conversationKey, blob[crypto.IVBytes:], blob[:crypto.IVBytes])
	if err != nil {
		return nil
	}
	var meta domain.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil
	}
	return &meta
}
