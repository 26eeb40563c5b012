// Package crypto exposes the minimal primitives used by sealchat.
//
// Contents
//
//   - ECDH P-256 key generation, agreement and JWK serialization
//     (GenerateKeypair, SharedSecret, ExportPublicKeyJWK, ImportPublicKeyJWK)
//   - HKDF-SHA-256 key derivation with fixed domain-separation labels (DeriveKey)
//   - AES-256-GCM sealing with a fresh random IV per call (Seal, Open)
//   - Base64 string forms for wire fields (B64, FromB64)
//   - Human-comparable safety codes over two public keys (SafetyCode)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//
// # Notes
//
// Callers should treat returned secrets as sensitive and rely on Wipe when
// practical to reduce lifetime in memory.
package crypto
