package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// KeyType tags directory records with the agreement suite in use.
	KeyType = "ECDH-P256"

	// p256CoordBytes is the byte length of one P-256 coordinate.
	p256CoordBytes = 32
)

var (
	// ErrInvalidJWK is returned when a serialized key cannot be parsed or
	// describes a key outside the fixed suite.
	ErrInvalidJWK = errors.New("invalid or unsupported JWK")
)

// jwk is the serialized form of a P-256 key. Coordinates are base64url
// without padding. D is present only for private keys and never leaves
// local storage.
type jwk struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
	D   string `json:"d,omitempty"`
}

// GenerateKeypair returns a fresh P-256 key-agreement keypair.
func GenerateKeypair() (*ecdh.PrivateKey, error) {
	return ecdh.P256().GenerateKey(rand.Reader)
}

// SharedSecret computes the ECDH shared secret between priv and pub.
// Agreement is symmetric: SharedSecret(aPriv, bPub) == SharedSecret(bPriv, aPub).
func SharedSecret(priv *ecdh.PrivateKey, pub *ecdh.PublicKey) ([]byte, error) {
	secret, err := priv.ECDH(pub)
	if err != nil {
		return nil, fmt.Errorf("ecdh agreement: %w", err)
	}
	return secret, nil
}

// ExportPublicKeyJWK serializes a public key as a JSON JWK string.
func ExportPublicKeyJWK(pub *ecdh.PublicKey) (string, error) {
	raw := pub.Bytes()
	// Uncompressed point: 0x04 || X || Y.
	if len(raw) != 1+2*p256CoordBytes || raw[0] != 4 {
		return "", ErrInvalidJWK
	}
	b, err := json.Marshal(jwk{
		Kty: "EC",
		Crv: "P-256",
		X:   base64.RawURLEncoding.EncodeToString(raw[1 : 1+p256CoordBytes]),
		Y:   base64.RawURLEncoding.EncodeToString(raw[1+p256CoordBytes:]),
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ImportPublicKeyJWK parses a JWK string produced by ExportPublicKeyJWK.
// The round-trip is lossless: the imported key yields identical shared
// secrets to the original.
func ImportPublicKeyJWK(s string) (*ecdh.PublicKey, error) {
	var k jwk
	if err := json.Unmarshal([]byte(s), &k); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWK, err)
	}
	if k.Kty != "EC" || k.Crv != "P-256" {
		return nil, ErrInvalidJWK
	}
	x, err := decodeCoord(k.X)
	if err != nil {
		return nil, err
	}
	y, err := decodeCoord(k.Y)
	if err != nil {
		return nil, err
	}
	raw := make([]byte, 0, 1+2*p256CoordBytes)
	raw = append(raw, 4)
	raw = append(raw, x...)
	raw = append(raw, y...)
	pub, err := ecdh.P256().NewPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWK, err)
	}
	return pub, nil
}

// ExportPrivateKeyJWK serializes a private key, including the scalar.
// The result is for the local identity store only.
func ExportPrivateKeyJWK(priv *ecdh.PrivateKey) (string, error) {
	pubJWK, err := ExportPublicKeyJWK(priv.PublicKey())
	if err != nil {
		return "", err
	}
	var k jwk
	if err := json.Unmarshal([]byte(pubJWK), &k); err != nil {
		return "", err
	}
	k.D = base64.RawURLEncoding.EncodeToString(priv.Bytes())
	b, err := json.Marshal(k)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ImportPrivateKeyJWK parses a private JWK string. The public half is
// rederived from the scalar rather than trusted from the stored x/y.
func ImportPrivateKeyJWK(s string) (*ecdh.PrivateKey, error) {
	var k jwk
	if err := json.Unmarshal([]byte(s), &k); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWK, err)
	}
	if k.Kty != "EC" || k.Crv != "P-256" || k.D == "" {
		return nil, ErrInvalidJWK
	}
	d, err := base64.RawURLEncoding.DecodeString(k.D)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWK, err)
	}
	priv, err := ecdh.P256().NewPrivateKey(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWK, err)
	}
	return priv, nil
}

func decodeCoord(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWK, err)
	}
	if len(b) != p256CoordBytes {
		return nil, ErrInvalidJWK
	}
	return b, nil
}
