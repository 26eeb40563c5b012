package domain

import "crypto/ecdh"

// Identity holds a user's long-term key-agreement keypair. The private key
// never leaves the device that generated it and is never serialized to any
// remote store.
type Identity struct {
	UserID       UserID
	Private      *ecdh.PrivateKey
	Public       *ecdh.PublicKey
	PublicKeyJWK string
}

// IdentityRecord is the serialized, device-local form of an Identity.
// PrivateKeyJWK must never be transmitted over the network.
type IdentityRecord struct {
	PrivateKeyJWK string `json:"privateKeyJwk"`
	PublicKeyJWK  string `json:"publicKeyJwk"`
}

// PublicKeyRecord is the public half of an identity, published to the shared
// directory so other users can wrap conversation keys for this user.
// Created once per (user, scope); immutable thereafter.
type PublicKeyRecord struct {
	UserID       UserID `json:"userId"`
	Scope        Scope  `json:"scope"`
	PublicKeyJWK string `json:"publicKeyJwk"`
	KeyType      string `json:"keyType"`
}
