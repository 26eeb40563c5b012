// Package keywrap wraps and unwraps conversation keys for individual
// participants.
//
// A conversation key is a random 256-bit symmetric key generated by the
// conversation's initiator. For each participant the initiator derives a
// one-time wrapping key from an ECDH shared secret via HKDF with a fresh
// random salt, then seals the conversation key under it with AES-GCM. No
// pair of participants ever shares a wrapping key, so compromise of one
// wrap exposes no other, and the backend only ever stores wrapped blobs.
package keywrap
