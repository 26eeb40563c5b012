// Package store provides device-local persistence for sealchat's identity keys.
//
// The identity record is serialized as JSON and encrypted at rest under a
// passphrase-derived key before touching disk. Writes go through a temp file
// and rename so a crash never leaves a partial record. All methods are
// concurrency-safe via internal locking.
//
// A MemoryIdentityStore backs the degraded, non-persistent mode used when
// durable storage is unavailable, and tests.
package store
