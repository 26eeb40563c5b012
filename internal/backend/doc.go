// Package backend talks to the hosted object store: the public-key
// directory, conversation records and message records.
//
// The client is a thin JSON-over-HTTP adapter. It owns no encryption:
// everything it sends or receives is already ciphertext or public material.
package backend
