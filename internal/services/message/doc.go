// Package message sends and decrypts conversation messages.
//
// Sending validates and throttles before any cipher work; a message is
// never recorded remotely if encryption failed. History decryption runs in
// bounded batches and converts per-message authentication failures into
// placeholder entries instead of aborting the load.
package message
