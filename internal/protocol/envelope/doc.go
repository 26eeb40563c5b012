// Package envelope encrypts and decrypts message bodies and structured
// metadata under a conversation's symmetric key.
//
// Every encrypt call draws a fresh random IV; messages are self-contained
// and carry no ordering dependency on one another. Decrypt failures map to
// crypto.ErrDecryptFailed so callers can render a per-message placeholder
// instead of aborting a history load.
package envelope
