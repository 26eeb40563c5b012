// Package conversation creates and opens encrypted conversations.
//
// Creating a conversation generates a fresh symmetric key and wraps it once
// per participant (including the creator). Opening one unwraps the caller's
// wrap exactly once per session; the unwrapped key lives in the session's
// key cache thereafter.
package conversation
