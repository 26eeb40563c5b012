package domain

// UserID identifies a user in the directory and in conversation records.
type UserID string

// String returns the string form of the user identifier.
func (u UserID) String() string { return string(u) }

// Scope is the organizational namespace a public-key record is published
// under. A user has exactly one current record per (user, scope).
type Scope string

// String returns the string form of the scope.
func (s Scope) String() string { return string(s) }

// ConversationID identifies a conversation in the remote store.
type ConversationID string

// String returns the string form of the conversation identifier.
func (id ConversationID) String() string { return string(id) }

// MessageID identifies a message in the remote store.
type MessageID string

// String returns the string form of the message identifier.
func (id MessageID) String() string { return string(id) }
