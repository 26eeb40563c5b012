package domain

import (
	"context"
	"errors"
)

// ErrNotFound reports that a remote store has no record at the requested
// key. Stores return it (possibly wrapped) so callers can tell a missing
// record apart from a transport or server failure.
var ErrNotFound = errors.New("not found")

// IdentityStore persists your long-term identity keys on this device.
// Load reports ok=false when no record exists for the user.
type IdentityStore interface {
	SaveIdentity(userID UserID, rec IdentityRecord) error
	LoadIdentity(userID UserID) (IdentityRecord, bool, error)
}

// Directory is the shared public-key registry on the hosted backend.
type Directory interface {
	PublishPublicKey(ctx context.Context, rec PublicKeyRecord) error
	FetchPublicKey(ctx context.Context, userID UserID, scope Scope) (PublicKeyRecord, error)
}

// ConversationStore reads and writes conversation records on the hosted backend.
type ConversationStore interface {
	CreateConversation(ctx context.Context, conv Conversation) error
	FetchConversation(ctx context.Context, id ConversationID) (Conversation, error)
	UpdateKeyWraps(ctx context.Context, id ConversationID, participants []UserID, wraps KeyWraps) error
}

// MessageStore reads and writes message records on the hosted backend.
type MessageStore interface {
	PutMessage(ctx context.Context, msg Message) error
	ListMessages(ctx context.Context, id ConversationID, limit int) ([]Message, error)
}

// IdentityService creates, retrieves and publishes your identity keys.
type IdentityService interface {
	GetOrCreate(userID UserID) (Identity, error)
	Publish(ctx context.Context, userID UserID, scope Scope) error
	SafetyCode(ctx context.Context, userID, peer UserID, scope Scope) (string, error)
	Degraded() bool
}

// ConversationService creates and opens encrypted conversations.
type ConversationService interface {
	Create(ctx context.Context, creator UserID, scope Scope, participants []UserID) (Conversation, error)
	Open(ctx context.Context, userID UserID, id ConversationID) ([]byte, error)
	AddParticipant(ctx context.Context, member UserID, id ConversationID, newcomer UserID) error
	EndSession()
}

// MessageService encrypts, sends and decrypts messages.
type MessageService interface {
	Send(ctx context.Context, sender UserID, conv ConversationID, text string) (Message, error)
	SendWithMetadata(ctx context.Context, sender UserID, conv ConversationID, meta Metadata) (Message, error)
	History(ctx context.Context, userID UserID, conv ConversationID, limit int) ([]DecryptedMessage, error)
}
