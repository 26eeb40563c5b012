package app

import (
	"sealchat/internal/backend"
	"sealchat/internal/domain"
	"sealchat/internal/keycache"
	conversationsvc "sealchat/internal/services/conversation"
	identitysvc "sealchat/internal/services/identity"
	messagesvc "sealchat/internal/services/message"
	"sealchat/internal/store"
)

// Wire bundles all stores, services and clients for the CLI.
type Wire struct {
	Identities    domain.IdentityService
	Conversations domain.ConversationService
	Messages      domain.MessageService
	Backend       *backend.Client
	Cache         *keycache.Cache
	Scope         domain.Scope
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	identityStore := store.NewIdentityFileStore(cfg.Home, cfg.Passphrase)
	if err := identityStore.Ensure(); err != nil {
		return nil, err
	}

	bc := backend.New(cfg.BackendURL, cfg.HTTP)

	// The key cache is scoped to this wiring; EndSession clears it.
	cache := keycache.New()

	identitySvc := identitysvc.New(identityStore, bc)
	conversationSvc := conversationsvc.New(identitySvc, bc, bc, cache)
	messageSvc := messagesvc.New(conversationSvc, bc)

	return &Wire{
		Identities:    identitySvc,
		Conversations: conversationSvc,
		Messages:      messageSvc,
		Backend:       bc,
		Cache:         cache,
		Scope:         domain.Scope(cfg.Scope),
	}, nil
}
