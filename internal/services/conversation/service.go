package conversation

import (
	"context"
	"crypto/ecdh"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
	"sealchat/internal/keycache"
	"sealchat/internal/protocol/keywrap"
)

var (
	// ErrNotParticipant is returned when the caller has no wrap entry in the
	// conversation. Distinct from "no messages yet": the whole conversation
	// is unreadable for this user.
	ErrNotParticipant = errors.New("no conversation key wrapped for this user")
)

// Service implements conversation creation, opening and membership changes.
type Service struct {
	ids       domain.IdentityService
	directory domain.Directory
	convs     domain.ConversationStore
	cache     *keycache.Cache
}

// New constructs a conversation service. The cache is owned by the session
// that built the wiring; EndSession drops all key material it holds.
func New(ids domain.IdentityService, directory domain.Directory, convs domain.ConversationStore, cache *keycache.Cache) *Service {
	return &Service{ids: ids, directory: directory, convs: convs, cache: cache}
}

// Create generates a conversation key, wraps it for the creator and every
// participant, and stores the record. A participant without a directory
// record fails the whole create: silently excluding one would leave them
// permanently unable to read the conversation.
func (s *Service) Create(ctx context.Context, creator domain.UserID, scope domain.Scope, participants []domain.UserID) (domain.Conversation, error) {
	id, err := s.ids.GetOrCreate(creator)
	if err != nil {
		return domain.Conversation{}, err
	}

	// Deduplicate so the stored participant list matches the wrap entries
	// one to one, even on degenerate input repeating a user or the creator.
	members := make([]domain.UserID, 0, len(participants)+1)
	recipients := make(map[domain.UserID]*ecdh.PublicKey, len(participants)+1)
	for _, m := range append([]domain.UserID{creator}, participants...) {
		if _, dup := recipients[m]; dup {
			continue
		}
		pub, err := s.fetchPub(ctx, m, scope)
		if err != nil {
			return domain.Conversation{}, err
		}
		recipients[m] = pub
		members = append(members, m)
	}

	key, err := keywrap.NewConversationKey()
	if err != nil {
		return domain.Conversation{}, err
	}
	defer crypto.Wipe(key)

	wraps, err := keywrap.FanOut(key, id.Private, recipients)
	if err != nil {
		return domain.Conversation{}, err
	}

	conv := domain.Conversation{
		ID:           domain.ConversationID(uuid.NewString()),
		Scope:        scope,
		Creator:      creator,
		Participants: members,
		KeyWraps:     wraps,
		CreatedAt:    time.Now().Unix(),
	}
	if err := s.convs.CreateConversation(ctx, conv); err != nil {
		return domain.Conversation{}, fmt.Errorf("store conversation: %w", err)
	}

	s.cache.Put(conv.ID, key)
	return conv, nil
}

// Open returns the conversation key for the caller, unwrapping it at most
// once per session. Concurrent callers missing the cache share one unwrap.
func (s *Service) Open(ctx context.Context, userID domain.UserID, convID domain.ConversationID) ([]byte, error) {
	return s.cache.Do(convID, func() ([]byte, error) {
		return s.unwrap(ctx, userID, convID)
	})
}

// AddParticipant fans a fresh wrap out to newcomer, produced by an existing
// member holding the unwrapped key. Membership changes never rotate the
// conversation key.
func (s *Service) AddParticipant(ctx context.Context, member domain.UserID, convID domain.ConversationID, newcomer domain.UserID) error {
	key, err := s.Open(ctx, member, convID)
	if err != nil {
		return err
	}
	defer crypto.Wipe(key)

	id, err := s.ids.GetOrCreate(member)
	if err != nil {
		return err
	}
	conv, err := s.convs.FetchConversation(ctx, convID)
	if err != nil {
		return err
	}
	if _, ok := conv.KeyWraps[newcomer]; ok {
		return nil
	}

	pub, err := s.fetchPub(ctx, newcomer, conv.Scope)
	if err != nil {
		return err
	}
	rec, err := keywrap.Wrap(key, id.Private, pub)
	if err != nil {
		return fmt.Errorf("wrap for %s: %w", newcomer, err)
	}
	rec.WrappedBy = member

	conv.KeyWraps[newcomer] = rec
	participants := append(conv.Participants, newcomer)
	return s.convs.UpdateKeyWraps(ctx, convID, participants, conv.KeyWraps)
}

// EndSession drops all unwrapped key material held for this session.
func (s *Service) EndSession() { s.cache.Clear() }

func (s *Service) unwrap(ctx context.Context, userID domain.UserID, convID domain.ConversationID) ([]byte, error) {
	conv, err := s.convs.FetchConversation(ctx, convID)
	if err != nil {
		return nil, err
	}
	rec, ok := conv.KeyWraps[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotParticipant, userID)
	}

	id, err := s.ids.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	// Wraps from creation are by the creator; later fan-outs name the
	// member who produced them.
	wrapper := conv.Creator
	if rec.WrappedBy != "" {
		wrapper = rec.WrappedBy
	}
	wrapperPub, err := s.fetchPub(ctx, wrapper, conv.Scope)
	if err != nil {
		return nil, err
	}

	key, err := keywrap.Unwrap(rec, id.Private, wrapperPub)
	if err != nil {
		return nil, fmt.Errorf("conversation %s: %w", convID, err)
	}
	return key, nil
}

func (s *Service) fetchPub(ctx context.Context, userID domain.UserID, scope domain.Scope) (*ecdh.PublicKey, error) {
	rec, err := s.directory.FetchPublicKey(ctx, userID, scope)
	if err != nil {
		// Only a confirmed missing record means the participant has no key.
		// Transport and server failures keep their cause so the caller does
		// not chase a re-publish for a connectivity problem.
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", keywrap.ErrNoPublicKey, userID)
		}
		return nil, fmt.Errorf("fetch public key for %s: %w", userID, err)
	}
	pub, err := crypto.ImportPublicKeyJWK(rec.PublicKeyJWK)
	if err != nil {
		return nil, fmt.Errorf("directory record for %s: %w", userID, err)
	}
	return pub, nil
}

// Compile-time assertion that Service implements domain.ConversationService.
var _ domain.ConversationService = (*Service)(nil)
