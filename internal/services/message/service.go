package message

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"sealchat/internal/domain"
	"sealchat/internal/protocol/envelope"
	"sealchat/internal/validate"
)

const (
	// DefaultMinSendInterval is the minimum time between sends in one
	// conversation. Violations fail before the cipher or the store is touched.
	DefaultMinSendInterval = 500 * time.Millisecond

	// decryptBatchSize bounds how many messages are decrypted between
	// context checks while loading history.
	decryptBatchSize = 64
)

// ErrSendThrottled is returned when a send violates the per-conversation
// minimum interval.
var ErrSendThrottled = errors.New("sending too fast; try again shortly")

// Service encrypts, stores and decrypts messages for open conversations.
type Service struct {
	convs domain.ConversationService
	msgs  domain.MessageStore

	minInterval time.Duration
	now         func() time.Time

	mu       sync.Mutex
	lastSend map[domain.ConversationID]time.Time
}

// New constructs a message service with the default throttle interval.
func New(convs domain.ConversationService, msgs domain.MessageStore) *Service {
	return &Service{
		convs:       convs,
		msgs:        msgs,
		minInterval: DefaultMinSendInterval,
		now:         time.Now,
		lastSend:    make(map[domain.ConversationID]time.Time),
	}
}

// Send validates, throttles, encrypts and stores a text message. Validation
// and throttle failures are synchronous precondition errors; encryption
// failure propagates and nothing is written.
func (s *Service) Send(ctx context.Context, sender domain.UserID, conv domain.ConversationID, text string) (domain.Message, error) {
	trimmed, err := validate.MessageText(text)
	if err != nil {
		return domain.Message{}, err
	}
	if err := s.throttle(conv); err != nil {
		return domain.Message{}, err
	}

	key, err := s.convs.Open(ctx, sender, conv)
	if err != nil {
		return domain.Message{}, err
	}
	ctB64, ivB64, err := envelope.EncryptMessage(key, trimmed)
	if err != nil {
		return domain.Message{}, err
	}

	msg := domain.Message{
		ID:             domain.MessageID(uuid.NewString()),
		ConversationID: conv,
		Sender:         sender,
		CiphertextB64:  ctB64,
		IVB64:          ivB64,
		Type:           domain.MessageText,
		KeyVersion:     domain.KeyWrapVersion,
		SentAt:         s.now().Unix(),
	}
	if err := s.msgs.PutMessage(ctx, msg); err != nil {
		return domain.Message{}, fmt.Errorf("store message: %w", err)
	}
	s.markSent(conv)
	return msg, nil
}

// SendWithMetadata encrypts and stores a non-text message: the metadata
// union travels as an encrypted blob beside an encrypted (possibly empty)
// caption. File descriptors are validated against the upload limits first.
func (s *Service) SendWithMetadata(ctx context.Context, sender domain.UserID, conv domain.ConversationID, meta domain.Metadata) (domain.Message, error) {
	if err := meta.Validate(); err != nil {
		return domain.Message{}, err
	}
	if meta.Type == domain.MessageFile {
		f := meta.File
		if err := validate.FileUpload(f.Name, f.MimeType, f.Size); err != nil {
			return domain.Message{}, err
		}
	}
	if err := s.throttle(conv); err != nil {
		return domain.Message{}, err
	}

	key, err := s.convs.Open(ctx, sender, conv)
	if err != nil {
		return domain.Message{}, err
	}
	caption := ""
	if meta.Type == domain.MessageFile {
		caption = meta.File.Name
	}
	ctB64, ivB64, err := envelope.EncryptMessage(key, caption)
	if err != nil {
		return domain.Message{}, err
	}
	metaB64, err := envelope.EncryptMetadata(key, meta)
	if err != nil {
		return domain.Message{}, err
	}

	msg := domain.Message{
		ID:                   domain.MessageID(uuid.NewString()),
		ConversationID:       conv,
		Sender:               sender,
		CiphertextB64:        ctB64,
		IVB64:                ivB64,
		Type:                 meta.Type,
		EncryptedMetadataB64: metaB64,
		KeyVersion:           domain.KeyWrapVersion,
		SentAt:               s.now().Unix(),
	}
	if err := s.msgs.PutMessage(ctx, msg); err != nil {
		return domain.Message{}, fmt.Errorf("store message: %w", err)
	}
	s.markSent(conv)
	return msg, nil
}

// History fetches and decrypts up to limit messages. The conversation key
// is unwrapped (or served from cache) before any decryption starts. Work
// proceeds in bounded batches, checking ctx between batches so a large
// backlog cannot starve the caller. A message that fails authentication or
// carries an unknown key version becomes an Undecryptable placeholder;
// the rest of the history still loads.
func (s *Service) History(ctx context.Context, userID domain.UserID, conv domain.ConversationID, limit int) ([]domain.DecryptedMessage, error) {
	key, err := s.convs.Open(ctx, userID, conv)
	if err != nil {
		return nil, err
	}
	records, err := s.msgs.ListMessages(ctx, conv, limit)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DecryptedMessage, 0, len(records))
	for start := 0; start < len(records); start += decryptBatchSize {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		end := start + decryptBatchSize
		if end > len(records) {
			end = len(records)
		}
		for _, rec := range records[start:end] {
			out = append(out, decryptOne(key, rec))
		}
	}
	return out, nil
}

func decryptOne(key []byte, rec domain.Message) domain.DecryptedMessage {
	dm := domain.DecryptedMessage{
		ID:             rec.ID,
		ConversationID: rec.ConversationID,
		Sender:         rec.Sender,
		Type:           rec.Type,
		SentAt:         rec.SentAt,
	}
	if rec.KeyVersion != domain.KeyWrapVersion {
		dm.Undecryptable = true
		return dm
	}
	content, err := envelope.DecryptMessage(key, rec.CiphertextB64, rec.IVB64)
	if err != nil {
		dm.Undecryptable = true
		return dm
	}
	dm.Content = content
	if rec.EncryptedMetadataB64 != "" {
		dm.Metadata = envelope.DecryptMetadata(key, rec.EncryptedMetadataB64)
	}
	return dm
}

func (s *Service) throttle(conv domain.ConversationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.lastSend[conv]; ok && s.now().Sub(last) < s.minInterval {
		return ErrSendThrottled
	}
	return nil
}

func (s *Service) markSent(conv domain.ConversationID) {
	s.mu.Lock()
	s.lastSend[conv] = s.now()
	s.mu.Unlock()
}

// Compile-time assertion that Service implements domain.MessageService.
var _ domain.MessageService = (*Service)(nil)
