package message_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"sealchat/internal/domain"
	"sealchat/internal/keycache"
	conversationsvc "sealchat/internal/services/conversation"
	identitysvc "sealchat/internal/services/identity"
	messagesvc "sealchat/internal/services/message"
	"sealchat/internal/store"
	"sealchat/internal/validate"
)

type fakeDirectory struct {
	recs map[string]domain.PublicKeyRecord
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{recs: make(map[string]domain.PublicKeyRecord)}
}

func (d *fakeDirectory) PublishPublicKey(_ context.Context, rec domain.PublicKeyRecord) error {
	d.recs[string(rec.Scope)+"|"+string(rec.UserID)] = rec
	return nil
}

func (d *fakeDirectory) FetchPublicKey(_ context.Context, userID domain.UserID, scope domain.Scope) (domain.PublicKeyRecord, error) {
	rec, ok := d.recs[string(scope)+"|"+string(userID)]
	if !ok {
		return domain.PublicKeyRecord{}, fmt.Errorf("public key for %s: %w", userID, domain.ErrNotFound)
	}
	return rec, nil
}

type fakeConvStore struct {
	convs map[domain.ConversationID]domain.Conversation
}

func newFakeConvStore() *fakeConvStore {
	return &fakeConvStore{convs: make(map[domain.ConversationID]domain.Conversation)}
}

func (s *fakeConvStore) CreateConversation(_ context.Context, conv domain.Conversation) error {
	s.convs[conv.ID] = conv
	return nil
}

func (s *fakeConvStore) FetchConversation(_ context.Context, id domain.ConversationID) (domain.Conversation, error) {
	conv, ok := s.convs[id]
	if !ok {
		return domain.Conversation{}, fmt.Errorf("no conversation %s", id)
	}
	return conv, nil
}

func (s *fakeConvStore) UpdateKeyWraps(_ context.Context, id domain.ConversationID, participants []domain.UserID, wraps domain.KeyWraps) error {
	conv := s.convs[id]
	conv.Participants = participants
	conv.KeyWraps = wraps
	s.convs[id] = conv
	return nil
}

type fakeMessageStore struct {
	msgs map[domain.ConversationID][]domain.Message
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{msgs: make(map[domain.ConversationID][]domain.Message)}
}

func (s *fakeMessageStore) PutMessage(_ context.Context, msg domain.Message) error {
	s.msgs[msg.ConversationID] = append(s.msgs[msg.ConversationID], msg)
	return nil
}

func (s *fakeMessageStore) ListMessages(_ context.Context, id domain.ConversationID, limit int) ([]domain.Message, error) {
	all := s.msgs[id]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return append([]domain.Message(nil), all...), nil
}

// clock is a controllable time source for the throttle.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

// harness wires one user's full client stack against shared backend fakes.
type harness struct {
	msgs  *messagesvc.Service
	convs *conversationsvc.Service
	clk   *clock
}

func newHarness(t *testing.T, user domain.UserID, dir *fakeDirectory, cs *fakeConvStore, ms *fakeMessageStore) *harness {
	t.Helper()
	ids := identitysvc.New(store.NewMemoryIdentityStore(), dir)
	if err := ids.Publish(context.Background(), user, "team-1"); err != nil {
		t.Fatalf("Publish %s: %v", user, err)
	}
	convs := conversationsvc.New(ids, dir, cs, keycache.New())
	msgs := messagesvc.New(convs, ms)
	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	msgs.SetClockForTest(clk.now, 0)
	return &harness{msgs: msgs, convs: convs, clk: clk}
}

func TestSendHistory_EndToEnd(t *testing.T) {
	dir := newFakeDirectory()
	cs := newFakeConvStore()
	ms := newFakeMessageStore()
	ctx := context.Background()

	alice := newHarness(t, "alice", dir, cs, ms)
	bob := newHarness(t, "bob", dir, cs, ms)

	conv, err := alice.convs.Create(ctx, "alice", "team-1", []domain.UserID{"bob"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sent, err := alice.msgs.Send(ctx, "alice", conv.ID, "hello bob")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sent.CiphertextB64 == "" || sent.CiphertextB64 == "hello bob" {
		t.Fatal("message stored without encryption")
	}

	history, err := bob.msgs.History(ctx, "bob", conv.ID, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("got %d messages, want 1", len(history))
	}
	got := history[0]
	if got.Undecryptable {
		t.Fatal("message marked undecryptable")
	}
	if got.Content != "hello bob" || got.Sender != "alice" {
		t.Fatalf("got %+v", got)
	}
}

func TestHistory_CorruptMessageIsolated(t *testing.T) {
	dir := newFakeDirectory()
	cs := newFakeConvStore()
	ms := newFakeMessageStore()
	ctx := context.Background()

	alice := newHarness(t, "alice", dir, cs, ms)
	conv, err := alice.convs.Create(ctx, "alice", "team-1", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := alice.msgs.Send(ctx, "alice", conv.ID, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
	}

	// Corrupt the third record in place.
	ms.msgs[conv.ID][2].CiphertextB64 = "AAAAAAAAAAAAAAAAAAAAAA=="

	history, err := alice.msgs.History(ctx, "alice", conv.ID, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 5 {
		t.Fatalf("got %d messages, want 5", len(history))
	}
	for i, m := range history {
		if i == 2 {
			if !m.Undecryptable {
				t.Fatal("corrupt message not flagged")
			}
			if m.Content != "" {
				t.Fatalf("corrupt message leaked content %q", m.Content)
			}
			continue
		}
		if m.Undecryptable {
			t.Fatalf("message %d wrongly flagged undecryptable", i)
		}
		if m.Content != fmt.Sprintf("message %d", i) {
			t.Fatalf("message %d content = %q", i, m.Content)
		}
	}
}

func TestHistory_UnknownKeyVersionFlagged(t *testing.T) {
	dir := newFakeDirectory()
	cs := newFakeConvStore()
	ms := newFakeMessageStore()
	ctx := context.Background()

	alice := newHarness(t, "alice", dir, cs, ms)
	conv, err := alice.convs.Create(ctx, "alice", "team-1", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := alice.msgs.Send(ctx, "alice", conv.ID, "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	ms.msgs[conv.ID][0].KeyVersion = 99

	history, err := alice.msgs.History(ctx, "alice", conv.ID, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || !history[0].Undecryptable {
		t.Fatalf("unknown key version not flagged: %+v", history)
	}
}

func TestSend_Throttled(t *testing.T) {
	dir := newFakeDirectory()
	cs := newFakeConvStore()
	ms := newFakeMessageStore()
	ctx := context.Background()

	alice := newHarness(t, "alice", dir, cs, ms)
	alice.msgs.SetClockForTest(alice.clk.now, 500*time.Millisecond)

	conv, err := alice.convs.Create(ctx, "alice", "team-1", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := alice.msgs.Send(ctx, "alice", conv.ID, "first"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := alice.msgs.Send(ctx, "alice", conv.ID, "too fast"); !errors.Is(err, messagesvc.ErrSendThrottled) {
		t.Fatalf("want ErrSendThrottled, got %v", err)
	}
	if len(ms.msgs[conv.ID]) != 1 {
		t.Fatal("throttled message was stored")
	}

	alice.clk.advance(500 * time.Millisecond)
	if _, err := alice.msgs.Send(ctx, "alice", conv.ID, "after interval"); err != nil {
		t.Fatalf("Send after interval: %v", err)
	}
}

func TestSend_ValidationRejectsBeforeStore(t *testing.T) {
	dir := newFakeDirectory()
	cs := newFakeConvStore()
	ms := newFakeMessageStore()
	ctx := context.Background()

	alice := newHarness(t, "alice", dir, cs, ms)
	conv, err := alice.convs.Create(ctx, "alice", "team-1", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := alice.msgs.Send(ctx, "alice", conv.ID, "   "); !errors.Is(err, validate.ErrEmptyMessage) {
		t.Fatalf("want ErrEmptyMessage, got %v", err)
	}
	if len(ms.msgs[conv.ID]) != 0 {
		t.Fatal("invalid message was stored")
	}
}

func TestSendWithMetadata_FileRoundTrip(t *testing.T) {
	dir := newFakeDirectory()
	cs := newFakeConvStore()
	ms := newFakeMessageStore()
	ctx := context.Background()

	alice := newHarness(t, "alice", dir, cs, ms)
	bob := newHarness(t, "bob", dir, cs, ms)
	conv, err := alice.convs.Create(ctx, "alice", "team-1", []domain.UserID{"bob"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	meta := domain.Metadata{
		Type: domain.MessageFile,
		File: &domain.FileMeta{Name: "notes.pdf", MimeType: "application/pdf", Size: 2048, BlobRef: "blobs/n1"},
	}
	sent, err := alice.msgs.SendWithMetadata(ctx, "alice", conv.ID, meta)
	if err != nil {
		t.Fatalf("SendWithMetadata: %v", err)
	}
	if sent.EncryptedMetadataB64 == "" {
		t.Fatal("no encrypted metadata stored")
	}

	history, err := bob.msgs.History(ctx, "bob", conv.ID, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	got := history[0]
	if got.Type != domain.MessageFile {
		t.Fatalf("type = %q", got.Type)
	}
	if got.Metadata == nil || got.Metadata.File == nil || got.Metadata.File.Name != "notes.pdf" {
		t.Fatalf("metadata mangled: %+v", got.Metadata)
	}
}

func TestSendWithMetadata_OversizedFileRejected(t *testing.T) {
	dir := newFakeDirectory()
	cs := newFakeConvStore()
	ms := newFakeMessageStore()
	ctx := context.Background()

	alice := newHarness(t, "alice", dir, cs, ms)
	conv, err := alice.convs.Create(ctx, "alice", "team-1", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	meta := domain.Metadata{
		Type: domain.MessageFile,
		File: &domain.FileMeta{Name: "huge.bin", MimeType: "application/pdf", Size: validate.MaxFileBytes + 1},
	}
	if _, err := alice.msgs.SendWithMetadata(ctx, "alice", conv.ID, meta); !errors.Is(err, validate.ErrFileTooLarge) {
		t.Fatalf("want ErrFileTooLarge, got %v", err)
	}
	if len(ms.msgs[conv.ID]) != 0 {
		t.Fatal("oversized file message was stored")
	}
}

func TestHistory_CancelledContext(t *testing.T) {
	dir := newFakeDirectory()
	cs := newFakeConvStore()
	ms := newFakeMessageStore()
	ctx := context.Background()

	alice := newHarness(t, "alice", dir, cs, ms)
	conv, err := alice.convs.Create(ctx, "alice", "team-1", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := alice.msgs.Send(ctx, "alice", conv.ID, "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := alice.msgs.History(cancelled, "alice", conv.ID, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
