package keywrap_test

import (
	"bytes"
	"crypto/ecdh"
	"errors"
	"testing"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
	"sealchat/internal/protocol/keywrap"
)

func makeKeypair(t *testing.T) *ecdh.PrivateKey {
	t.Helper()
	priv, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	return priv
}

func TestWrapUnwrap_RoundTrip(t *testing.T) {
	sender := makeKeypair(t)
	recipient := makeKeypair(t)

	ck, err := keywrap.NewConversationKey()
	if err != nil {
		t.Fatalf("NewConversationKey: %v", err)
	}

	rec, err := keywrap.Wrap(ck, sender, recipient.PublicKey())
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	if rec.Version != domain.KeyWrapVersion {
		t.Fatalf("version = %d, want %d", rec.Version, domain.KeyWrapVersion)
	}

	// The recipient recomputes the shared secret from the other side.
	got, err := keywrap.Unwrap(rec, recipient, sender.PublicKey())
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	if !bytes.Equal(got, ck) {
		t.Fatal("unwrapped key differs from original")
	}
}

func TestUnwrap_WrongRecipientFails(t *testing.T) {
	sender := makeKeypair(t)
	recipient := makeKeypair(t)
	eavesdropper := makeKeypair(t)

	ck, _ := keywrap.NewConversationKey()
	rec, err := keywrap.Wrap(ck, sender, recipient.PublicKey())
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}

	if _, err := keywrap.Unwrap(rec, eavesdropper, sender.PublicKey()); !errors.Is(err, keywrap.ErrUnwrapFailed) {
		t.Fatalf("want ErrUnwrapFailed, got %v", err)
	}
}

func TestUnwrap_TamperedRecordFails(t *testing.T) {
	sender := makeKeypair(t)
	recipient := makeKeypair(t)

	ck, _ := keywrap.NewConversationKey()
	rec, err := keywrap.Wrap(ck, sender, recipient.PublicKey())
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}

	tamper := func(mutate func(*domain.WrapRecord)) domain.WrapRecord {
		out := rec
		mutate(&out)
		return out
	}
	flip := func(s string) string {
		b, err := crypto.FromB64(s)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		b[0] ^= 1
		return crypto.B64(b)
	}

	cases := map[string]domain.WrapRecord{
		"wrapped key": tamper(func(r *domain.WrapRecord) { r.WrappedKeyB64 = flip(r.WrappedKeyB64) }),
		"iv":          tamper(func(r *domain.WrapRecord) { r.IVB64 = flip(r.IVB64) }),
		"salt":        tamper(func(r *domain.WrapRecord) { r.SaltB64 = flip(r.SaltB64) }),
	}
	for name, mutated := range cases {
		if _, err := keywrap.Unwrap(mutated, recipient, sender.PublicKey()); !errors.Is(err, keywrap.ErrUnwrapFailed) {
			t.Fatalf("%s: want ErrUnwrapFailed, got %v", name, err)
		}
	}
}

func TestUnwrap_UnknownVersionRejected(t *testing.T) {
	sender := makeKeypair(t)
	recipient := makeKeypair(t)

	ck, _ := keywrap.NewConversationKey()
	rec, err := keywrap.Wrap(ck, sender, recipient.PublicKey())
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	rec.Version = 99

	if _, err := keywrap.Unwrap(rec, recipient, sender.PublicKey()); !errors.Is(err, keywrap.ErrUnsupportedVersion) {
		t.Fatalf("want ErrUnsupportedVersion, got %v", err)
	}
}

func TestWrap_FreshSaltAndIVPerCall(t *testing.T) {
	sender := makeKeypair(t)
	recipient := makeKeypair(t)
	ck, _ := keywrap.NewConversationKey()

	a, err := keywrap.Wrap(ck, sender, recipient.PublicKey())
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	b, err := keywrap.Wrap(ck, sender, recipient.PublicKey())
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	if a.SaltB64 == b.SaltB64 {
		t.Fatal("salt reused across wraps")
	}
	if a.IVB64 == b.IVB64 {
		t.Fatal("iv reused across wraps")
	}
}

func TestFanOut_OneWrapPerParticipant(t *testing.T) {
	creator := makeKeypair(t)
	bob := makeKeypair(t)
	carol := makeKeypair(t)

	ck, _ := keywrap.NewConversationKey()
	recipients := map[domain.UserID]*ecdh.PublicKey{
		"alice": creator.PublicKey(),
		"bob":   bob.PublicKey(),
		"carol": carol.PublicKey(),
	}

	wraps, err := keywrap.FanOut(ck, creator, recipients)
	if err != nil {
		t.Fatalf("FanOut: %v", err)
	}
	if len(wraps) != len(recipients) {
		t.Fatalf("got %d wraps, want %d", len(wraps), len(recipients))
	}

	// Every participant can independently recover the same key.
	for user, priv := range map[domain.UserID]*ecdh.PrivateKey{"alice": creator, "bob": bob, "carol": carol} {
		got, err := keywrap.Unwrap(wraps[user], priv, creator.PublicKey())
		if err != nil {
			t.Fatalf("Unwrap for %s: %v", user, err)
		}
		if !bytes.Equal(got, ck) {
			t.Fatalf("%s recovered a different key", user)
		}
	}
}

func TestFanOut_MissingKeyNamesParticipant(t *testing.T) {
	creator := makeKeypair(t)
	ck, _ := keywrap.NewConversationKey()

	_, err := keywrap.FanOut(ck, creator, map[domain.UserID]*ecdh.PublicKey{
		"alice": creator.PublicKey(),
		"bob":   nil,
	})
	if !errors.Is(err, keywrap.ErrNoPublicKey) {
		t.Fatalf("want ErrNoPublicKey, got %v", err)
	}
}
