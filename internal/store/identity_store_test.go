package store

import (
	"path/filepath"
	"testing"

	sscrypto "secure-session/internal/crypto"
)

func TestIdentityStoreSaveLoadRoundTrip(t *testing.T) {
	priv, err := sscrypto.GenerateSigningKey()
	if err != nil {
		t.Fatalf("generate signing key: %v", err)
	}

	path := filepath.Join(t.TempDir(), "identity.json")
	s := NewIdentityStore(path)

	if s.Exists() {
		t.Fatalf("keystore should not exist yet")
	}
	if err := s.Save("correct horse battery staple", "alice", priv); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !s.Exists() {
		t.Fatalf("keystore should exist after Save")
	}

	id, got, err := s.Load("correct horse battery staple")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if id != "alice" {
		t.Fatalf("id = %q, want alice", id)
	}
	if got.X.Cmp(priv.X) != 0 || got.Y.Cmp(priv.Y) != 0 || got.D.Cmp(priv.D) != 0 {
		t.Fatalf("loaded key does not match saved key")
	}
}

func TestIdentityStoreWrongPassphrase(t *testing.T) {
	priv, err := sscrypto.GenerateSigningKey()
	if err != nil {
		t.Fatalf("generate signing key: %v", err)
	}
	path := filepath.Join(t.TempDir(), "identity.json")
	s := NewIdentityStore(path)
	if err := s.Save("correct passphrase", "bob", priv); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, _, err := s.Load("wrong passphrase"); err == nil {
		t.Fatalf("Load with wrong passphrase should fail")
	}
}

func TestIdentityStoreLoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	s := NewIdentityStore(path)
	if _, _, err := s.Load("whatever"); err != ErrNoIdentity {
		t.Fatalf("Load on missing file: err = %v, want ErrNoIdentity", err)
	}
}
