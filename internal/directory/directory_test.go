package directory

import (
	"context"
	"crypto/ecdsa"
	"path/filepath"
	"testing"

	"secure-session/internal/container"
	sscrypto "secure-session/internal/crypto"
)

func decodeLookupResult(t *testing.T, blob []byte) *ecdsa.PublicKey {
	t.Helper()
	c, _, err := container.Parse(blob, container.TagECPub)
	if err != nil {
		t.Fatalf("parse lookup result container: %v", err)
	}
	pub, err := sscrypto.DecodeSigningPublic(c.Payload)
	if err != nil {
		t.Fatalf("decode signing public key: %v", err)
	}
	return pub
}

func TestMapDirectoryRegisterAndLookup(t *testing.T) {
	priv, err := sscrypto.GenerateSigningKey()
	if err != nil {
		t.Fatalf("generate signing key: %v", err)
	}
	d := NewMapDirectory()
	d.Register("alice", &priv.PublicKey)

	blob, err := d.GetPublicKeyForID(context.Background(), "alice")
	if err != nil {
		t.Fatalf("lookup alice: %v", err)
	}
	pub := decodeLookupResult(t, blob)
	if pub.X.Cmp(priv.X) != 0 {
		t.Fatalf("looked up key does not match registered key")
	}

	if _, err := d.GetPublicKeyForID(context.Background(), "bob"); err == nil {
		t.Fatalf("lookup of unknown id should fail")
	}
}

func TestFileDirectoryRoundTrip(t *testing.T) {
	priv, err := sscrypto.GenerateSigningKey()
	if err != nil {
		t.Fatalf("generate signing key: %v", err)
	}
	path := filepath.Join(t.TempDir(), "directory.json")

	entries := map[string]*ecdsa.PublicKey{"alice": &priv.PublicKey}
	if err := WriteFileDirectory(path, entries); err != nil {
		t.Fatalf("write: %v", err)
	}

	d, err := LoadFileDirectory(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	blob, err := d.GetPublicKeyForID(context.Background(), "alice")
	if err != nil {
		t.Fatalf("lookup alice: %v", err)
	}
	pub := decodeLookupResult(t, blob)
	if pub.X.Cmp(priv.X) != 0 || pub.Y.Cmp(priv.Y) != 0 {
		t.Fatalf("round-tripped key does not match original")
	}
}
