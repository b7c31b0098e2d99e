package directory

import (
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
	"sync"

	"secure-session/internal/container"
	sscrypto "secure-session/internal/crypto"
)

// FileDirectory is a Lookup backed by an id → PEM-encoded P-256 public key
// JSON mapping on disk, loaded once at construction time.
type FileDirectory struct {
	mu   sync.RWMutex
	keys map[string]*ecdsa.PublicKey
}

// LoadFileDirectory reads the JSON mapping at path (id string → PEM string)
// and parses every entry into an ECDSA public key.
func LoadFileDirectory(path string) (*FileDirectory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("directory: read %s: %w", path, err)
	}

	var entries map[string]string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("directory: parse %s: %w", path, err)
	}

	keys := make(map[string]*ecdsa.PublicKey, len(entries))
	for id, pemStr := range entries {
		pub, err := parsePEMPublicKey(pemStr)
		if err != nil {
			return nil, fmt.Errorf("directory: entry %q: %w", id, err)
		}
		keys[id] = pub
	}
	return &FileDirectory{keys: keys}, nil
}

// All returns a copy of every id-to-public-key entry, for callers that
// need to merge this directory's contents with another set of entries.
func (d *FileDirectory) All() map[string]*ecdsa.PublicKey {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]*ecdsa.PublicKey, len(d.keys))
	for id, pub := range d.keys {
		out[id] = pub
	}
	return out
}

// GetPublicKeyForID implements Lookup.
func (d *FileDirectory) GetPublicKeyForID(_ context.Context, id string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	pub, ok := d.keys[id]
	if !ok {
		return nil, fmt.Errorf("directory: unknown peer id %q", id)
	}
	return container.New(container.TagECPub, sscrypto.EncodeSigningPublic(pub)).Encode(), nil
}

// WriteFileDirectory writes entries (id → ECDSA public key) to path as a
// PEM-encoded JSON mapping, the inverse of LoadFileDirectory.
func WriteFileDirectory(path string, entries map[string]*ecdsa.PublicKey) error {
	out := make(map[string]string, len(entries))
	for id, pub := range entries {
		pemStr, err := encodePEMPublicKey(pub)
		if err != nil {
			return fmt.Errorf("directory: entry %q: %w", id, err)
		}
		out[id] = pemStr
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("directory: marshal: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

func parsePEMPublicKey(s string) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(s))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	pub, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("not an ECDSA public key")
	}
	return pub, nil
}

func encodePEMPublicKey(pub *ecdsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", err
	}
	block := &pem.Block{Type: "PUBLIC KEY", Bytes: der}
	return string(pem.EncodeToMemory(block)), nil
}
