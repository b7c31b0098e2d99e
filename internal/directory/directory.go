// Package directory implements identity-to-public-key lookup, the external
// collaborator the handshake calls through GetPublicKeyForID to turn a peer
// id into the EC_PUB_KEY_PREF-tagged container wrapping its signing public
// key (the handshake package, not this one, unwraps and validates it).
//
// Neither implementation here is part of the session core's contract: the
// core only depends on the callback shape, not on how it's backed.
package directory

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"sync"

	"secure-session/internal/container"
	sscrypto "secure-session/internal/crypto"
)

// Lookup resolves a peer id to its long-term signing public key, already
// wrapped in an EC_PUB_KEY_PREF container exactly as the handshake expects
// to receive it. It is the concrete shape behind the session package's
// GetPublicKeyForID callback.
type Lookup interface {
	GetPublicKeyForID(ctx context.Context, id string) ([]byte, error)
}

// MapDirectory is an in-process Lookup backed by a map, suitable for tests
// and single-process demos where both peers share one directory instance.
type MapDirectory struct {
	mu   sync.RWMutex
	keys map[string]*ecdsa.PublicKey
}

// NewMapDirectory returns an empty MapDirectory.
func NewMapDirectory() *MapDirectory {
	return &MapDirectory{keys: make(map[string]*ecdsa.PublicKey)}
}

// Register associates id with pub, overwriting any previous entry.
func (d *MapDirectory) Register(id string, pub *ecdsa.PublicKey) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys[id] = pub
}

// GetPublicKeyForID implements Lookup.
func (d *MapDirectory) GetPublicKeyForID(_ context.Context, id string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	pub, ok := d.keys[id]
	if !ok {
		return nil, fmt.Errorf("directory: unknown peer id %q", id)
	}
	return container.New(container.TagECPub, sscrypto.EncodeSigningPublic(pub)).Encode(), nil
}
