// Package handshake implements the four-message mutually-authenticated
// key-agreement state machine: AcceptWait/ProceedClientWait/
// FinishServerWait/FinishClientWait driving M1-M4, ending in Established
// with a session id and master key shared with the peer.
package handshake

import (
	"crypto/ecdh"
	"crypto/ecdsa"
)

// PeerRecord holds one side's identity and key material for a session.
// A Context never mixes material from two different peer identities: the
// remote PeerRecord is populated only after its first handshake message
// is cryptographically validated.
type PeerRecord struct {
	ID      string
	ECDHPub *ecdh.PublicKey // nil until the peer's ephemeral key arrives
	SignPub *ecdsa.PublicKey
}

// Self holds the local side's identity and keys for one session: the
// same fields as PeerRecord, minus the remote ECDH key (the local side
// owns its ECDH context directly), plus the private signing key.
type Self struct {
	ID       string
	ECDHPriv *ecdh.PrivateKey
	SignPriv *ecdsa.PrivateKey
	SignPub  *ecdsa.PublicKey
}

// Wipe discards the ephemeral ECDH private key, leaving ID and the
// long-term signing key intact. Called once the shared secret has been
// consumed and a session is Established.
func (s *Self) Wipe() {
	s.ECDHPriv = nil
}
