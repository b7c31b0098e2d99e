package handshake

import (
	"context"
	"crypto/ecdh"
	"crypto/ecdsa"
	"fmt"

	"secure-session/internal/container"
	sscrypto "secure-session/internal/crypto"
	"secure-session/internal/sserr"
)

// PublicKeyLookup resolves a peer id to the EC_PUB_KEY_PREF container
// wrapping its long-term signing public key. It is the Go shape of the
// reference's get_public_key_for_id callback.
type PublicKeyLookup func(ctx context.Context, id string) ([]byte, error)

// Machine drives the four-message handshake for one session. It holds no
// knowledge of the record layer; once Established, the session package
// takes SessionID/MasterKey and moves on to wrap/unwrap.
type Machine struct {
	role   Role
	self   *Self
	peer   *PeerRecord
	state  State
	lookup PublicKeyLookup

	sessionID [32]byte
	masterKey [32]byte
}

// New returns a Machine in AcceptWait: the server's default starting
// state, and the client's state prior to calling Connect.
func New(self *Self, lookup PublicKeyLookup) *Machine {
	return &Machine{self: self, peer: &PeerRecord{}, lookup: lookup, state: AcceptWait}
}

func (m *Machine) State() State        { return m.state }
func (m *Machine) Role() Role           { return m.role }
func (m *Machine) PeerID() string       { return m.peer.ID }
func (m *Machine) SessionID() [32]byte  { return m.sessionID }
func (m *Machine) MasterKey() [32]byte  { return m.masterKey }

// Connect begins the client role: generates the ephemeral ECDH key pair
// and returns M1 to send.
func (m *Machine) Connect(ctx context.Context) ([]byte, error) {
	if m.state != AcceptWait {
		return nil, fmt.Errorf("%w: connect called in state %s", sserr.ErrWrongState, m.state)
	}
	m.role = RoleClient

	priv, err := sscrypto.GenerateECDH()
	if err != nil {
		return nil, err
	}
	m.self.ECDHPriv = priv
	ownRaw := sscrypto.EncodeECDHPublic(priv.PublicKey())

	sig, err := sscrypto.Sign(m.self.SignPriv, ecdhContainerBytes(ownRaw))
	if err != nil {
		return nil, err
	}

	m.state = ProceedClientWait
	return buildIdentityMessage(m.self.ID, ownRaw, sig), nil
}

// Step feeds one received handshake message into the machine, returning
// the reply to send (nil once there is none left to send) or an error.
// Any error wipes the peer record and any derived keys (see abort). The
// state is left as it was, so the machine does not refuse further Steps:
// the next message goes to the same state's handler.
func (m *Machine) Step(ctx context.Context, msg []byte) (reply []byte, err error) {
	defer func() {
		if err != nil {
			m.abort()
		}
	}()

	switch m.state {
	case AcceptWait:
		m.role = RoleServer
		return m.handleM1(ctx, msg)
	case ProceedClientWait:
		return m.handleM2(ctx, msg)
	case FinishServerWait:
		return m.handleM3(ctx, msg)
	case FinishClientWait:
		return nil, m.handleM4(msg)
	default:
		return nil, fmt.Errorf("%w: no handshake message expected in state %s", sserr.ErrWrongState, m.state)
	}
}

func (m *Machine) handleM1(ctx context.Context, msg []byte) ([]byte, error) {
	clientID, clientECDHRaw, sig, err := parseIdentityMessage(msg)
	if err != nil {
		return nil, err
	}

	peerSignPub, err := m.resolvePeerKey(ctx, clientID)
	if err != nil {
		return nil, err
	}
	clientECDHPub, err := sscrypto.DecodeECDHPublic(clientECDHRaw)
	if err != nil {
		return nil, err
	}

	// M1 signature covers the ECDH public key alone: the client hasn't
	// yet learned the server's identity, so there is nothing else to bind.
	if !sscrypto.Verify(peerSignPub, sig, ecdhContainerBytes(clientECDHRaw)) {
		return nil, fmt.Errorf("%w: M1 signature verification failed", sserr.ErrInvalidParameter)
	}
	m.peer = &PeerRecord{ID: clientID, ECDHPub: clientECDHPub, SignPub: peerSignPub}

	priv, err := sscrypto.GenerateECDH()
	if err != nil {
		return nil, err
	}
	m.self.ECDHPriv = priv
	ownRaw := sscrypto.EncodeECDHPublic(priv.PublicKey())

	sig2, err := sscrypto.Sign(m.self.SignPriv,
		signatureFragments(ecdhContainerBytes(ownRaw), ecdhContainerBytes(clientECDHRaw), m.self.ID, clientID)...)
	if err != nil {
		return nil, err
	}

	m.state = FinishServerWait
	return buildIdentityMessage(m.self.ID, ownRaw, sig2), nil
}

func (m *Machine) handleM2(ctx context.Context, msg []byte) ([]byte, error) {
	serverID, serverECDHRaw, sig, err := parseIdentityMessage(msg)
	if err != nil {
		return nil, err
	}

	peerSignPub, err := m.resolvePeerKey(ctx, serverID)
	if err != nil {
		return nil, err
	}
	serverECDHPub, err := sscrypto.DecodeECDHPublic(serverECDHRaw)
	if err != nil {
		return nil, err
	}

	ownRaw := sscrypto.EncodeECDHPublic(m.self.ECDHPriv.PublicKey())

	// sig_server covers (server_ecdh, client_ecdh, server_id, client_id);
	// from the client's point of view that's (peer, own, peer, own).
	if !sscrypto.Verify(peerSignPub, sig,
		signatureFragments(ecdhContainerBytes(serverECDHRaw), ecdhContainerBytes(ownRaw), serverID, m.self.ID)...) {
		return nil, fmt.Errorf("%w: M2 signature verification failed", sserr.ErrInvalidParameter)
	}
	m.peer = &PeerRecord{ID: serverID, ECDHPub: serverECDHPub, SignPub: peerSignPub}

	if err := m.deriveKeys(ownRaw, serverECDHRaw, m.self.ID, serverID, serverECDHPub); err != nil {
		return nil, err
	}

	sig3, err := sscrypto.Sign(m.self.SignPriv,
		signatureFragments(ecdhContainerBytes(ownRaw), ecdhContainerBytes(serverECDHRaw), m.self.ID, serverID)...)
	if err != nil {
		return nil, err
	}
	mac3 := sscrypto.MAC(m.masterKey[:], ecdhContainerBytes(serverECDHRaw), m.sessionID[:])

	m.state = FinishClientWait
	return buildM3(sig3, mac3), nil
}

func (m *Machine) handleM3(_ context.Context, msg []byte) ([]byte, error) {
	sig, mac, err := parseM3(msg)
	if err != nil {
		return nil, err
	}
	if m.peer.ECDHPub == nil || m.peer.SignPub == nil {
		return nil, fmt.Errorf("%w: no validated peer record for M3", sserr.ErrInvalidParameter)
	}

	ownRaw := sscrypto.EncodeECDHPublic(m.self.ECDHPriv.PublicKey())
	peerRaw := sscrypto.EncodeECDHPublic(m.peer.ECDHPub)

	// sig_client covers (client_ecdh, server_ecdh, client_id, server_id);
	// from the server's point of view that's (peer, own, peer, own).
	if !sscrypto.Verify(m.peer.SignPub, sig,
		signatureFragments(ecdhContainerBytes(peerRaw), ecdhContainerBytes(ownRaw), m.peer.ID, m.self.ID)...) {
		return nil, fmt.Errorf("%w: M3 signature verification failed", sserr.ErrInvalidParameter)
	}

	if err := m.deriveKeys(peerRaw, ownRaw, m.peer.ID, m.self.ID, m.peer.ECDHPub); err != nil {
		return nil, err
	}

	if !sscrypto.VerifyMAC(m.masterKey[:], mac, ecdhContainerBytes(ownRaw), m.sessionID[:]) {
		return nil, fmt.Errorf("%w: M3 MAC verification failed", sserr.ErrInvalidParameter)
	}

	mac4 := sscrypto.MAC(m.masterKey[:], ecdhContainerBytes(peerRaw), m.sessionID[:])
	m.establish()
	return buildM4(mac4), nil
}

func (m *Machine) handleM4(msg []byte) error {
	mac, err := parseM4(msg)
	if err != nil {
		return err
	}
	ownRaw := sscrypto.EncodeECDHPublic(m.self.ECDHPriv.PublicKey())
	if !sscrypto.VerifyMAC(m.masterKey[:], mac, ecdhContainerBytes(ownRaw), m.sessionID[:]) {
		return fmt.Errorf("%w: M4 MAC verification failed", sserr.ErrInvalidParameter)
	}
	m.establish()
	return nil
}

// deriveKeys computes the shared secret, session id, and master key. The
// session id context is always the fixed client-first ordering regardless
// of which side is computing it.
func (m *Machine) deriveKeys(clientECDHRaw, serverECDHRaw []byte, clientID, serverID string, peerPub *ecdh.PublicKey) error {
	sharedSecret, err := sscrypto.SharedSecret(m.self.ECDHPriv, peerPub)
	if err != nil {
		return err
	}
	defer sscrypto.Wipe(sharedSecret)

	m.sessionID = sscrypto.KDF(nil, "Themis secure session unique identifier",
		sessionIDFragments(ecdhContainerBytes(clientECDHRaw), ecdhContainerBytes(serverECDHRaw), clientID, serverID)...)
	m.masterKey = sscrypto.KDF(sharedSecret, "Themis secure session master key", m.sessionID[:])
	return nil
}

// resolvePeerKey calls the lookup callback and validates that the result
// is itself an EC_PUB_KEY_PREF container with a non-empty payload, then
// decodes the enclosed ECDSA public key.
func (m *Machine) resolvePeerKey(ctx context.Context, id string) (*ecdsa.PublicKey, error) {
	blob, err := m.lookup(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown peer id %q: %v", sserr.ErrInvalidParameter, id, err)
	}
	c, _, err := container.Parse(blob, container.TagECPub)
	if err != nil {
		return nil, fmt.Errorf("%w: peer key lookup did not return an EC_PUB_KEY_PREF container: %v", sserr.ErrInvalidParameter, err)
	}
	if len(c.Payload) == 0 {
		return nil, fmt.Errorf("%w: peer key container declared size not greater than header size", sserr.ErrInvalidParameter)
	}
	pub, err := sscrypto.DecodeSigningPublic(c.Payload)
	if err != nil {
		return nil, err
	}
	return pub, nil
}

// establish transitions to Established, wiping the ephemeral ECDH private
// key now that it has served its purpose: once Established, only the
// session id, master key, and derived message keys persist.
func (m *Machine) establish() {
	m.self.Wipe()
	m.state = Established
}

// abort wipes the peer record and any derived keys on a failed Step. The
// state itself is left unchanged: a rejected message leaves the machine
// waiting in the same state it was already in. In FinishServerWait any
// later M3 is then refused, since the peer record it is checked against
// is gone.
func (m *Machine) abort() {
	m.peer = &PeerRecord{}
	m.sessionID = [32]byte{}
	m.masterKey = [32]byte{}
}

// Wipe zeroes the session id, master key, and peer record, and drops the
// ephemeral ECDH private key, for use on session teardown once the
// record-layer channel (which derives its own keys from the master key)
// has already been built.
func (m *Machine) Wipe() {
	m.self.Wipe()
	m.peer = &PeerRecord{}
	m.sessionID = [32]byte{}
	m.masterKey = [32]byte{}
}

// WipePeer zeroes the peer record and drops the ephemeral ECDH private
// key, leaving SessionID and MasterKey intact. It backs Context.Close when
// the caller has exported those keys first and asked to keep them alive
// past teardown.
func (m *Machine) WipePeer() {
	m.self.Wipe()
	m.peer = &PeerRecord{}
}
