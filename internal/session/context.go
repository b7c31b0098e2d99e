// Package session implements the top-level Session Context: the mutable
// state machine applications drive through Connect/Send/Receive/Close,
// wiring the handshake state machine and the record layer together behind
// one non-reentrant, single-threaded object per session.
package session

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"secure-session/internal/handshake"
	"secure-session/internal/record"
	"secure-session/internal/sserr"
)

// Context is one session's state: local identity, the handshake machine,
// and — once Established — the record-layer channel. Distinct Contexts
// are independent and may be driven in parallel; a single Context must
// not be driven concurrently.
type Context struct {
	id        string
	callbacks Callbacks
	machine   *handshake.Machine
	channel   *record.Channel
	isClient  bool
	exported  bool
}

// New allocates a Context for id, generating nothing yet beyond what the
// handshake machine needs to start in AcceptWait — the ephemeral ECDH
// keypair is generated lazily in Connect or the M1 handler, since which
// side needs one first depends on role.
func New(id string, signPriv *ecdsa.PrivateKey, callbacks Callbacks) (*Context, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", sserr.ErrInvalidParameter)
	}
	if callbacks.SendData == nil || callbacks.ReceiveData == nil || callbacks.GetPublicKeyForID == nil {
		return nil, fmt.Errorf("%w: SendData, ReceiveData, and GetPublicKeyForID callbacks are required", sserr.ErrInvalidParameter)
	}

	self := &handshake.Self{ID: id, SignPriv: signPriv, SignPub: &signPriv.PublicKey}
	return &Context{
		id:        id,
		callbacks: callbacks,
		machine:   handshake.New(self, handshake.PublicKeyLookup(callbacks.GetPublicKeyForID)),
	}, nil
}

// Connect initiates the client handshake: builds and sends M1, then waits
// in ProceedClientWait.
func (c *Context) Connect(ctx context.Context) error {
	m1, err := c.machine.Connect(ctx)
	if err != nil {
		return err
	}
	c.isClient = true
	return c.callbacks.SendData(ctx, m1)
}

// State reports the underlying handshake state machine's current state.
func (c *Context) State() handshake.State { return c.machine.State() }

// PeerID reports the remote peer's id once the first handshake message
// from it has been validated.
func (c *Context) PeerID() string { return c.machine.PeerID() }

// SessionID returns the derived session id. Only meaningful once the
// handshake has progressed past M2 (client) or M3 (server) processing.
func (c *Context) SessionID() [32]byte { return c.machine.SessionID() }

// Send wraps plaintext and transmits it. Valid only once Established;
// any other state returns ErrInvalidParameter.
func (c *Context) Send(ctx context.Context, plaintext []byte) error {
	if c.machine.State() != handshake.Established || c.channel == nil {
		return fmt.Errorf("%w: send called before the session is Established", sserr.ErrInvalidParameter)
	}
	if len(plaintext) == 0 {
		return fmt.Errorf("%w: send called with an empty message", sserr.ErrInvalidParameter)
	}
	wire, err := c.channel.Wrap(plaintext)
	if err != nil {
		return err
	}
	return c.callbacks.SendData(ctx, wire)
}

// Receive pulls exactly one wire message via ReceiveData and dispatches
// it: during the handshake it feeds the current state handler and
// returns (nil, nil) on a consumed step or (nil, err) on failure; once
// Established it unwraps and returns the plaintext.
func (c *Context) Receive(ctx context.Context) ([]byte, error) {
	wire, err := c.callbacks.ReceiveData(ctx)
	if err != nil {
		return nil, err
	}
	return c.dispatch(ctx, wire)
}

// ExportKeys returns the session id and master key for the caller to keep
// — for logging a session id for out-of-band verification, or archiving a
// master key for later reference — and marks the Context so that Close
// leaves both alone instead of zeroing them. Meaningful only once the
// handshake has progressed far enough for SessionID/MasterKey to be
// populated; calling it before then just returns zero values.
func (c *Context) ExportKeys() (sessionID [32]byte, masterKey [32]byte) {
	c.exported = true
	return c.machine.SessionID(), c.machine.MasterKey()
}

// Close tears the session down: it drops the record-layer channel and the
// ephemeral ECDH private key and zeroes the handshake machine's peer
// record, along with the session id
// and master key — unless ExportKeys was called first, in which case
// those two are deliberately left alone for the caller to keep using.
func (c *Context) Close() {
	if c.exported {
		c.machine.WipePeer()
	} else {
		c.machine.Wipe()
	}
	c.channel = nil
}
