// Package record implements the post-handshake authenticated channel: a
// message-oriented wrap/unwrap pair keyed from the handshake's derived
// master key, producing one Container-framed ciphertext per plaintext
// message.
package record

import (
	"crypto/cipher"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"secure-session/internal/container"
	sscrypto "secure-session/internal/crypto"
	"secure-session/internal/sserr"
)

const (
	roleClient = "client"
	roleServer = "server"
)

// direction holds one side of a Channel: an AEAD keyed for one traffic
// direction and the monotonic sequence number feeding its nonce. The
// transport is assumed reliable and in-order, so the sequence number
// never needs to travel on the wire — both ends derive the same nonce
// for the Nth message from their own counters.
type direction struct {
	aead cipher.AEAD
	seq  uint64
}

func newDirection(key [32]byte) (*direction, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, sserr.Crypto("record aead", err)
	}
	return &direction{aead: aead}, nil
}

func (d *direction) nonce() []byte {
	var n [chacha20poly1305.NonceSize]byte
	binary.BigEndian.PutUint64(n[4:], d.seq)
	d.seq++
	return n[:]
}

// Channel is the established session's authenticated record layer, one
// per session, holding independent send and receive directions so a
// peer's inbound and outbound traffic never share a nonce sequence.
type Channel struct {
	send *direction
	recv *direction
}

// NewChannel derives per-direction keys from masterKey and builds a
// Channel. isClient selects which derived key (the "client" or "server"
// role label) backs outbound versus inbound traffic.
func NewChannel(masterKey [32]byte, isClient bool) (*Channel, error) {
	clientKey, err := sscrypto.DirectionKey(masterKey, roleClient)
	if err != nil {
		return nil, err
	}
	serverKey, err := sscrypto.DirectionKey(masterKey, roleServer)
	if err != nil {
		return nil, err
	}

	sendKey, recvKey := serverKey, clientKey
	if isClient {
		sendKey, recvKey = clientKey, serverKey
	}

	send, err := newDirection(sendKey)
	if err != nil {
		return nil, err
	}
	recv, err := newDirection(recvKey)
	if err != nil {
		return nil, err
	}
	sscrypto.Wipe(clientKey[:])
	sscrypto.Wipe(serverKey[:])
	return &Channel{send: send, recv: recv}, nil
}

// Wrap seals plaintext under the send direction's key and the next
// sequence number, framing the result as a Container ready for send_data.
func (c *Channel) Wrap(plaintext []byte) ([]byte, error) {
	ciphertext := c.send.aead.Seal(nil, c.send.nonce(), plaintext, nil)
	return container.New(container.TagProto, ciphertext).Encode(), nil
}

// Unwrap reverses Wrap: it parses the outer Container and opens the
// ciphertext under the receive direction's key and next sequence number.
// A failed open is never resynchronized; the caller must discard the
// session.
func (c *Channel) Unwrap(wire []byte) ([]byte, error) {
	outer, _, err := container.Parse(wire, container.TagProto)
	if err != nil {
		return nil, err
	}
	plaintext, err := c.recv.aead.Open(nil, c.recv.nonce(), outer.Payload, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: record authentication failed", sserr.ErrInvalidParameter)
	}
	return plaintext, nil
}
