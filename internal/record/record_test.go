package record

import (
	"bytes"
	"testing"
)

func TestWrapUnwrapRoundTrip(t *testing.T) {
	var masterKey [32]byte
	for i := range masterKey {
		masterKey[i] = byte(i)
	}

	client, err := NewChannel(masterKey, true)
	if err != nil {
		t.Fatalf("new client channel: %v", err)
	}
	server, err := NewChannel(masterKey, false)
	if err != nil {
		t.Fatalf("new server channel: %v", err)
	}

	msgs := [][]byte{
		[]byte("hello"),
		[]byte("a slightly longer message to exercise more than one block"),
		[]byte("x"),
	}
	for _, msg := range msgs {
		wire, err := client.Wrap(msg)
		if err != nil {
			t.Fatalf("wrap: %v", err)
		}
		got, err := server.Unwrap(wire)
		if err != nil {
			t.Fatalf("unwrap: %v", err)
		}
		if !bytes.Equal(got, msg) {
			t.Fatalf("unwrap(wrap(%q)) = %q", msg, got)
		}
	}
}

func TestUnwrapRejectsTamperedCiphertext(t *testing.T) {
	var masterKey [32]byte
	client, err := NewChannel(masterKey, true)
	if err != nil {
		t.Fatalf("new client channel: %v", err)
	}
	server, err := NewChannel(masterKey, false)
	if err != nil {
		t.Fatalf("new server channel: %v", err)
	}

	wire, err := client.Wrap([]byte("payload"))
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	tampered := append([]byte{}, wire...)
	tampered[len(tampered)-1] ^= 0xFF

	if _, err := server.Unwrap(tampered); err == nil {
		t.Fatalf("unwrap should reject tampered ciphertext")
	}
}

func TestDirectionsDoNotCrossKeys(t *testing.T) {
	var masterKey [32]byte
	for i := range masterKey {
		masterKey[i] = byte(i + 1)
	}

	client, err := NewChannel(masterKey, true)
	if err != nil {
		t.Fatalf("new client channel: %v", err)
	}

	wire, err := client.Wrap([]byte("hello"))
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	// A client channel's own receive direction uses the server key, so it
	// cannot open a message it sent with its own send key.
	if _, err := client.Unwrap(wire); err == nil {
		t.Fatalf("client should not be able to unwrap its own outbound message")
	}
}
