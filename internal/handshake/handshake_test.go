package handshake

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"testing"

	"secure-session/internal/container"
	sscrypto "secure-session/internal/crypto"
)

func newTestSelf(t *testing.T, id string) *Self {
	t.Helper()
	priv, err := sscrypto.GenerateSigningKey()
	if err != nil {
		t.Fatalf("generate signing key: %v", err)
	}
	return &Self{ID: id, SignPriv: priv, SignPub: &priv.PublicKey}
}

// lookupTable resolves ids to EC_PUB_KEY_PREF containers, standing in for
// an external directory in tests.
type lookupTable map[string]*ecdsa.PublicKey

var errUnknownTestPeer = errors.New("unknown peer")

func (l lookupTable) lookup(_ context.Context, id string) ([]byte, error) {
	pub, ok := l[id]
	if !ok {
		return nil, errUnknownTestPeer
	}
	return container.New(container.TagECPub, sscrypto.EncodeSigningPublic(pub)).Encode(), nil
}

func runHandshake(t *testing.T, client, server *Machine) (clientErr, serverErr error) {
	t.Helper()
	ctx := context.Background()

	m1, err := client.Connect(ctx)
	if err != nil {
		return err, nil
	}
	m2, err := server.Step(ctx, m1)
	if err != nil {
		return nil, err
	}
	m3, err := client.Step(ctx, m2)
	if err != nil {
		return err, nil
	}
	m4, err := server.Step(ctx, m3)
	if err != nil {
		return nil, err
	}
	_, err = client.Step(ctx, m4)
	return err, nil
}

func TestHappyHandshakeReachesEstablishedWithMatchingKeys(t *testing.T) {
	clientSelf := newTestSelf(t, "client")
	serverSelf := newTestSelf(t, "server")

	table := lookupTable{"client": clientSelf.SignPub, "server": serverSelf.SignPub}

	client := New(clientSelf, table.lookup)
	server := New(serverSelf, table.lookup)

	clientErr, serverErr := runHandshake(t, client, server)
	if clientErr != nil {
		t.Fatalf("client handshake error: %v", clientErr)
	}
	if serverErr != nil {
		t.Fatalf("server handshake error: %v", serverErr)
	}

	if client.State() != Established {
		t.Fatalf("client state = %s, want Established", client.State())
	}
	if server.State() != Established {
		t.Fatalf("server state = %s, want Established", server.State())
	}
	if client.SessionID() != server.SessionID() {
		t.Fatalf("session ids differ between client and server")
	}
	if client.MasterKey() != server.MasterKey() {
		t.Fatalf("master keys differ between client and server")
	}
	if client.PeerID() != "server" || server.PeerID() != "client" {
		t.Fatalf("peer ids recorded wrong: client sees %q, server sees %q", client.PeerID(), server.PeerID())
	}
}

func TestUnknownIdentityRejected(t *testing.T) {
	clientSelf := newTestSelf(t, "client")
	serverSelf := newTestSelf(t, "server")

	// server's directory does not know "client".
	table := lookupTable{"server": serverSelf.SignPub}

	client := New(clientSelf, table.lookup)
	server := New(serverSelf, table.lookup)

	ctx := context.Background()
	m1, err := client.Connect(ctx)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := server.Step(ctx, m1); err == nil {
		t.Fatalf("server should reject M1 from an unregistered identity")
	}
	if server.State() != AcceptWait {
		t.Fatalf("server state = %s, want unchanged AcceptWait", server.State())
	}
	if server.PeerID() != "" {
		t.Fatalf("server peer record should stay empty after a rejected M1")
	}
}

func TestBadSignatureInM2Rejected(t *testing.T) {
	clientSelf := newTestSelf(t, "client")
	serverSelf := newTestSelf(t, "server")
	table := lookupTable{"client": clientSelf.SignPub, "server": serverSelf.SignPub}

	client := New(clientSelf, table.lookup)
	server := New(serverSelf, table.lookup)

	ctx := context.Background()
	m1, err := client.Connect(ctx)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	m2, err := server.Step(ctx, m1)
	if err != nil {
		t.Fatalf("server step on M1: %v", err)
	}

	// Flip a byte inside the server's ECDH public key: past the outer
	// header, the "server" id container, and the key container's header.
	tampered := append([]byte{}, m2...)
	tampered[container.HeaderSize+(container.HeaderSize+len("server"))+container.HeaderSize+20] ^= 0xFF

	if _, err := client.Step(ctx, tampered); err == nil {
		t.Fatalf("client should reject a tampered M2")
	}
	if client.State() != ProceedClientWait {
		t.Fatalf("client state = %s, want unchanged ProceedClientWait", client.State())
	}
	if client.MasterKey() != ([32]byte{}) {
		t.Fatalf("master key should not be derived after a rejected M2")
	}
}

func TestOutOfOrderM3Rejected(t *testing.T) {
	serverSelf := newTestSelf(t, "server")
	table := lookupTable{"server": serverSelf.SignPub}
	server := New(serverSelf, table.lookup)

	// A well-formed-looking M3 arrives before any M1: server is still in
	// AcceptWait, so this should be rejected at parse time, not routed to
	// an M3 handler.
	bogusM3 := container.New(container.TagProto, make([]byte, sscrypto.MACSize+8)).Encode()

	if _, err := server.Step(context.Background(), bogusM3); err == nil {
		t.Fatalf("server should reject an M3-shaped message while in AcceptWait")
	}
	if server.State() != AcceptWait {
		t.Fatalf("server state = %s, want unchanged AcceptWait", server.State())
	}
}

func TestTruncatedFrameRejected(t *testing.T) {
	clientSelf := newTestSelf(t, "client")
	serverSelf := newTestSelf(t, "server")
	table := lookupTable{"client": clientSelf.SignPub, "server": serverSelf.SignPub}

	client := New(clientSelf, table.lookup)
	server := New(serverSelf, table.lookup)

	ctx := context.Background()
	m1, err := client.Connect(ctx)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := server.Step(ctx, m1[:len(m1)-5]); err == nil {
		t.Fatalf("server should reject a truncated M1")
	}
	if server.State() != AcceptWait {
		t.Fatalf("server state = %s, want unchanged AcceptWait", server.State())
	}
}
