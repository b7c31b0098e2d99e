package session

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"sync"
	"testing"

	"secure-session/internal/container"
	sscrypto "secure-session/internal/crypto"
)

// pipe is an unbounded in-memory queue whose receive blocks until a
// message is available, standing in for a reliable in-order transport
// between two in-process peers.
type pipe struct {
	mu   sync.Mutex
	cond *sync.Cond
	msgs [][]byte
}

func newPipe() *pipe {
	p := &pipe{}
	p.cond = sync.NewCond(&p.mu)
	return p
}

func (p *pipe) send(msg []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, append([]byte{}, msg...))
	p.cond.Signal()
}

func (p *pipe) receive() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.msgs) == 0 {
		p.cond.Wait()
	}
	msg := p.msgs[0]
	p.msgs = p.msgs[1:]
	return msg
}

func lookupFor(pub *ecdsa.PublicKey) func(context.Context, string) ([]byte, error) {
	return func(context.Context, string) ([]byte, error) {
		return container.New(container.TagECPub, sscrypto.EncodeSigningPublic(pub)).Encode(), nil
	}
}

// TestEndToEndHandshakeAndEcho runs the full M1-M4 handshake between two
// in-process Contexts over blocking pipes, then exercises the record
// layer in both directions.
func TestEndToEndHandshakeAndEcho(t *testing.T) {
	clientToServer := newPipe()
	serverToClient := newPipe()

	clientPriv, err := sscrypto.GenerateSigningKey()
	if err != nil {
		t.Fatalf("generate signing key: %v", err)
	}
	serverPriv, err := sscrypto.GenerateSigningKey()
	if err != nil {
		t.Fatalf("generate signing key: %v", err)
	}

	client, err := New("client", clientPriv, Callbacks{
		SendData:          func(_ context.Context, wire []byte) error { clientToServer.send(wire); return nil },
		ReceiveData:       func(_ context.Context) ([]byte, error) { return serverToClient.receive(), nil },
		GetPublicKeyForID: lookupFor(&serverPriv.PublicKey),
	})
	if err != nil {
		t.Fatalf("New(client): %v", err)
	}
	server, err := New("server", serverPriv, Callbacks{
		SendData:          func(_ context.Context, wire []byte) error { serverToClient.send(wire); return nil },
		ReceiveData:       func(_ context.Context) ([]byte, error) { return clientToServer.receive(), nil },
		GetPublicKeyForID: lookupFor(&clientPriv.PublicKey),
	})
	if err != nil {
		t.Fatalf("New(server): %v", err)
	}

	ctx := context.Background()
	var wg sync.WaitGroup
	var serverErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 2; i++ { // server processes M1 and M3
			if _, err := server.Receive(ctx); err != nil {
				serverErr = err
				return
			}
		}
	}()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	if _, err := client.Receive(ctx); err != nil { // M2
		t.Fatalf("client step on M2: %v", err)
	}
	wg.Wait()
	if serverErr != nil {
		t.Fatalf("server handshake error: %v", serverErr)
	}
	if _, err := client.Receive(ctx); err != nil { // M4
		t.Fatalf("client step on M4: %v", err)
	}

	if client.State().String() != "Established" {
		t.Fatalf("client state = %s, want Established", client.State())
	}
	if server.State().String() != "Established" {
		t.Fatalf("server state = %s, want Established", server.State())
	}
	if client.SessionID() != server.SessionID() {
		t.Fatalf("session ids differ")
	}

	if err := client.Send(ctx, []byte("ping")); err != nil {
		t.Fatalf("client.Send: %v", err)
	}
	got, err := server.Receive(ctx)
	if err != nil {
		t.Fatalf("server.Receive: %v", err)
	}
	if !bytes.Equal(got, []byte("ping")) {
		t.Fatalf("server received %q, want %q", got, "ping")
	}

	if err := server.Send(ctx, []byte("pong")); err != nil {
		t.Fatalf("server.Send: %v", err)
	}
	got, err = client.Receive(ctx)
	if err != nil {
		t.Fatalf("client.Receive: %v", err)
	}
	if !bytes.Equal(got, []byte("pong")) {
		t.Fatalf("client received %q, want %q", got, "pong")
	}
}

func TestSendRejectedBeforeEstablished(t *testing.T) {
	priv, err := sscrypto.GenerateSigningKey()
	if err != nil {
		t.Fatalf("generate signing key: %v", err)
	}
	c, err := New("client", priv, Callbacks{
		SendData:          func(context.Context, []byte) error { return nil },
		ReceiveData:       func(context.Context) ([]byte, error) { return nil, nil },
		GetPublicKeyForID: func(context.Context, string) ([]byte, error) { return nil, nil },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Send(context.Background(), []byte("hi")); err == nil {
		t.Fatalf("send before Established should fail")
	}
}
