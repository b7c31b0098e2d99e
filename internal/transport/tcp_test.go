package transport

import (
	"context"
	"net"
	"testing"

	"secure-session/internal/container"
)

func TestConnSendReceiveRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	serverConn := NewConn(server, nil)
	clientConn := NewConn(client, nil)

	wire := container.New(container.TagProto, []byte("hello over the wire")).Encode()

	done := make(chan error, 1)
	go func() {
		done <- clientConn.SendData(context.Background(), wire)
	}()

	got, err := serverConn.ReceiveData(context.Background())
	if err != nil {
		t.Fatalf("ReceiveData: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("SendData: %v", err)
	}

	c, _, err := container.Parse(got, container.TagProto)
	if err != nil {
		t.Fatalf("parse received container: %v", err)
	}
	if string(c.Payload) != "hello over the wire" {
		t.Fatalf("payload = %q", c.Payload)
	}
}
