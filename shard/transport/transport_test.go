package transport

import (
	"net"
	"testing"

	"github.com/bramblecraft/shard/wire"
)

func TestSessionSendReceiveRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	clientSess := NewSession(client)
	serverSess := NewSession(server)

	want := wire.ChatOfType(wire.Chat, wire.Info, "A", "hello")
	errc := make(chan error, 1)
	go func() { errc <- clientSess.Send(want) }()

	got, err := serverSess.Receive()
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if err := <-errc; err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Chat == nil || got.Chat.Body != "hello" {
		t.Fatalf("received message = %+v, want chat body \"hello\"", got)
	}
}

func TestSessionIDsAreDistinct(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	a := NewSession(client)
	b := NewSession(server)
	if a.ID == b.ID {
		t.Fatal("two sessions drew the same id")
	}
}

func TestSessionCloseUnblocksReceive(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	sess := NewSession(server)
	errc := make(chan error, 1)
	go func() {
		_, err := sess.Receive()
		errc <- err
	}()

	if err := sess.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := <-errc; err == nil {
		t.Fatal("Receive should report an error once the session is closed")
	}
}
