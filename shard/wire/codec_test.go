package wire

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Message{
		OfType(Init),
		{Type: Request, Request: &ChunkCoord{X: 3, Z: -4}},
		{Type: Update, Updates: []VoxelUpdate{{VX: 1, VY: 2, VZ: 3, Type: 7}}},
		ChatOfType(Chat, Info, "alice", "hello"),
	}
	for _, msg := range cases {
		frame, err := Encode(msg)
		if err != nil {
			t.Fatalf("Encode(%v): %v", msg.Type, err)
		}
		got, err := Decode(frame)
		if err != nil {
			t.Fatalf("Decode(%v): %v", msg.Type, err)
		}
		if got.Type != msg.Type {
			t.Fatalf("type mismatch: want %v got %v", msg.Type, got.Type)
		}
	}
}

func TestDecodeRejectsCorruptPayload(t *testing.T) {
	frame, err := Encode(OfType(Load))
	if err != nil {
		t.Fatal(err)
	}
	frame[len(frame)-1] ^= 0xFF
	if _, err := Decode(frame); err != ErrChecksumMismatch {
		t.Fatalf("want ErrChecksumMismatch, got %v", err)
	}
}

func TestDecodeRejectsShortFrame(t *testing.T) {
	if _, err := Decode([]byte{1, 2, 3}); err == nil {
		t.Fatal("want error for short frame")
	}
}

func TestReadWriteFrame(t *testing.T) {
	msg := ChatOfType(Chat, Server, "", "world saved")
	frame, err := Encode(msg)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteFrame(&buf, frame); err != nil {
		t.Fatal(err)
	}
	read, err := ReadFrame(&buf)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(read)
	if err != nil {
		t.Fatal(err)
	}
	if got.Chat == nil || got.Chat.Body != "world saved" {
		t.Fatalf("unexpected decoded message: %+v", got)
	}
}

func TestTypeStringNamesMessageChat(t *testing.T) {
	if Chat.String() != "Message" {
		t.Fatalf("Chat.String() = %q, want %q", Chat.String(), "Message")
	}
}
