package wire

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// frameHeaderSize is the size, in bytes, of the length-prefix + checksum
// header that precedes every encoded payload.
const frameHeaderSize = 4 + 8

// ErrChecksumMismatch is returned by Decode when a frame's payload does
// not match its checksum, i.e. the frame is malformed/corrupted in
// transit. Treated the same as malformed JSON: the message is dropped and
// logged at debug level by the caller.
var ErrChecksumMismatch = fmt.Errorf("wire: checksum mismatch")

// Encode serialises msg into a single length-prefixed, checksummed frame:
// [uint32 length][uint64 xxhash64 checksum][JSON payload]. The length
// prefix covers only the payload.
func Encode(msg Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("wire: encode %s: %w", msg.Type, err)
	}
	sum := xxhash.Sum64(payload)

	buf := make([]byte, frameHeaderSize+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(payload)))
	binary.BigEndian.PutUint64(buf[4:12], sum)
	copy(buf[frameHeaderSize:], payload)
	return buf, nil
}

// Decode parses a single frame previously produced by Encode.
func Decode(frame []byte) (Message, error) {
	if len(frame) < frameHeaderSize {
		return Message{}, fmt.Errorf("wire: short frame (%d bytes)", len(frame))
	}
	length := binary.BigEndian.Uint32(frame[0:4])
	checksum := binary.BigEndian.Uint64(frame[4:12])
	payload := frame[frameHeaderSize:]
	if uint32(len(payload)) != length {
		return Message{}, fmt.Errorf("wire: length mismatch: header says %d, got %d", length, len(payload))
	}
	if xxhash.Sum64(payload) != checksum {
		return Message{}, ErrChecksumMismatch
	}
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, fmt.Errorf("wire: decode: %w", err)
	}
	return msg, nil
}

// ReadFrame reads one length-prefixed frame from r, returning the raw
// bytes suitable for Decode. It is the transport-facing half of the
// codec: a transport only needs to frame bytes; ReadFrame/WriteFrame give
// it a ready-made implementation.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(header[0:4])
	frame := make([]byte, frameHeaderSize+int(length))
	copy(frame, header[:])
	if _, err := io.ReadFull(r, frame[frameHeaderSize:]); err != nil {
		return nil, err
	}
	return frame, nil
}

// WriteFrame writes a frame previously produced by Encode to w.
func WriteFrame(w io.Writer, frame []byte) error {
	_, err := w.Write(frame)
	return err
}

// EncodeBuffer is a convenience that encodes and writes msg in one call.
func EncodeBuffer(w io.Writer, msg Message) error {
	frame, err := Encode(msg)
	if err != nil {
		return err
	}
	return WriteFrame(w, frame)
}
