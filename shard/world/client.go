package world

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/bramblecraft/shard/world/chunk"
	"github.com/bramblecraft/shard/wire"
)

// Sink is a client's capability to receive one encoded message. Dead-sink
// detection relies on Send returning a non-nil error.
type Sink interface {
	Send(msg wire.Message) error
}

// Client is the per-session state the world keeps for one connected peer.
// A Client whose Name is empty has not completed the handshake (OnPeer has
// not yet been received for it) and is skipped by broadcasts of gameplay
// events and by chunk streaming.
type Client struct {
	ID   uint64
	Name string

	Position mgl32.Vec3
	Rotation mgl32.Quat

	CurrentChunk    *chunk.Pos
	RequestedChunks []chunk.Pos

	RenderRadius int16
	Sink         Sink
}

// Joined reports whether the client has completed its handshake (i.e.
// OnPeer has set a name).
func (c *Client) Joined() bool {
	return c.Name != ""
}

// PushRequestedChunk enqueues a chunk coordinate at the tail of the
// client's request FIFO.
func (c *Client) PushRequestedChunk(pos chunk.Pos) {
	c.RequestedChunks = append(c.RequestedChunks, pos)
}

// PopRequestedChunk dequeues the head of the client's request FIFO.
func (c *Client) PopRequestedChunk() (chunk.Pos, bool) {
	if len(c.RequestedChunks) == 0 {
		return chunk.Pos{}, false
	}
	pos := c.RequestedChunks[0]
	c.RequestedChunks = c.RequestedChunks[1:]
	return pos, true
}

// RequeueChunk pushes a chunk coordinate to the tail of the request FIFO,
// used by the chunking tick's "not ready yet" retry path.
func (c *Client) RequeueChunk(pos chunk.Pos) {
	c.RequestedChunks = append(c.RequestedChunks, pos)
}
