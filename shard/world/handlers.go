package world

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/text/width"

	"github.com/bramblecraft/shard/world/chunk"
	"github.com/bramblecraft/shard/wire"
)

// Handlers all run on w's transaction-draining goroutine (they are meant
// to be invoked from inside an Exec closure by the Hub's dispatch).

// OnChunkRequest appends the requested coordinate to the client's FIFO. A
// request outside the client's render radius of its current chunk is
// dropped at enqueue time.
func (w *World) OnChunkRequest(clientID uint64, req wire.ChunkCoord) {
	c, ok := w.Client(clientID)
	if !ok {
		return
	}
	pos := chunk.Pos{req.X, req.Z}
	if c.CurrentChunk != nil {
		dx := pos[0] - c.CurrentChunk[0]
		dz := pos[1] - c.CurrentChunk[1]
		if abs32(dx) > int32(c.RenderRadius) || abs32(dz) > int32(c.RenderRadius) {
			return
		}
	}
	c.PushRequestedChunk(pos)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// configPayload is the free-form Config JSON, deliberately left untyped on
// the wire so new clock fields can be added without a protocol bump.
type configPayload struct {
	Time      *float32 `json:"time,omitempty"`
	TickSpeed *float32 `json:"tickSpeed,omitempty"`
}

// OnConfig updates the present clock fields then rebroadcasts the same
// config JSON to every client, including the sender, so every connected
// client converges on the same clock state.
func (w *World) OnConfig(raw wire.Message) {
	var cfg configPayload
	if raw.JSON != "" {
		if err := json.Unmarshal([]byte(raw.JSON), &cfg); err != nil {
			w.log.Debug("malformed config payload", "err", err)
			return
		}
	}
	if cfg.Time != nil {
		w.Clock.SetTime(*cfg.Time)
	}
	if cfg.TickSpeed != nil {
		w.Clock.SetTickSpeed(*cfg.TickSpeed)
	}
	w.broadcast(wire.Message{Type: wire.Config, JSON: raw.JSON}, nil)
}

// OnPeer parses the first peer entry, records a fresh handshake, and
// rebroadcasts the peer's transform to everyone else.
func (w *World) OnPeer(clientID uint64, raw wire.Message) {
	if len(raw.Peers) == 0 {
		return
	}
	p := raw.Peers[0]

	c, ok := w.Client(clientID)
	if !ok {
		// The client vanished between lookup and mutation. This removal is
		// a no-op since the id is already absent; kept rather than
		// special-cased away.
		w.RemoveClient(clientID)
		return
	}

	freshlyJoined := c.Name == ""
	// Clients may send fullwidth variants of ASCII characters (common from
	// CJK input methods); fold them to plain width so names compare and
	// display consistently across the world's client table.
	c.Name = width.Narrow.String(p.Name)
	c.Position = mgl32.Vec3{p.PX, p.PY, p.PZ}
	c.Rotation = mgl32.Quat{W: p.QW, V: mgl32.Vec3{p.QX, p.QY, p.QZ}}

	if freshlyJoined {
		w.log.Info(fmt.Sprintf("%s(id=%d) joined the world %s", c.Name, clientID, w.Name))
		chat := wire.ChatOfType(wire.Chat, wire.Info, "", c.Name+" joined the game")
		w.broadcast(chat, nil)
	}
	w.broadcast(wire.Message{Type: wire.Peer, Peers: []wire.PeerEntry{p}}, map[uint64]struct{}{clientID: {}})
}

// OnChatMessage rebroadcasts a chat message to every client.
func (w *World) OnChatMessage(chatType wire.ChatType, sender, body string) {
	w.broadcast(wire.ChatOfType(wire.Chat, chatType, sender, body), nil)
}

// pendingUpdate is one entry on the mutable stack driving OnUpdate's
// cascade processing.
type pendingUpdate struct {
	vx, vy, vz int32
	typ        uint32
}

// OnUpdate applies a batch of voxel updates via a stack-based cascade
// algorithm (each accepted write that leaves a plant unsupported pushes
// its removal back onto the stack), then broadcasts re-mesh messages for
// every dirtied chunk followed by the aggregate result.
func (w *World) OnUpdate(updates []wire.VoxelUpdate) {
	stack := make([]pendingUpdate, 0, len(updates))
	for i := len(updates) - 1; i >= 0; i-- {
		u := updates[i]
		stack = append(stack, pendingUpdate{vx: u.VX, vy: u.VY, vz: u.VZ, typ: u.Type})
	}

	var results []wire.VoxelUpdate
	maxHeight := int32(w.Chunks.Config.MaxHeight)

	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if u.vy < 0 || u.vy >= maxHeight {
			continue
		}
		if !w.Chunks.Registry.HasType(u.typ) {
			continue
		}
		if ch, ok := w.Chunks.ChunkByVoxel(u.vx, u.vy, u.vz); ok && ch.NeedsPropagation {
			continue
		}
		current := w.Chunks.VoxelByVoxel(u.vx, u.vy, u.vz)
		if w.Chunks.Registry.IsAir(current) && w.Chunks.Registry.IsAir(u.typ) {
			continue
		}

		w.Chunks.StartCaching()
		w.Chunks.Update(u.vx, u.vy, u.vz, u.typ)
		w.Chunks.StopCaching()

		above := w.Chunks.VoxelByVoxel(u.vx, u.vy+1, u.vz)
		if w.Chunks.Registry.IsPlant(above) {
			stack = append(stack, pendingUpdate{vx: u.vx, vy: u.vy + 1, vz: u.vz, typ: w.Chunks.Registry.AirID()})
		}

		results = append(results, wire.VoxelUpdate{VX: u.vx, VY: u.vy, VZ: u.vz, Type: u.typ})
	}

	if len(results) == 0 {
		return
	}

	dirty := w.Chunks.CacheSnapshot()
	w.Chunks.ClearCache()
	for _, pos := range dirty {
		levels, meshes := w.Chunks.DirtyMeshes(pos)
		if len(levels) == 0 {
			continue
		}
		cp := wire.ChunkProtocol{CX: pos[0], CZ: pos[1]}
		for _, level := range levels {
			m := meshes[level]
			cp.Meshes = append(cp.Meshes, wire.ChunkMesh{
				Level:     level,
				Positions: m.Positions,
				Indices:   m.Indices,
				UVs:       m.UVs,
				AOs:       m.AOs,
				Lights:    m.Lights,
			})
		}
		w.broadcast(wire.Message{Type: wire.Update, Chunks: []wire.ChunkProtocol{cp}}, nil)
	}

	w.broadcast(wire.Message{Type: wire.Update, Updates: results}, nil)
}
