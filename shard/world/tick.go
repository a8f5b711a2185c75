package world

import (
	"github.com/bramblecraft/shard/world/chunk"
	"github.com/bramblecraft/shard/wire"
)

// Tick runs the per-world slice of the Hub's world tick (T_w ≈ 16 ms):
// advance the clock, run chunk-generation bookkeeping, and detect named
// clients that crossed a chunk boundary.
func (w *World) Tick() {
	w.Clock.Tick()
	w.Chunks.Tick()
	w.tickPhysics()

	if sat := w.Chunks.Saturated(); sat > w.lastSaturated {
		w.log.Warn("generator queue saturated", "count", sat-w.lastSaturated)
		w.lastSaturated = sat
	}

	dimension := w.Chunks.Config.Dimension
	chunkSize := w.Chunks.Config.ChunkSize
	for _, id := range w.namedClients() {
		c, ok := w.Client(id)
		if !ok {
			continue
		}
		vx := chunk.WorldToVoxel(c.Position.X(), dimension)
		vz := chunk.WorldToVoxel(c.Position.Z(), dimension)
		pos := chunk.VoxelToChunk(vx, vz, chunkSize)

		if c.CurrentChunk != nil && *c.CurrentChunk == pos {
			continue
		}
		c.CurrentChunk = &pos
		w.Chunks.Generate(pos, c.RenderRadius, false)
	}
}

// tickPhysics is the physics step of the world tick. It is empty: the
// server runs no physics simulation.
func (w *World) tickPhysics() {}

// ChunkingTick runs the per-world slice of the Hub's chunking tick
// (T_c ≈ 18 ms): pop at most one pending chunk request per named client
// and either ship it or requeue it to the tail.
func (w *World) ChunkingTick() {
	for _, id := range w.namedClients() {
		c, ok := w.Client(id)
		if !ok {
			continue
		}
		pos, ok := c.PopRequestedChunk()
		if !ok {
			continue
		}
		ch, ready := w.Chunks.Get(pos, true)
		if !ready {
			c.RequeueChunk(pos)
			continue
		}
		w.send(id, loadMessage(pos, ch))
	}
}

func loadMessage(pos chunk.Pos, ch *chunk.Chunk) wire.Message {
	cp := wire.ChunkProtocol{CX: pos[0], CZ: pos[1], Voxels: ch.RawVoxels()}
	for level, m := range ch.MeshLevels() {
		cp.Meshes = append(cp.Meshes, wire.ChunkMesh{
			Level:     level,
			Positions: m.Positions,
			Indices:   m.Indices,
			UVs:       m.UVs,
			AOs:       m.AOs,
			Lights:    m.Lights,
		})
	}
	return wire.Message{Type: wire.Load, Chunks: []wire.ChunkProtocol{cp}}
}
