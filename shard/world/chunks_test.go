package world

import (
	"strings"
	"testing"
	"time"

	"github.com/bramblecraft/shard/world/chunk"
	"github.com/bramblecraft/shard/world/registry"
	"github.com/bramblecraft/shard/world/store"
)

func testChunksRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.Load(strings.NewReader(testBlocks))
	if err != nil {
		t.Fatalf("registry.Load: %v", err)
	}
	return reg
}

func newTestChunks(t *testing.T) *Chunks {
	t.Helper()
	conf := WorldConfig{ChunkSize: 4, MaxHeight: 8, Generation: "flat"}
	c, err := NewChunks(conf, testChunksRegistry(t), store.Nop{}, 1, 16)
	if err != nil {
		t.Fatalf("NewChunks: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// waitReady requests generation of pos (a no-op if it is already loaded)
// and drains Tick until pos reports ready or the deadline passes.
func waitReady(t *testing.T, c *Chunks, pos chunk.Pos) *chunk.Chunk {
	t.Helper()
	c.Generate(pos, 0, false)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.Tick()
		if ch, ok := c.Ready(pos); ok {
			return ch
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("chunk %v never became ready", pos)
	return nil
}

func TestGenerateCreatesEveryChunkInRadius(t *testing.T) {
	c := newTestChunks(t)
	c.Generate(chunk.Pos{0, 0}, 1, false)

	want := []chunk.Pos{
		{-1, -1}, {0, -1}, {1, -1},
		{-1, 0}, {0, 0}, {1, 0},
		{-1, 1}, {0, 1}, {1, 1},
	}
	for _, pos := range want {
		waitReady(t, c, pos)
	}
	if got := c.Len(); got != len(want) {
		t.Fatalf("Len() = %d, want %d", got, len(want))
	}
}

func TestGenerateWithoutForceSkipsExistingChunks(t *testing.T) {
	c := newTestChunks(t)
	pos := chunk.Pos{0, 0}
	ch := waitReady(t, c, pos)
	ch.SetVoxel(0, 0, 0, 99) // mark distinctly so a regeneration would clobber it

	c.Generate(pos, 0, false)
	c.Tick()

	if got := ch.Voxel(0, 0, 0); got != 99 {
		t.Fatalf("Generate without force regenerated an existing chunk: voxel = %d, want 99", got)
	}
}

func TestUpdateMarksNeighbourChunkDirtyAtSharedEdge(t *testing.T) {
	c := newTestChunks(t)
	center := waitReady(t, c, chunk.Pos{0, 0})
	neighbour := waitReady(t, c, chunk.Pos{1, 0})
	center.ClearDirty()
	neighbour.ClearDirty()

	// local x = ChunkSize-1 = 3 sits on the shared edge with chunk (1, 0).
	c.StartCaching()
	c.Update(3, 0, 0, 1)
	c.StopCaching()

	dirty := c.CacheSnapshot()
	found := map[chunk.Pos]bool{}
	for _, p := range dirty {
		found[p] = true
	}
	if !found[chunk.Pos{0, 0}] {
		t.Fatal("updated chunk itself should be in the cache")
	}
	if !found[chunk.Pos{1, 0}] {
		t.Fatal("neighbour sharing the touched edge should be in the cache")
	}
	if len(neighbour.DirtyLevels()) == 0 {
		t.Fatal("neighbour chunk should have a dirty mesh level after the shared-edge update")
	}
}

func TestGetFullMeshesEveryLevelAndClearsDirty(t *testing.T) {
	c := newTestChunks(t)
	pos := chunk.Pos{0, 0}
	waitReady(t, c, pos)

	ch, ok := c.Get(pos, true)
	if !ok {
		t.Fatal("Get(pos, true) on a ready chunk should succeed")
	}
	if len(ch.DirtyLevels()) != 0 {
		t.Fatal("Get(pos, true) should clear the dirty set after meshing")
	}
}

func TestDirtyMeshesClearsAfterReturning(t *testing.T) {
	c := newTestChunks(t)
	pos := chunk.Pos{0, 0}
	waitReady(t, c, pos)

	c.StartCaching()
	c.Update(0, 0, 0, 1)
	c.StopCaching()

	levels, meshes := c.DirtyMeshes(pos)
	if len(levels) == 0 || len(meshes) == 0 {
		t.Fatal("DirtyMeshes should report the level touched by Update")
	}

	levels2, _ := c.DirtyMeshes(pos)
	if len(levels2) != 0 {
		t.Fatal("DirtyMeshes should clear the dirty set once read")
	}
}
