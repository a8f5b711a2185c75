package world

import (
	"fmt"
	"sync"

	"github.com/bramblecraft/shard/world/chunk"
	"github.com/bramblecraft/shard/world/generator"
	"github.com/bramblecraft/shard/world/mesher"
	"github.com/bramblecraft/shard/world/registry"
	"github.com/bramblecraft/shard/world/store"
	"github.com/bramblecraft/shard/world/vecn"
)

// Chunks owns chunk storage, generation and meshing for one World. The
// voxel generator and mesher are pluggable collaborators; Chunks wires a
// concrete default (generator.Generator + mesher.MeshLevel) behind the
// same contract so the module runs end to end, while remaining
// swappable.
type Chunks struct {
	Config   WorldConfig
	Registry *registry.Registry

	gen   generator.Generator
	pool  *generator.Pool
	store store.Store
	ids   generator.BlockIDs

	mu     sync.RWMutex
	chunks map[chunk.Pos]*chunk.Chunk

	caching    bool
	chunkCache *chunk.DirtySet
}

// NewChunks constructs Chunks for a freshly-created World. It returns an
// error if conf.Generation names an unknown generator kind; such a config
// is fatal rather than silently defaulted.
func NewChunks(conf WorldConfig, reg *registry.Registry, st store.Store, workers, queueSize int) (*Chunks, error) {
	groundHeight := int32(conf.MaxHeight / 2)
	kind, err := generator.ParseKind(conf.Generation)
	if err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	gen := generator.New(kind, conf.Seed, groundHeight)

	ids := generator.BlockIDs{}
	ids.Air = reg.AirID()
	if id, ok := reg.IDByName("Stone"); ok {
		ids.Stone = id
	}
	if id, ok := reg.IDByName("Dirt"); ok {
		ids.Dirt = id
	}
	if id, ok := reg.IDByName("Grass Block"); ok {
		ids.Grass = id
	}

	return &Chunks{
		Config:     conf,
		Registry:   reg,
		gen:        gen,
		pool:       generator.NewPool(gen, ids, workers, queueSize),
		store:      st,
		ids:        ids,
		chunks:     make(map[chunk.Pos]*chunk.Chunk),
		chunkCache: chunk.NewDirtySet(8),
	}, nil
}

// Len returns the number of chunks currently loaded in memory.
func (c *Chunks) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.chunks)
}

// GetMaxHeight returns the generator's surface height at a voxel column,
// used by Hub.Join to place a safe spawn point.
func (c *Chunks) GetMaxHeight(vx, vz int32) int32 {
	return c.gen.HeightAt(vx, vz)
}

// raw returns the in-memory chunk at pos without considering readiness.
func (c *Chunks) raw(pos chunk.Pos) (*chunk.Chunk, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ch, ok := c.chunks[pos]
	return ch, ok
}

// ensure returns the chunk at pos, creating (but not generating) it if
// necessary.
func (c *Chunks) ensure(pos chunk.Pos) *chunk.Chunk {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ch, ok := c.chunks[pos]; ok {
		return ch
	}
	ch := chunk.New(pos, c.Config.ChunkSize, c.Config.MaxHeight)
	c.chunks[pos] = ch
	return ch
}

// Generate requests generation of every chunk within radius chunks of pos,
// pos included, that is not yet loaded, or of all of them if force. It is
// the asynchronous counterpart to the world tick's chunk-boundary
// detection.
func (c *Chunks) Generate(pos chunk.Pos, radius int16, force bool) {
	center := vecn.Vec2[int32]{X: pos[0], Z: pos[1]}
	for dx := -int32(radius); dx <= int32(radius); dx++ {
		for dz := -int32(radius); dz <= int32(radius); dz++ {
			offset := vecn.Vec2[int32]{X: dx, Z: dz}
			p := center.Add(offset)
			c.requestGeneration(chunk.Pos{p.X, p.Z}, force)
		}
	}
}

func (c *Chunks) requestGeneration(pos chunk.Pos, force bool) {
	c.mu.Lock()
	ch, exists := c.chunks[pos]
	c.mu.Unlock()
	if exists && !force {
		return
	}
	if !exists {
		ch = c.ensure(pos)
	}
	if loaded, ok, err := c.store.Load(pos); ok && err == nil {
		c.installVoxels(ch, loaded)
		return
	}
	c.pool.Submit(generator.Job{Pos: pos, C: ch})
}

func (c *Chunks) installVoxels(ch *chunk.Chunk, voxels []uint32) {
	size := int(ch.ChunkSize)
	for i, id := range voxels {
		ly := i / (size * size)
		rem := i % (size * size)
		lz := rem / size
		lx := rem % size
		ch.SetVoxel(lx, ly, lz, id)
	}
	ch.ClearDirty()
	ch.NeedsPropagation = false
}

// Tick drains completed asynchronous generation jobs and marks their
// chunks ready.
func (c *Chunks) Tick() {
	for {
		select {
		case res, ok := <-c.pool.Results():
			if !ok {
				return
			}
			res.C.NeedsPropagation = false
			if c.Config.Save {
				_ = c.store.Save(res.Pos, res.C.RawVoxels())
			}
		default:
			return
		}
	}
}

// Ready reports whether pos is loaded and has completed its initial
// propagation, i.e. whether the chunking tick may ship it to a client.
func (c *Chunks) Ready(pos chunk.Pos) (*chunk.Chunk, bool) {
	ch, ok := c.raw(pos)
	if !ok || ch.NeedsPropagation {
		return nil, false
	}
	return ch, true
}

// ChunkByVoxel returns the chunk containing the voxel coordinate, if
// loaded.
func (c *Chunks) ChunkByVoxel(vx, _, vz int32) (*chunk.Chunk, bool) {
	pos := chunk.VoxelToChunk(vx, vz, c.Config.ChunkSize)
	return c.raw(pos)
}

func (c *Chunks) localCoords(vx, vy, vz int32) (int, int, int) {
	size := int32(c.Config.ChunkSize)
	lx := ((vx % size) + size) % size
	lz := ((vz % size) + size) % size
	return int(lx), int(vy), int(lz)
}

// VoxelByVoxel returns the block id at an absolute voxel coordinate, or
// the canonical air id if the owning chunk is not loaded.
func (c *Chunks) VoxelByVoxel(vx, vy, vz int32) uint32 {
	ch, ok := c.ChunkByVoxel(vx, vy, vz)
	if !ok {
		return c.Registry.AirID()
	}
	lx, ly, lz := c.localCoords(vx, vy, vz)
	return ch.Voxel(lx, ly, lz)
}

// StartCaching marks the start of a write-cache scope around Update calls.
// Update records every touched chunk coordinate into chunkCache whether or
// not a scope is open; nothing else reads the scope flag.
func (c *Chunks) StartCaching() {
	c.caching = true
}

// StopCaching ends the write-cache scope.
func (c *Chunks) StopCaching() {
	c.caching = false
}

// Update writes a single voxel, re-meshes the affected sub-chunk level
// (and the matching level of any neighbour chunk sharing the edge), and
// records every touched chunk coordinate into the per-tick chunk_cache.
func (c *Chunks) Update(vx, vy, vz int32, id uint32) {
	ch, ok := c.ChunkByVoxel(vx, vy, vz)
	if !ok {
		return
	}
	lx, ly, lz := c.localCoords(vx, vy, vz)
	ch.SetVoxel(lx, ly, lz, id)
	c.remesh(ch)
	c.chunkCache.Insert(ch.Pos)

	size := int32(c.Config.ChunkSize)
	for _, n := range ch.Pos.Neighbours() {
		touches := (lx == 0 && n[0] == ch.Pos[0]-1) ||
			(lx == int(size-1) && n[0] == ch.Pos[0]+1) ||
			(lz == 0 && n[1] == ch.Pos[1]-1) ||
			(lz == int(size-1) && n[1] == ch.Pos[1]+1)
		if !touches {
			continue
		}
		if nch, ok := c.raw(n); ok {
			nch.MarkDirty(ly / subChunkHeight(c.Config.ChunkSize))
			c.remesh(nch)
			c.chunkCache.Insert(n)
		}
	}
}

func subChunkHeight(chunkSize uint) int {
	if chunkSize == 0 {
		return 1
	}
	return int(chunkSize)
}

func (c *Chunks) remesh(ch *chunk.Chunk) {
	solid := func(id uint32) bool {
		return !c.Registry.IsAir(id)
	}
	for _, level := range ch.DirtyLevels() {
		ch.SetMesh(level, mesher.MeshLevel(ch, level, solid))
	}
}

// GetNeighborChunkCoords returns the chunk coordinate owning the voxel
// plus any of its neighbours that could be affected by a re-mesh at that
// voxel (i.e. those sharing the edge the voxel sits on).
func (c *Chunks) GetNeighborChunkCoords(vx, _, vz int32) []chunk.Pos {
	pos := chunk.VoxelToChunk(vx, vz, c.Config.ChunkSize)
	out := []chunk.Pos{pos}
	lx, _, lz := c.localCoords(vx, 0, vz)
	size := int(c.Config.ChunkSize)
	if lx == 0 {
		out = append(out, chunk.Pos{pos[0] - 1, pos[1]})
	}
	if lx == size-1 {
		out = append(out, chunk.Pos{pos[0] + 1, pos[1]})
	}
	if lz == 0 {
		out = append(out, chunk.Pos{pos[0], pos[1] - 1})
	}
	if lz == size-1 {
		out = append(out, chunk.Pos{pos[0], pos[1] + 1})
	}
	return out
}

// ClearCache empties the per-tick chunk_cache.
func (c *Chunks) ClearCache() {
	c.chunkCache.Clear()
}

// CacheSnapshot returns the chunk_cache contents without clearing it.
func (c *Chunks) CacheSnapshot() []chunk.Pos {
	return c.chunkCache.Snapshot()
}

// numLevels returns how many vertical sub-chunk mesh levels a chunk has.
func (c *Chunks) numLevels() int {
	h := subChunkHeight(c.Config.ChunkSize)
	if h == 0 {
		return 1
	}
	n := int(c.Config.MaxHeight) / h
	if n == 0 {
		n = 1
	}
	return n
}

// Get returns the chunk at pos if it is ready to ship. When full is true
// (the initial Load path) every vertical level is (re-)meshed; otherwise
// the chunk is returned as-is for the caller to read its already-fresh
// dirty meshes (the incremental Update path, see DirtyMeshes).
func (c *Chunks) Get(pos chunk.Pos, full bool) (*chunk.Chunk, bool) {
	ch, ready := c.Ready(pos)
	if !ready {
		return nil, false
	}
	if full {
		for level := 0; level < c.numLevels(); level++ {
			ch.MarkDirty(level)
		}
		c.remesh(ch)
		ch.ClearDirty()
	}
	return ch, true
}

// DirtyMeshes returns the dirty sub-chunk levels of pos's chunk along with
// their freshly-meshed geometry at sub-chunk granularity, then clears the
// dirty set.
func (c *Chunks) DirtyMeshes(pos chunk.Pos) ([]int, map[int]chunk.Mesh) {
	ch, ok := c.raw(pos)
	if !ok {
		return nil, nil
	}
	levels := ch.DirtyLevels()
	meshes := make(map[int]chunk.Mesh, len(levels))
	for _, level := range levels {
		if m, ok := ch.Mesh(level); ok {
			meshes[level] = m
		}
	}
	ch.ClearDirty()
	return levels, meshes
}

// Saturated returns how many chunk-generation submissions have found the
// worker pool's job queue full since the Chunks was constructed.
func (c *Chunks) Saturated() uint64 {
	return c.pool.Saturated()
}

// Close releases the generation pool and persistent store.
func (c *Chunks) Close() error {
	c.pool.Close()
	return c.store.Close()
}
