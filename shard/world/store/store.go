// Package store defines the persistent chunk store contract (a pluggable
// load/save hook for the Chunks engine) and a default LevelDB-backed
// implementation.
package store

import "github.com/bramblecraft/shard/world/chunk"

// Store loads and saves raw chunk data under {chunk_root}/{world_name}/.
// The core only ever calls Load/Save/Close; the on-disk format is an
// implementation detail of the Store.
type Store interface {
	// Load returns the raw voxel data for pos, or ok=false if it has
	// never been saved.
	Load(pos chunk.Pos) (voxels []uint32, ok bool, err error)
	// Save persists the raw voxel data for pos.
	Save(pos chunk.Pos, voxels []uint32) error
	// Close releases any resources (file handles, database handles) held
	// by the store.
	Close() error
}

// Nop is a Store that never persists anything, used when a World's
// WorldConfig.Save is false.
type Nop struct{}

func (Nop) Load(chunk.Pos) ([]uint32, bool, error) { return nil, false, nil }
func (Nop) Save(chunk.Pos, []uint32) error          { return nil }
func (Nop) Close() error                            { return nil }
