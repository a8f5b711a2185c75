// Package generator implements the default voxel terrain generator: a
// concrete, runnable backend behind the Chunks engine's pluggable
// generation contract. It supports two generation kinds: flat and hilly.
package generator

import (
	"fmt"

	"github.com/bramblecraft/shard/world/chunk"
)

// Kind selects a terrain generator, per WorldConfig.Generation.
type Kind string

const (
	Flat  Kind = "flat"
	Hilly Kind = "hilly"
)

// ParseKind validates a generation kind string from worlds.json.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Flat, Hilly:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("generator: unknown generation kind %q", s)
	}
}

// BlockIDs names the block ids a generator needs to know about. The
// registry supplies these once at world construction.
type BlockIDs struct {
	Air, Stone, Dirt, Grass uint32
}

// Generator produces terrain for a single chunk column.
type Generator interface {
	// Generate fills c with voxel ids for the column at c.Pos.
	Generate(c *chunk.Chunk, ids BlockIDs)
	// HeightAt returns the surface height (in voxels) at the given voxel
	// column, used by Hub.Join to compute a safe spawn point.
	HeightAt(vx, vz int32) int32
}

// New constructs the Generator for the given kind and seed.
func New(kind Kind, seed int64, groundHeight int32) Generator {
	switch kind {
	case Hilly:
		return &hillyGenerator{seed: seed, base: groundHeight}
	default:
		return &flatGenerator{height: groundHeight}
	}
}
