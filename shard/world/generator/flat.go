package generator

import "github.com/bramblecraft/shard/world/chunk"

// flatGenerator produces a flat world: stone below layer height-4, dirt
// from height-4 to height-2, a single grass layer at height-1, air from
// height up.
type flatGenerator struct {
	height int32
}

func (g *flatGenerator) HeightAt(_, _ int32) int32 {
	return g.height
}

func (g *flatGenerator) Generate(c *chunk.Chunk, ids BlockIDs) {
	size := int(c.ChunkSize)
	for lx := 0; lx < size; lx++ {
		for lz := 0; lz < size; lz++ {
			for ly := 0; ly < int(g.height); ly++ {
				switch {
				case ly == int(g.height)-1:
					c.SetVoxel(lx, ly, lz, ids.Grass)
				case ly >= int(g.height)-4:
					c.SetVoxel(lx, ly, lz, ids.Dirt)
				default:
					c.SetVoxel(lx, ly, lz, ids.Stone)
				}
			}
		}
	}
	c.ClearDirty()
}
