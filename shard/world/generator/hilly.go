package generator

import (
	"math"

	"github.com/bramblecraft/shard/world/chunk"
)

// hillyGenerator produces rolling terrain from a cheap deterministic value
// noise, a simplified heightmap generator without biome selection or
// population passes.
type hillyGenerator struct {
	seed int64
	base int32
}

const (
	hillAmplitude = 12.0
	hillFrequency = 0.05
)

// valueNoise2D is a cheap, deterministic hash-based value noise: hashed
// lattice corners blended with smoothstep, much simpler than pmgen's
// simplex noise, but sufficient to produce a non-flat, seed-stable
// heightmap for the "hilly" generation kind.
func valueNoise2D(seed int64, x, z float64) float64 {
	xi, zi := math.Floor(x), math.Floor(z)
	fx, fz := x-xi, z-zi

	corner := func(cx, cz float64) float64 {
		h := hash2D(seed, int64(cx), int64(cz))
		return float64(h%10000) / 10000
	}

	v00 := corner(xi, zi)
	v10 := corner(xi+1, zi)
	v01 := corner(xi, zi+1)
	v11 := corner(xi+1, zi+1)

	sx := smoothstep(fx)
	sz := smoothstep(fz)

	top := lerp(v00, v10, sx)
	bottom := lerp(v01, v11, sx)
	return lerp(top, bottom, sz)
}

func hash2D(seed, x, z int64) uint64 {
	h := uint64(seed)*0x9E3779B97F4A7C15 + uint64(x)*0xC2B2AE3D27D4EB4F + uint64(z)*0x165667B19E3779F9
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return h
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func (g *hillyGenerator) HeightAt(vx, vz int32) int32 {
	n := valueNoise2D(g.seed, float64(vx)*hillFrequency, float64(vz)*hillFrequency)
	return g.base + int32(n*hillAmplitude)
}

func (g *hillyGenerator) Generate(c *chunk.Chunk, ids BlockIDs) {
	size := int(c.ChunkSize)
	for lx := 0; lx < size; lx++ {
		for lz := 0; lz < size; lz++ {
			vx := c.Pos[0]*int32(c.ChunkSize) + int32(lx)
			vz := c.Pos[1]*int32(c.ChunkSize) + int32(lz)
			height := g.HeightAt(vx, vz)
			if height < 1 {
				height = 1
			}
			for ly := 0; ly < int(height) && ly < int(c.MaxHeight); ly++ {
				switch {
				case ly == int(height)-1:
					c.SetVoxel(lx, ly, lz, ids.Grass)
				case ly >= int(height)-4:
					c.SetVoxel(lx, ly, lz, ids.Dirt)
				default:
					c.SetVoxel(lx, ly, lz, ids.Stone)
				}
			}
		}
	}
	c.ClearDirty()
}
