// Package chunk defines the chunk coordinate system, the in-memory chunk
// representation and its dirty/propagation bookkeeping. Voxel generation
// and meshing proper are implemented by shard/world/generator and
// shard/world/mesher; this
// package only owns the data each chunk carries and the bookkeeping the
// world tick/update algorithms depend on.
package chunk

import "fmt"

// Pos is a chunk coordinate (cx, cz).
type Pos [2]int32

// Pack encodes Pos into a single int64, used as the key for the
// intintmap-backed DirtySet.
func (p Pos) Pack() int64 {
	return int64(uint64(uint32(p[0]))<<32 | uint64(uint32(p[1])))
}

// Unpack decodes a packed int64 back into a Pos.
func Unpack(packed int64) Pos {
	return Pos{int32(uint32(packed >> 32)), int32(uint32(packed))}
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d, %d)", p[0], p[1])
}

// Neighbours returns the four axis-aligned neighbouring chunk coordinates.
func (p Pos) Neighbours() [4]Pos {
	return [4]Pos{
		{p[0] + 1, p[1]},
		{p[0] - 1, p[1]},
		{p[0], p[1] + 1},
		{p[0], p[1] - 1},
	}
}

// VoxelToChunk converts a voxel coordinate to the chunk coordinate that
// contains it: chunk = floor(voxel / chunk_size).
func VoxelToChunk(vx, vz int32, chunkSize uint) Pos {
	size := int32(chunkSize)
	return Pos{floorDiv(vx, size), floorDiv(vz, size)}
}

// WorldToVoxel converts a floating-point world coordinate to an integer
// voxel coordinate: voxel = floor(world * dimension).
func WorldToVoxel(world float32, dimension uint) int32 {
	return int32(floorDivF(world*float32(dimension), 1))
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorDivF(a, b float32) float32 {
	if b == 1 {
		return float32(int32(a)) - boolToFloat(a < 0 && a != float32(int32(a)))
	}
	return a / b
}

func boolToFloat(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
