// Package mesher implements a naive-cube mesher for chunk sub-levels. One
// quad is emitted per solid voxel face that borders a non-solid neighbour
// within the same sub-chunk level, using a packed per-direction vertex and
// index layout, without ambient occlusion or texture atlasing.
package mesher

import "github.com/bramblecraft/shard/world/chunk"

// Solid reports whether a block id should be meshed as an opaque face.
type Solid func(id uint32) bool

// direction is one of the six face normals.
type direction int

const (
	north direction = iota
	south
	east
	west
	up
	down
)

var directionVectors = [6][3]int{
	north: {0, 0, -1},
	south: {0, 0, 1},
	east:  {1, 0, 0},
	west:  {-1, 0, 0},
	up:    {0, 1, 0},
	down:  {0, -1, 0},
}

// quad describes the four corner offsets (relative to a voxel's origin
// corner) of a unit face for a given direction.
var quadCorners = [6][4][3]float32{
	north: {{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
	south: {{0, 0, 1}, {0, 1, 1}, {1, 1, 1}, {1, 0, 1}},
	east:  {{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}},
	west:  {{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
	up:    {{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}},
	down:  {{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
}

// MeshLevel builds the mesh geometry for a single vertical sub-chunk level
// of c, using solid to decide whether a voxel occludes its neighbours.
func MeshLevel(c *chunk.Chunk, level int, solid Solid) chunk.Mesh {
	size := int(c.ChunkSize)
	levelHeight := size
	if levelHeight <= 0 {
		levelHeight = 1
	}
	y0, y1 := level*levelHeight, (level+1)*levelHeight

	var m chunk.Mesh
	var vertexCount int32

	for lx := 0; lx < size; lx++ {
		for lz := 0; lz < size; lz++ {
			for ly := y0; ly < y1; ly++ {
				id := c.Voxel(lx, ly, lz)
				if !solid(id) {
					continue
				}
				for d := north; d <= down; d++ {
					nv := directionVectors[d]
					nx, ny, nz := lx+nv[0], ly+nv[1], lz+nv[2]
					if nx < 0 || nx >= size || nz < 0 || nz >= size || ny < 0 || ny >= int(c.MaxHeight) {
						// Chunk-edge faces are conservatively meshed; the
						// neighbouring chunk's own mesh covers the seam
						// once it is generated.
					} else if solid(c.Voxel(nx, ny, nz)) {
						continue
					}
					emitFace(&m, &vertexCount, lx, ly-y0, lz, d, id)
				}
			}
		}
	}
	return m
}

func emitFace(m *chunk.Mesh, vertexCount *int32, lx, ly, lz int, d direction, blockID uint32) {
	corners := quadCorners[d]
	for _, c := range corners {
		m.Positions = append(m.Positions,
			float32(lx)+c[0],
			float32(ly)+c[1],
			float32(lz)+c[2],
		)
		m.AOs = append(m.AOs, 3)
		m.Lights = append(m.Lights, 15)
	}
	m.UVs = append(m.UVs, 0, 0, 1, 0, 1, 1, 0, 1)
	base := *vertexCount
	m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	*vertexCount += 4
	_ = blockID
}
