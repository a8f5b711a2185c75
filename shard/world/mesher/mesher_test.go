package mesher

import (
	"testing"

	"github.com/bramblecraft/shard/world/chunk"
)

func solidNonZero(id uint32) bool { return id != 0 }

func TestMeshLevelEmptyChunkProducesNoFaces(t *testing.T) {
	c := chunk.New(chunk.Pos{0, 0}, 4, 4)
	m := MeshLevel(c, 0, solidNonZero)
	if len(m.Positions) != 0 {
		t.Fatalf("empty chunk produced %d position floats, want 0", len(m.Positions))
	}
}

func TestMeshLevelSingleVoxelProducesSixFaces(t *testing.T) {
	c := chunk.New(chunk.Pos{0, 0}, 4, 4)
	c.SetVoxel(1, 1, 1, 1)
	m := MeshLevel(c, 0, solidNonZero)

	const floatsPerFace = 4 * 3
	if len(m.Positions) != 6*floatsPerFace {
		t.Fatalf("isolated voxel produced %d position floats, want %d", len(m.Positions), 6*floatsPerFace)
	}
	if len(m.Indices) != 6*6 {
		t.Fatalf("isolated voxel produced %d indices, want %d", len(m.Indices), 6*6)
	}
}

func TestMeshLevelHidesInteriorFaces(t *testing.T) {
	c := chunk.New(chunk.Pos{0, 0}, 4, 4)
	// A fully solid 2x2x2 block: every interior-facing face is occluded,
	// only the outward faces of the cube remain.
	for lx := 0; lx < 2; lx++ {
		for ly := 0; ly < 2; ly++ {
			for lz := 0; lz < 2; lz++ {
				c.SetVoxel(lx, ly, lz, 1)
			}
		}
	}
	m := MeshLevel(c, 0, solidNonZero)

	const floatsPerFace = 4 * 3
	gotFaces := len(m.Positions) / floatsPerFace
	// 6 faces per cube * 8 cubes, minus the 12 shared interior faces
	// (counted from both sides) = 48 - 24 = 24.
	if gotFaces != 24 {
		t.Fatalf("2x2x2 solid block produced %d faces, want 24", gotFaces)
	}
}
