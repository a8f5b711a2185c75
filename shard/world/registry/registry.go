// Package registry implements the immutable block table: a static,
// id↔name lookup of block properties loaded once at startup from
// metadata/blocks.json. It is read-only after construction and therefore
// safe for concurrent use by every World without locking.
package registry

import (
	"encoding/json"
	"fmt"
	"io"
)

// AirName is the canonical name of the air block. Only this id is treated
// as "air" by the air-over-air update filter; non-default air-like
// variants (e.g. a barrier block) are deliberately not short-circuited.
const AirName = "Air"

// Block describes the static properties of a single block type.
type Block struct {
	ID                   uint32            `json:"id"`
	Name                 string            `json:"name"`
	IsPlant              bool              `json:"isPlant"`
	IsAir                bool              `json:"isEmpty"`
	IsFluid              bool              `json:"isFluid"`
	IsLight              bool              `json:"isLight"`
	IsSolid              bool              `json:"isSolid"`
	IsTransparent        bool              `json:"isTransparent"`
	TransparentStandalone bool             `json:"transparentStandalone"`
	Passable             bool              `json:"passable"`
	RedLightLevel        uint32            `json:"redLightLevel"`
	GreenLightLevel      uint32            `json:"greenLightLevel"`
	BlueLightLevel       uint32            `json:"blueLightLevel"`
	Textures              map[string]string `json:"textures,omitempty"`
}

// Registry is the immutable, process-wide block table. A zero Registry is
// not usable; construct one with Load.
type Registry struct {
	blocks  []Block
	byName  map[string]uint32
	airID   uint32
}

// Load parses a blocks.json document (a JSON array of Block) from r and
// builds an immutable Registry. It returns an error if the document is
// malformed or does not declare an Air block, since the rewrite relies on
// a canonical air id for the update-filter invariant (§3 invariant 4).
func Load(r io.Reader) (*Registry, error) {
	var blocks []Block
	if err := json.NewDecoder(r).Decode(&blocks); err != nil {
		return nil, fmt.Errorf("decode block registry: %w", err)
	}
	reg := &Registry{
		blocks: blocks,
		byName: make(map[string]uint32, len(blocks)),
	}
	foundAir := false
	for _, b := range blocks {
		reg.byName[b.Name] = b.ID
		if b.Name == AirName {
			reg.airID = b.ID
			foundAir = true
		}
	}
	if !foundAir {
		return nil, fmt.Errorf("block registry: missing canonical %q block", AirName)
	}
	return reg, nil
}

// HasType reports whether id is a known block type.
func (r *Registry) HasType(id uint32) bool {
	return int(id) < len(r.blocks) && r.blocks[id].ID == id
}

// block returns the Block for id, or the zero Block if unknown.
func (r *Registry) block(id uint32) Block {
	if !r.HasType(id) {
		return Block{}
	}
	return r.blocks[id]
}

// IsAir reports whether id is the canonical air block.
func (r *Registry) IsAir(id uint32) bool {
	return id == r.airID
}

// AirID returns the canonical air block id.
func (r *Registry) AirID() uint32 {
	return r.airID
}

// IsPlant reports whether id is a plant block (used by the update
// cascade: a plant resting on a removed support is removed in turn).
func (r *Registry) IsPlant(id uint32) bool {
	return r.block(id).IsPlant
}

// IDByName looks up a block id by its registered name.
func (r *Registry) IDByName(name string) (uint32, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// PassableSolids returns the set of block ids that are rendered solid but
// do not block movement, echoed to clients in the JoinResult.
func (r *Registry) PassableSolids() []uint32 {
	out := make([]uint32, 0)
	for _, b := range r.blocks {
		if b.IsSolid && b.Passable {
			out = append(out, b.ID)
		}
	}
	return out
}

// Blocks returns a copy of the full block table, used when assembling a
// GetWorld response.
func (r *Registry) Blocks() []Block {
	out := make([]Block, len(r.blocks))
	copy(out, r.blocks)
	return out
}
