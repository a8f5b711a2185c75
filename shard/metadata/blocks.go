package metadata

import (
	"io"

	"github.com/bramblecraft/shard/world/registry"
)

// LoadBlocks parses a blocks.json document from r into an immutable block
// Registry.
func LoadBlocks(r io.Reader) (*registry.Registry, error) {
	return registry.Load(r)
}
