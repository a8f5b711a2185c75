// Package metadata loads the process's startup configuration documents:
// metadata/worlds.json (per-world config, deep-merged against a shared
// default) and metadata/blocks.json (the block registry). A missing file
// or a document that does not parse as both WorldConfig and WorldMeta is a
// fatal startup error.
package metadata

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bramblecraft/shard/world"
)

// WorldEntry is one fully-resolved worlds.json entry: a world's name and
// description plus its immutable chunk configuration.
type WorldEntry struct {
	Meta   world.Meta
	Config world.WorldConfig
}

// LoadWorlds parses a worlds.json document from r, deep-merging each
// "worlds" entry over "default" (the entry's own leaves win; "default"
// only fills in keys the entry does not set).
func LoadWorlds(r io.Reader) ([]WorldEntry, error) {
	var doc struct {
		Default map[string]any   `json:"default"`
		Worlds  []map[string]any `json:"worlds"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("metadata: decode worlds.json: %w", err)
	}
	if len(doc.Worlds) == 0 {
		return nil, fmt.Errorf("metadata: worlds.json declares no worlds")
	}

	out := make([]WorldEntry, 0, len(doc.Worlds))
	for i, w := range doc.Worlds {
		merged := make(map[string]any, len(w))
		for k, v := range w {
			merged[k] = v
		}
		deepMerge(merged, doc.Default, false)

		raw, err := json.Marshal(merged)
		if err != nil {
			return nil, fmt.Errorf("metadata: re-encode world entry %d: %w", i, err)
		}

		var entry WorldEntry
		if err := json.Unmarshal(raw, &entry.Meta); err != nil {
			return nil, fmt.Errorf("metadata: world entry %d does not parse as world metadata: %w", i, err)
		}
		if err := json.Unmarshal(raw, &entry.Config); err != nil {
			return nil, fmt.Errorf("metadata: world entry %d does not parse as world config: %w", i, err)
		}
		if entry.Meta.Name == "" {
			return nil, fmt.Errorf("metadata: world entry %d is missing a name", i)
		}
		out = append(out, entry)
	}
	return out, nil
}

// deepMerge copies every key of src into dst that dst does not already set,
// recursing into nested objects present on both sides. When overwrite is
// true, src always wins regardless of whether dst already sets the key.
func deepMerge(dst, src map[string]any, overwrite bool) {
	for k, sv := range src {
		dv, exists := dst[k]
		if !exists || overwrite {
			dst[k] = sv
			continue
		}
		dstMap, dstIsMap := dv.(map[string]any)
		srcMap, srcIsMap := sv.(map[string]any)
		if dstIsMap && srcIsMap {
			deepMerge(dstMap, srcMap, overwrite)
		}
	}
}
