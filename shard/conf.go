// Package shard implements the Hub: the process-wide owner of every World,
// the two cadenced tickers that drive them, and the dispatch point for
// decoded wire messages arriving from client sessions.
package shard

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/bramblecraft/shard/metadata"
	"github.com/bramblecraft/shard/world/registry"
	"github.com/bramblecraft/shard/world/store"
)

// Config contains the options for starting a Hub.
type Config struct {
	// Log is the Logger used for process-wide logging. If nil, Log is set
	// to slog.Default().
	Log *slog.Logger
	// Registry is the immutable block table every World shares.
	Registry *registry.Registry
	// Worlds is the set of worlds to construct, resolved from worlds.json
	// by the metadata package.
	Worlds []metadata.WorldEntry
	// GeneratorWorkers controls the number of asynchronous workers
	// dedicated to chunk generation, per World. If 0, a default is used.
	GeneratorWorkers int
	// GeneratorQueueSize limits how many chunk generation jobs may wait for
	// a worker, per World. If 0, a default is used.
	GeneratorQueueSize int
	// WorldTick is the cadence of the world tick (clock advance, generation
	// bookkeeping, chunk-boundary detection). Defaults to 16ms.
	WorldTick time.Duration
	// ChunkingTick is the cadence of the chunking tick (per-client chunk
	// delivery). Defaults to 18ms.
	ChunkingTick time.Duration
}

const (
	defaultGeneratorWorkers   = 4
	defaultGeneratorQueueSize = 64
	defaultWorldTick          = 16 * time.Millisecond
	defaultChunkingTick       = 18 * time.Millisecond
)

// New constructs a Hub from conf: every configured World is created and
// preloaded (blocking), and the Hub's two tickers are started. The
// returned Hub is immediately ready to accept Join/Leave/PlayerMessage
// calls.
func (conf Config) New() (*Hub, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.GeneratorWorkers <= 0 {
		conf.GeneratorWorkers = defaultGeneratorWorkers
	}
	if conf.GeneratorQueueSize <= 0 {
		conf.GeneratorQueueSize = defaultGeneratorQueueSize
	}
	if conf.WorldTick <= 0 {
		conf.WorldTick = defaultWorldTick
	}
	if conf.ChunkingTick <= 0 {
		conf.ChunkingTick = defaultChunkingTick
	}
	return newHub(conf)
}

// chunkStore opens the persistent chunk store for a world, or a no-op
// store when the world's configuration disables saving.
func chunkStore(root string, worldName string, save bool) (store.Store, error) {
	if !save {
		return store.Nop{}, nil
	}
	return store.OpenLevelDB(filepath.Join(root, worldName))
}
