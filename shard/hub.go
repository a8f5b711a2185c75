package shard

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bramblecraft/shard/wire"
	"github.com/bramblecraft/shard/world"
	"github.com/bramblecraft/shard/world/registry"
)

// ErrUnknownWorld is returned when a Hub operation names a world that does
// not exist.
var ErrUnknownWorld = errors.New("shard: unknown world")

// JoinResult is the response to a successful Join.
type JoinResult struct {
	ID        uint64
	Time      float32
	TickSpeed float32
	Spawn     [3]int32
	Passables []uint32
}

// WorldSummary is one entry of Hub.ListWorlds.
type WorldSummary struct {
	Name        string
	Time        float32
	Generation  string
	Description string
	Players     int
}

// WorldInfo is the response to Hub.GetWorld: a world's full configuration,
// clock state and block table.
type WorldInfo struct {
	Name      string
	Config    world.WorldConfig
	Time      float32
	TickSpeed float32
	Blocks    []registry.Block
}

// Hub owns every World in the process and drives the two cadenced tickers.
type Hub struct {
	conf Config
	log  *slog.Logger

	worlds map[string]*world.World

	stop chan struct{}
	wg   sync.WaitGroup
}

func newHub(conf Config) (*Hub, error) {
	h := &Hub{
		conf:   conf,
		log:    conf.Log,
		worlds: make(map[string]*world.World, len(conf.Worlds)),
		stop:   make(chan struct{}),
	}
	for _, entry := range conf.Worlds {
		st, err := chunkStore(entry.Config.ChunkRoot, entry.Meta.Name, entry.Config.Save)
		if err != nil {
			return nil, fmt.Errorf("shard: open chunk store for %q: %w", entry.Meta.Name, err)
		}
		w, err := world.New(entry.Meta.Name, entry.Meta, entry.Config, conf.Registry, st, conf.GeneratorWorkers, conf.GeneratorQueueSize, conf.Log)
		if err != nil {
			return nil, fmt.Errorf("shard: build world %q: %w", entry.Meta.Name, err)
		}
		w.Preload(entry.Meta.Preload)
		h.worlds[entry.Meta.Name] = w
	}

	h.wg.Add(2)
	go h.runTicker(conf.WorldTick, h.tick)
	go h.runTicker(conf.ChunkingTick, h.chunking)

	return h, nil
}

func (h *Hub) runTicker(interval time.Duration, fn func()) {
	defer h.wg.Done()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			fn()
		case <-h.stop:
			return
		}
	}
}

// tick runs the world tick across every world.
func (h *Hub) tick() {
	for _, w := range h.worlds {
		<-w.Exec(func(w *world.World) {
			w.Tick()
		})
	}
}

// chunking runs the chunking tick across every world.
func (h *Hub) chunking() {
	for _, w := range h.worlds {
		<-w.Exec(func(w *world.World) {
			w.ChunkingTick()
		})
	}
}

// Stop halts both tickers and closes every world's chunk engine. Already
// connected clients are not explicitly disconnected.
func (h *Hub) Stop() {
	close(h.stop)
	h.wg.Wait()
	for _, w := range h.worlds {
		if err := w.Close(); err != nil {
			h.log.Error("close world", "world", w.Name, "err", err)
		}
	}
}

// Join inserts a new client into worldName and returns its JoinResult.
func (h *Hub) Join(worldName string, sink world.Sink, renderRadius int16) (JoinResult, error) {
	w, ok := h.worlds[worldName]
	if !ok {
		return JoinResult{}, ErrUnknownWorld
	}
	var result JoinResult
	<-w.Exec(func(w *world.World) {
		c := w.AddClient(sink, renderRadius)
		result = JoinResult{
			ID:        c.ID,
			Time:      w.Clock.Time(),
			TickSpeed: w.Clock.TickSpeed(),
			Spawn:     [3]int32{0, w.Chunks.GetMaxHeight(0, 0), 0},
			Passables: w.Chunks.Registry.PassableSolids(),
		}
	})
	return result, nil
}

// Leave removes a client from worldName, logging and broadcasting a Leave
// chat message if it had completed its handshake. Silent if the world or
// client is unknown.
func (h *Hub) Leave(worldName string, clientID uint64) {
	w, ok := h.worlds[worldName]
	if !ok {
		return
	}
	<-w.Exec(func(w *world.World) {
		name, existed := w.Leave(clientID)
		if !existed || name == "" {
			return
		}
		h.log.Info(fmt.Sprintf("%s(id=%d) left the world %s", name, clientID, worldName))
	})
}

// PlayerMessage decodes the outer type tag of raw and dispatches it to the
// named world's handler. Unknown tags are dropped silently.
func (h *Hub) PlayerMessage(worldName string, clientID uint64, raw wire.Message) {
	w, ok := h.worlds[worldName]
	if !ok {
		return
	}
	switch raw.Type {
	case wire.Request:
		if raw.Request == nil {
			return
		}
		req := *raw.Request
		w.Exec(func(w *world.World) { w.OnChunkRequest(clientID, req) })
	case wire.Config:
		w.Exec(func(w *world.World) { w.OnConfig(raw) })
	case wire.Update:
		updates := raw.Updates
		w.Exec(func(w *world.World) { w.OnUpdate(updates) })
	case wire.Peer:
		w.Exec(func(w *world.World) { w.OnPeer(clientID, raw) })
	case wire.Chat:
		chat := raw.Chat
		if chat == nil {
			return
		}
		w.Exec(func(w *world.World) { w.OnChatMessage(chat.Type, chat.Sender, chat.Body) })
	default:
		// Unknown or unsupported tag: dropped silently.
	}
}

// ListWorldNames returns the names of every world the Hub owns.
func (h *Hub) ListWorldNames() []string {
	names := make([]string, 0, len(h.worlds))
	for name := range h.worlds {
		names = append(names, name)
	}
	return names
}

// ListWorlds returns a summary of every world.
func (h *Hub) ListWorlds() []WorldSummary {
	out := make([]WorldSummary, 0, len(h.worlds))
	for name, w := range h.worlds {
		<-w.Exec(func(w *world.World) {
			out = append(out, WorldSummary{
				Name:        name,
				Time:        w.Clock.Time(),
				Generation:  w.Chunks.Config.Generation,
				Description: w.Description,
				Players:     w.ClientCount(),
			})
		})
	}
	return out
}

// GetWorld returns the full configuration, clock state and block table of
// a single world.
func (h *Hub) GetWorld(name string) (WorldInfo, bool) {
	w, ok := h.worlds[name]
	if !ok {
		return WorldInfo{}, false
	}
	var info WorldInfo
	<-w.Exec(func(w *world.World) {
		info = WorldInfo{
			Name:      name,
			Config:    w.Chunks.Config,
			Time:      w.Clock.Time(),
			TickSpeed: w.Clock.TickSpeed(),
			Blocks:    w.Chunks.Registry.Blocks(),
		}
	})
	return info, true
}
