package world

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/bramblecraft/shard/world/chunk"
	"github.com/bramblecraft/shard/world/registry"
	"github.com/bramblecraft/shard/world/store"
	"github.com/bramblecraft/shard/wire"
)

// ExecFunc is a unit of work run exclusively against a World's state on
// its single-threaded cooperative scheduler.
type ExecFunc func(w *World)

// transaction is one queued unit of work plus the channel its submitter
// waits on for completion.
type transaction struct {
	fn   ExecFunc
	done chan struct{}
}

// World owns one independent chunk grid, clock and client table. All
// mutation happens on the single goroutine draining queue; callers reach
// the World only through Exec, which serializes every handler and tick
// cycle onto that goroutine.
type World struct {
	Name        string
	Description string
	Meta        Meta

	Clock  *Clock
	Chunks *Chunks

	log *slog.Logger

	clients map[uint64]*Client

	lastSaturated uint64

	queue  chan transaction
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a World and starts its transaction-draining goroutine. It
// does not preload chunks; call Preload separately once the caller is ready
// to block on it. It returns an error if conf is invalid (e.g. an unknown
// generation kind), which the caller should treat as fatal at startup.
func New(name string, meta Meta, conf WorldConfig, reg *registry.Registry, st store.Store, generatorWorkers, generatorQueueSize int, log *slog.Logger) (*World, error) {
	chunks, err := NewChunks(conf, reg, st, generatorWorkers, generatorQueueSize)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &World{
		Name:        name,
		Description: meta.Description,
		Meta:        meta,
		Clock:       NewClock(meta.Time, meta.TickSpeed),
		Chunks:      chunks,
		log:         log.With("world", name),
		clients:     make(map[uint64]*Client),
		queue:       make(chan transaction, 256),
		ctx:         ctx,
		cancel:      cancel,
	}
	w.wg.Add(1)
	go w.handleTransactions()
	return w, nil
}

// handleTransactions is the single goroutine that ever touches w's Clock,
// Chunks or Clients table.
func (w *World) handleTransactions() {
	defer w.wg.Done()
	for {
		select {
		case tx := <-w.queue:
			tx.fn(w)
			close(tx.done)
		case <-w.ctx.Done():
			return
		}
	}
}

// Exec enqueues fn to run exclusively against w's state and returns a
// channel closed once fn has completed.
func (w *World) Exec(fn ExecFunc) <-chan struct{} {
	done := make(chan struct{})
	select {
	case w.queue <- transaction{fn: fn, done: done}:
	case <-w.ctx.Done():
		close(done)
	}
	return done
}

// Close stops the transaction loop and releases the underlying chunk
// engine. It does not wait for queued transactions to finish draining
// beyond the current one.
func (w *World) Close() error {
	w.cancel()
	w.wg.Wait()
	return w.Chunks.Close()
}

// Preload generates preload rings of chunks around the origin and logs the
// elapsed time. It is synchronous and blocking, meant to run once at
// world construction before the World is reachable by clients.
func (w *World) Preload(rings int16) {
	if rings <= 0 {
		return
	}
	start := time.Now()
	w.Chunks.Generate(chunk.Pos{0, 0}, rings, true)
	for waiting := true; waiting; {
		time.Sleep(time.Millisecond)
		w.Chunks.Tick()
		waiting = false
		for dx := -int32(rings); dx <= int32(rings); dx++ {
			for dz := -int32(rings); dz <= int32(rings); dz++ {
				pos := chunk.Pos{dx, dz}
				if _, ok := w.Chunks.Ready(pos); !ok {
					waiting = true
					w.Chunks.requestGeneration(pos, true)
				}
			}
		}
	}
	w.log.Info("preloaded world", "rings", rings, "elapsed", time.Since(start))
}

// --- client table -----------------------------------------------------

// newClientID draws a random id not already present in clients, redrawing
// on collision so ids stay unique within this world.
func (w *World) newClientID() uint64 {
	for {
		id := rand.Uint64()
		if _, exists := w.clients[id]; !exists {
			return id
		}
	}
}

// AddClient inserts a freshly-created Client and returns it, used by
// Hub.Join. Must run inside Exec.
func (w *World) AddClient(sink Sink, renderRadius int16) *Client {
	id := w.newClientID()
	c := &Client{ID: id, Sink: sink, RenderRadius: renderRadius}
	w.clients[id] = c
	return c
}

// Client looks up a client by id. Must run inside Exec.
func (w *World) Client(id uint64) (*Client, bool) {
	c, ok := w.clients[id]
	return c, ok
}

// RemoveClient deletes a client from the table. Must run inside Exec.
func (w *World) RemoveClient(id uint64) {
	delete(w.clients, id)
}

// Leave removes a client, broadcasting a Leave chat message carrying its id
// as Text if it had completed its handshake. It reports whether the
// client existed and its name. Must run inside Exec.
func (w *World) Leave(id uint64) (name string, existed bool) {
	c, ok := w.clients[id]
	if !ok {
		return "", false
	}
	name = c.Name
	w.RemoveClient(id)
	if name != "" {
		msg := wire.ChatOfType(wire.Leave, wire.Info, "", name+" left the game")
		msg.Text = formatClientID(id)
		w.broadcast(msg, nil)
	}
	return name, true
}

func formatClientID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// ClientCount returns the number of connected clients, used by Hub's
// ListWorlds. Must run inside Exec.
func (w *World) ClientCount() int {
	return len(w.clients)
}

// namedClients returns the ids of every client that has completed its
// handshake, used by the tick loops. Must run inside Exec.
func (w *World) namedClients() []uint64 {
	out := make([]uint64, 0, len(w.clients))
	for id, c := range w.clients {
		if c.Joined() {
			out = append(out, id)
		}
	}
	return out
}

// --- broadcast ----------------------------------------------------------

// broadcast sends msg to every client not in exclude, then evicts any
// client whose sink reported failure. The client table is snapshotted
// before sending so a reentrant handler (triggered by a fast transport's
// send) never observes a table locked for writing. Must run inside Exec.
func (w *World) broadcast(msg wire.Message, exclude map[uint64]struct{}) {
	type target struct {
		id   uint64
		sink Sink
	}
	targets := make([]target, 0, len(w.clients))
	for id, c := range w.clients {
		if _, skip := exclude[id]; skip {
			continue
		}
		targets = append(targets, target{id: id, sink: c.Sink})
	}

	var dead []uint64
	for _, t := range targets {
		if err := t.sink.Send(msg); err != nil {
			dead = append(dead, t.id)
		}
	}
	for _, id := range dead {
		w.RemoveClient(id)
	}
}

// send delivers msg to a single client's sink, evicting it on failure.
// Must run inside Exec.
func (w *World) send(id uint64, msg wire.Message) {
	c, ok := w.clients[id]
	if !ok {
		return
	}
	if err := c.Sink.Send(msg); err != nil {
		w.RemoveClient(id)
	}
}
