package shard

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bramblecraft/shard/metadata"
	"github.com/bramblecraft/shard/wire"
	"github.com/bramblecraft/shard/world"
	"github.com/bramblecraft/shard/world/registry"
)

const hubTestBlocks = `[
	{"id": 0, "name": "Air", "isEmpty": true},
	{"id": 1, "name": "Stone", "isSolid": true}
]`

const hubTestWorlds = `{
	"default": {"chunk_size": 4, "max_height": 8, "generation": "flat"},
	"worlds": [{"name": "overworld"}]
}`

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	reg, err := registry.Load(strings.NewReader(hubTestBlocks))
	if err != nil {
		t.Fatalf("registry.Load: %v", err)
	}
	entries, err := metadata.LoadWorlds(strings.NewReader(hubTestWorlds))
	if err != nil {
		t.Fatalf("metadata.LoadWorlds: %v", err)
	}
	hub, err := Config{
		Registry:           reg,
		Worlds:             entries,
		GeneratorWorkers:   1,
		GeneratorQueueSize: 8,
		WorldTick:          5 * time.Millisecond,
		ChunkingTick:       5 * time.Millisecond,
	}.New()
	if err != nil {
		t.Fatalf("Config.New: %v", err)
	}
	t.Cleanup(hub.Stop)
	return hub
}

type recordingSink struct {
	mu       sync.Mutex
	received []wire.Message
}

func (s *recordingSink) Send(msg wire.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, msg)
	return nil
}

var _ world.Sink = (*recordingSink)(nil)

func TestJoinReturnsAssignedWorldState(t *testing.T) {
	hub := newTestHub(t)
	result, err := hub.Join("overworld", &recordingSink{}, 2)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if result.ID == 0 {
		t.Fatal("Join assigned a zero client id")
	}
}

func TestJoinUnknownWorldFails(t *testing.T) {
	hub := newTestHub(t)
	if _, err := hub.Join("nope", &recordingSink{}, 2); err != ErrUnknownWorld {
		t.Fatalf("Join(unknown) err = %v, want ErrUnknownWorld", err)
	}
}

func TestListWorldsReflectsJoinedPlayers(t *testing.T) {
	hub := newTestHub(t)
	if _, err := hub.Join("overworld", &recordingSink{}, 2); err != nil {
		t.Fatalf("Join: %v", err)
	}
	summaries := hub.ListWorlds()
	if len(summaries) != 1 || summaries[0].Name != "overworld" || summaries[0].Players != 1 {
		t.Fatalf("ListWorlds() = %+v, want one overworld entry with 1 player", summaries)
	}
}

func TestGetWorldReturnsConfigAndBlocks(t *testing.T) {
	hub := newTestHub(t)
	info, ok := hub.GetWorld("overworld")
	if !ok {
		t.Fatal("GetWorld(overworld) not found")
	}
	if info.Config.ChunkSize != 4 {
		t.Fatalf("info.Config.ChunkSize = %d, want 4", info.Config.ChunkSize)
	}
	if len(info.Blocks) != 2 {
		t.Fatalf("info.Blocks has %d entries, want 2", len(info.Blocks))
	}
}

func TestLeaveRemovesClientAndBroadcasts(t *testing.T) {
	hub := newTestHub(t)
	sink := &recordingSink{}
	result, err := hub.Join("overworld", sink, 2)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	hub.PlayerMessage("overworld", result.ID, wire.Message{
		Type:  wire.Peer,
		Peers: []wire.PeerEntry{{Name: "A"}},
	})

	other := &recordingSink{}
	otherResult, err := hub.Join("overworld", other, 2)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	hub.PlayerMessage("overworld", otherResult.ID, wire.Message{
		Type:  wire.Peer,
		Peers: []wire.PeerEntry{{Name: "B"}},
	})

	hub.Leave("overworld", result.ID)

	summaries := hub.ListWorlds()
	if len(summaries) != 1 || summaries[0].Players != 1 {
		t.Fatalf("ListWorlds() after Leave = %+v, want 1 remaining player", summaries)
	}

	foundLeave := false
	other.mu.Lock()
	for _, m := range other.received {
		if m.Type == wire.Leave {
			foundLeave = true
		}
	}
	other.mu.Unlock()
	if !foundLeave {
		t.Fatal("remaining client did not observe a Leave broadcast")
	}
}

func TestPlayerMessageUnknownWorldIsNoop(t *testing.T) {
	hub := newTestHub(t)
	hub.PlayerMessage("nope", 1, wire.Message{Type: wire.Chat})
}
