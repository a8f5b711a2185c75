// Command shard runs the voxel multiplayer Hub: it loads shard.toml,
// metadata/worlds.json and metadata/blocks.json from the working
// directory, starts every configured World, accepts TCP sessions framed
// per the wire package, and serves an admin console on stdin.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pelletier/go-toml"

	"github.com/bramblecraft/shard"
	"github.com/bramblecraft/shard/console"
	"github.com/bramblecraft/shard/metadata"
	"github.com/bramblecraft/shard/transport"
	"github.com/bramblecraft/shard/wire"
	"github.com/bramblecraft/shard/world"
)

const (
	configPath    = "shard.toml"
	worldsPath    = "metadata/worlds.json"
	blocksPath    = "metadata/blocks.json"
	defaultAddr   = ":19132"
	defaultRadius = 6
)

// userConfig is the on-disk process configuration: the file holds plain
// values, run resolves them into the typed shard.Config the Hub needs.
type userConfig struct {
	Network struct {
		Address string
	}
	Generation struct {
		Workers   int
		QueueSize int `toml:"queue_size"`
	}
	Tick struct {
		WorldMS    int `toml:"world_ms"`
		ChunkingMS int `toml:"chunking_ms"`
	}
}

func defaultUserConfig() userConfig {
	var uc userConfig
	uc.Network.Address = defaultAddr
	uc.Generation.Workers = 4
	uc.Generation.QueueSize = 64
	uc.Tick.WorldMS = 16
	uc.Tick.ChunkingMS = 18
	return uc
}

func readUserConfig(path string) (userConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		uc := defaultUserConfig()
		out, mErr := toml.Marshal(uc)
		if mErr != nil {
			return uc, fmt.Errorf("marshal default config: %w", mErr)
		}
		if wErr := os.WriteFile(path, out, 0644); wErr != nil {
			return uc, fmt.Errorf("write default config: %w", wErr)
		}
		return uc, nil
	}
	if err != nil {
		return userConfig{}, fmt.Errorf("read %s: %w", path, err)
	}
	uc := defaultUserConfig()
	if err := toml.Unmarshal(data, &uc); err != nil {
		return userConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return uc, nil
}

func main() {
	log := slog.Default()
	if err := run(log); err != nil {
		log.Error("shard exited", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	uc, err := readUserConfig(configPath)
	if err != nil {
		return err
	}

	blocksFile, err := os.Open(blocksPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", blocksPath, err)
	}
	defer blocksFile.Close()
	reg, err := metadata.LoadBlocks(blocksFile)
	if err != nil {
		return fmt.Errorf("load blocks: %w", err)
	}

	worldsFile, err := os.Open(worldsPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", worldsPath, err)
	}
	defer worldsFile.Close()
	entries, err := metadata.LoadWorlds(worldsFile)
	if err != nil {
		return fmt.Errorf("load worlds: %w", err)
	}

	hub, err := shard.Config{
		Log:                log,
		Registry:           reg,
		Worlds:             entries,
		GeneratorWorkers:   uc.Generation.Workers,
		GeneratorQueueSize: uc.Generation.QueueSize,
		WorldTick:          time.Duration(uc.Tick.WorldMS) * time.Millisecond,
		ChunkingTick:       time.Duration(uc.Tick.ChunkingMS) * time.Millisecond,
	}.New()
	if err != nil {
		return fmt.Errorf("start hub: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", uc.Network.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", uc.Network.Address, err)
	}
	log.Info("listening", "addr", uc.Network.Address)

	go acceptLoop(ctx, ln, hub, log, entries)
	go console.New(hub, log).Run(ctx)

	<-ctx.Done()
	log.Info("shutting down")
	_ = ln.Close()
	hub.Stop()
	return nil
}

func acceptLoop(ctx context.Context, ln net.Listener, hub *shard.Hub, log *slog.Logger, entries []metadata.WorldEntry) {
	defaultWorld := ""
	if len(entries) > 0 {
		defaultWorld = entries[0].Meta.Name
	}
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				log.Error("accept", "err", err)
				continue
			}
		}
		go handleConn(ctx, conn, hub, log, defaultWorld)
	}
}

func handleConn(ctx context.Context, conn net.Conn, hub *shard.Hub, log *slog.Logger, worldName string) {
	sess := transport.NewSession(conn)
	defer sess.Close()

	result, err := hub.Join(worldName, sess, defaultRadius)
	if err != nil {
		log.Error("join failed", "err", err, "remote", sess.RemoteAddr(), "session", sess.ID)
		return
	}
	log.Info("session joined", "session", sess.ID, "client", result.ID, "world", worldName)
	defer hub.Leave(worldName, result.ID)

	init := wire.Message{
		Type: wire.Init,
		Text: fmt.Sprintf("%d", result.ID),
	}
	if err := sess.Send(init); err != nil {
		log.Error("send init", "err", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		msg, err := sess.Receive()
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.Is(err, wire.ErrChecksumMismatch) || errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			log.Debug("dropped malformed frame", "err", err, "session", sess.ID)
			continue
		}
		if err != nil {
			return
		}
		hub.PlayerMessage(worldName, result.ID, msg)
	}
}

var _ world.Sink = (*transport.Session)(nil)
