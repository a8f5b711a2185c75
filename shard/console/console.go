// Package console implements an interactive admin console over the Hub's
// small operator command surface: there is no in-game command registry to
// browse here, so completion is reduced to the fixed set of ops commands
// below rather than a general extensible command/target dispatcher.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"github.com/bramblecraft/shard"
)

const (
	defaultPromptPrefix = "> "
	maxHistoryEntries   = 128
)

// Console reads admin commands from an io.Reader (defaulting to os.Stdin)
// and executes them against a Hub.
type Console struct {
	hub     *shard.Hub
	log     *slog.Logger
	reader  io.Reader
	history []string
}

// New returns a Console bound to hub. The console reads from os.Stdin and
// writes command output to log.
func New(hub *shard.Hub, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{hub: hub, log: log, reader: os.Stdin}
}

// WithReader sets a custom reader for the console input, enabling tests
// without relying on os.Stdin.
func (c *Console) WithReader(r io.Reader) *Console {
	if r != nil {
		c.reader = r
	}
	return c
}

// Run consumes commands until ctx is cancelled or the underlying reader
// reaches EOF.
func (c *Console) Run(ctx context.Context) {
	if c.reader != os.Stdin {
		c.runScanner(ctx)
		return
	}
	c.runInteractive(ctx)
}

func (c *Console) runScanner(ctx context.Context) {
	scanner := bufio.NewScanner(c.reader)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				c.log.Error("console input error", "err", err)
			}
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.execute(line)
	}
}

func (c *Console) runInteractive(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		line := prompt.Input(defaultPromptPrefix, c.complete,
			prompt.OptionTitle("Shard Console"),
			prompt.OptionHistory(c.history),
			prompt.OptionPrefix(defaultPromptPrefix),
			prompt.OptionCompletionOnDown(),
			prompt.OptionMaxSuggestion(12),
		)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c.execute(line)
	}
}

func (c *Console) execute(line string) {
	c.history = append(c.history, line)
	if len(c.history) > maxHistoryEntries {
		c.history = c.history[len(c.history)-maxHistoryEntries:]
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	switch strings.ToLower(fields[0]) {
	case "worlds", "list":
		c.listWorlds()
	case "world":
		if len(fields) < 2 {
			c.log.Error("usage: world <name>")
			return
		}
		c.showWorld(fields[1])
	case "time":
		if len(fields) < 3 {
			c.log.Error("usage: time <world> <value>")
			return
		}
		c.showTimeUsage(fields[1], fields[2])
	case "stop":
		c.log.Info("stopping hub")
		c.hub.Stop()
	case "help":
		c.log.Info("commands: worlds, world <name>, time <world> <value>, stop")
	default:
		c.log.Error("unknown command", "command", fields[0])
	}
}

func (c *Console) listWorlds() {
	for _, w := range c.hub.ListWorlds() {
		c.log.Info(fmt.Sprintf("%s: %d players, %s generation, time=%.0f", w.Name, w.Players, w.Generation, w.Time))
	}
}

func (c *Console) showWorld(name string) {
	info, ok := c.hub.GetWorld(name)
	if !ok {
		c.log.Error("no such world", "world", name)
		return
	}
	c.log.Info(fmt.Sprintf("%s: chunk_size=%d max_height=%d render_radius=%d time=%.0f tick_speed=%.2f",
		info.Name, info.Config.ChunkSize, info.Config.MaxHeight, info.Config.RenderRadius, info.Time, info.TickSpeed))
}

// showTimeUsage reports the requested world's current time. Mutating a
// running clock from the console is intentionally not wired: OnConfig is
// the sole clock-mutation path so every client observes the same value via
// its rebroadcast.
func (c *Console) showTimeUsage(name, value string) {
	if _, err := strconv.ParseFloat(value, 32); err != nil {
		c.log.Error("time value must be numeric", "value", value)
		return
	}
	info, ok := c.hub.GetWorld(name)
	if !ok {
		c.log.Error("no such world", "world", name)
		return
	}
	c.log.Info("use a Config message to change world time; current value", "world", name, "time", info.Time)
}

func (c *Console) complete(doc prompt.Document) []prompt.Suggest {
	word := strings.TrimSpace(doc.GetWordBeforeCursor())
	commands := []prompt.Suggest{
		{Text: "worlds", Description: "list every world"},
		{Text: "world", Description: "world <name>: show one world's configuration"},
		{Text: "time", Description: "time <world> <value>: show the current clock value"},
		{Text: "stop", Description: "stop the hub"},
		{Text: "help", Description: "list commands"},
	}
	sort.Slice(commands, func(i, j int) bool { return commands[i].Text < commands[j].Text })
	return prompt.FilterHasPrefix(commands, word, true)
}
