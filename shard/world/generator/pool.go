package generator

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bramblecraft/shard/world/chunk"
)

// Job is a single chunk-generation request submitted to a Pool.
type Job struct {
	Pos chunk.Pos
	C   *chunk.Chunk
}

// Result is a completed generation job, delivered back to the World tick
// loop so it can clear NeedsPropagation-equivalent bookkeeping and mark
// the chunk ready.
type Result struct {
	Pos chunk.Pos
	C   *chunk.Chunk
}

// Pool is a bounded worker pool that generates chunks asynchronously so a
// slow generator never stalls the world tick. Its results reenter through
// the same Results channel the world tick drains, rather than mutating
// chunk state directly from a worker goroutine.
type Pool struct {
	gen   Generator
	ids   BlockIDs
	jobs  chan Job
	done  chan Result
	group *errgroup.Group
	ctx   context.Context
	stop  context.CancelFunc

	mu      sync.Mutex
	pending map[chunk.Pos]struct{}

	saturated uint64
}

// NewPool starts a Pool with the given worker count and queue capacity.
func NewPool(gen Generator, ids BlockIDs, workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers * 32
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		gen:     gen,
		ids:     ids,
		jobs:    make(chan Job, queueSize),
		done:    make(chan Result, queueSize),
		ctx:     ctx,
		stop:    cancel,
		pending: make(map[chunk.Pos]struct{}),
	}
	g, gctx := errgroup.WithContext(ctx)
	p.group = g
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			p.worker(gctx)
			return nil
		})
	}
	return p
}

func (p *Pool) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.gen.Generate(job.C, p.ids)
			select {
			case p.done <- Result{Pos: job.Pos, C: job.C}:
			case <-ctx.Done():
				return
			}
			p.mu.Lock()
			delete(p.pending, job.Pos)
			p.mu.Unlock()
		}
	}
}

// Submit enqueues a chunk for asynchronous generation. It is a no-op if
// the chunk is already pending. It reports whether the queue accepted the
// job; when it did not (the queue is saturated), the caller should retry
// on a later tick.
func (p *Pool) Submit(j Job) bool {
	p.mu.Lock()
	if _, ok := p.pending[j.Pos]; ok {
		p.mu.Unlock()
		return false
	}
	p.pending[j.Pos] = struct{}{}
	p.mu.Unlock()

	select {
	case p.jobs <- j:
		return true
	default:
		p.mu.Lock()
		delete(p.pending, j.Pos)
		p.saturated++
		p.mu.Unlock()
		return false
	}
}

// Saturated returns how many Submit calls found the queue full.
func (p *Pool) Saturated() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saturated
}

// Results returns the channel of completed generation jobs.
func (p *Pool) Results() <-chan Result {
	return p.done
}

// Close stops all workers and waits for them to exit.
func (p *Pool) Close() {
	p.stop()
	_ = p.group.Wait()
}
