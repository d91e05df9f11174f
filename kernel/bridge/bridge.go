package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// TimeoutMessage is the outcome error reported when the host executor does
// not complete a task before the submit timeout elapses.
const TimeoutMessage = "timeout waiting for host execution"

// DefaultSubmitTimeout bounds how long Submit blocks on the host executor.
const DefaultSubmitTimeout = 30 * time.Second

// Handler is one host-side operation. It is only ever invoked on the
// executor goroutine, so it may touch host-owned state without locking.
type Handler func(payload map[string]any) (map[string]any, error)

// Config configures Bridge.
type Config struct {
	// SubmitTimeout bounds Submit. Zero means DefaultSubmitTimeout.
	SubmitTimeout time.Duration
	// Logger receives executor diagnostics. Nil means slog.Default().
	Logger *slog.Logger
	// OnDiscardedResult observes results completed after their submitter
	// already timed out and gave up. Optional.
	OnDiscardedResult func(taskID string)
}

type task struct {
	id      string
	handler Handler
	payload map[string]any
	done    chan struct{}
	outcome Outcome
}

// Bridge hands tasks from any number of submitter goroutines to the single
// host executor goroutine and routes each outcome back to its submitter.
type Bridge struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]*task
	queue   []*task
	started bool
	stopped bool

	notify chan struct{}
	quit   chan struct{}
	exited chan struct{}

	discarded atomic.Uint64
}

// New returns a bridge that is not yet running. Call Start before Submit.
func New(cfg Config) *Bridge {
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = DefaultSubmitTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		cfg:     cfg,
		logger:  logger,
		pending: map[string]*task{},
		notify:  make(chan struct{}, 1),
		quit:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
}

// Start launches the host executor goroutine.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return fmt.Errorf("bridge: already stopped")
	}
	if b.started {
		return fmt.Errorf("bridge: already started")
	}
	b.started = true
	go b.run()
	return nil
}

// Stop shuts the executor down and fails every task still pending.
// It blocks until the executor goroutine has exited.
func (b *Bridge) Stop() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	started := b.started
	b.mu.Unlock()

	close(b.quit)
	if started {
		<-b.exited
	}
	b.failAllPending("bridge stopped")
}

// DiscardedResults reports how many late executor completions were dropped
// because their submitter had already timed out.
func (b *Bridge) DiscardedResults() uint64 {
	return b.discarded.Load()
}

// Submit queues one handler invocation for the host executor and blocks
// until its outcome arrives, the submit timeout elapses, or ctx is done.
// It is safe for concurrent use.
func (b *Bridge) Submit(ctx context.Context, handler Handler, payload map[string]any) Outcome {
	if handler == nil {
		return Failed("bridge: handler is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	t := &task{
		id:      uuid.NewString(),
		handler: handler,
		payload: payload,
		done:    make(chan struct{}),
	}

	b.mu.Lock()
	if b.stopped || !b.started {
		b.mu.Unlock()
		return Failed("bridge is not running")
	}
	b.pending[t.id] = t
	b.queue = append(b.queue, t)
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}

	timer := time.NewTimer(b.cfg.SubmitTimeout)
	defer timer.Stop()

	select {
	case <-t.done:
		return t.outcome
	case <-ctx.Done():
		return b.abandon(t, fmt.Sprintf("submit canceled: %v", ctx.Err()))
	case <-timer.C:
		return b.abandon(t, TimeoutMessage)
	}
}

// abandon withdraws a task the submitter no longer waits for. When the
// executor already committed to completing it, the outcome is taken anyway
// so results are never lost to the withdrawal race.
func (b *Bridge) abandon(t *task, message string) Outcome {
	b.mu.Lock()
	if _, ok := b.pending[t.id]; ok {
		delete(b.pending, t.id)
		b.mu.Unlock()
		return Failed(message)
	}
	b.mu.Unlock()
	<-t.done
	return t.outcome
}

func (b *Bridge) run() {
	defer close(b.exited)
	for {
		select {
		case <-b.quit:
			return
		case <-b.notify:
			b.drain()
		}
	}
}

// drain executes every queued task in FIFO order before going back to idle.
// A notification with an empty queue is a no-op, never a fault.
func (b *Bridge) drain() {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("bridge: executor drain panicked", "panic", r)
		}
	}()
	for {
		b.mu.Lock()
		batch := b.queue
		b.queue = nil
		b.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		for i, t := range batch {
			select {
			case <-b.quit:
				// Hand unexecuted tasks back so Stop can fail them.
				b.mu.Lock()
				b.queue = append(batch[i:], b.queue...)
				b.mu.Unlock()
				return
			default:
			}
			b.complete(t.id, execute(t))
		}
	}
}

// execute runs one handler, converting error returns and panics into
// failure outcomes. A handler can never take the executor goroutine down.
func execute(t *task) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = FailedTrace(fmt.Sprintf("handler panic: %v", r), string(debug.Stack()))
		}
	}()
	result, err := t.handler(t.payload)
	if err != nil {
		return Failed(err.Error())
	}
	return Ok(result)
}

// complete writes an outcome into the pending task and wakes its submitter.
// When the submitter already gave up the write is discarded idempotently.
func (b *Bridge) complete(id string, out Outcome) {
	b.mu.Lock()
	t, ok := b.pending[id]
	if !ok {
		b.mu.Unlock()
		b.discarded.Add(1)
		if b.cfg.OnDiscardedResult != nil {
			b.cfg.OnDiscardedResult(id)
		}
		b.logger.Debug("bridge: discarded late result", "task_id", id)
		return
	}
	delete(b.pending, id)
	b.mu.Unlock()

	t.outcome = out
	close(t.done)
}

func (b *Bridge) failAllPending(message string) {
	b.mu.Lock()
	orphans := make([]*task, 0, len(b.pending))
	for id, t := range b.pending {
		orphans = append(orphans, t)
		delete(b.pending, id)
	}
	b.queue = nil
	b.mu.Unlock()
	for _, t := range orphans {
		t.outcome = Failed(message)
		close(t.done)
	}
}

// queueLen reports the number of tasks awaiting a drain. Test hook.
func (b *Bridge) queueLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}
