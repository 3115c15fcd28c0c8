package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"salescrm_backend/internal/events"
	"salescrm_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// OpKind identifies a write-behind operation.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// Op is one queued remote persistence operation. Creates carry the full
// entity snapshot; updates carry only the changed fields.
type Op[T Entity] struct {
	Kind   OpKind
	ID     uuid.UUID
	Entity T
	Patch  map[string]any
}

// Persister is the remote authoritative store boundary for one entity type.
// Update and Delete on unknown ids must succeed (idempotent no-op).
type Persister[T Entity] interface {
	Create(ctx context.Context, entity T) error
	Update(ctx context.Context, id uuid.UUID, patch map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListAll(ctx context.Context) ([]T, error)
}

// Options tunes a write-behind queue.
type Options struct {
	// MaxAttempts bounds retries per op before the op is dropped and a
	// RemoteSyncFailed event is published.
	MaxAttempts int
	// BaseBackoff scales the quadratic retry delay (attempt² × base).
	BaseBackoff time.Duration
	// RatePerSecond paces the drain so a burst of optimistic mutations does
	// not stampede the remote store. Zero means unpaced.
	RatePerSecond float64
}

// WriteBehind drains queued ops to the remote store in FIFO order on a
// single goroutine. Enqueue never blocks; callers return before any network
// I/O happens. A failed op is retried with backoff; once retries are
// exhausted the op is dropped, logged, and reported. The local cache keeps
// the mutation either way.
type WriteBehind[T Entity] struct {
	entityType  string
	persister   Persister[T]
	bus         events.Bus
	log         *logger.Logger
	limiter     *rate.Limiter
	maxAttempts int
	baseBackoff time.Duration

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Op[T]
	closed bool
	done   chan struct{}
}

// NewWriteBehind creates a queue for one entity type. Call Start to begin
// draining and Close to flush and stop.
func NewWriteBehind[T Entity](entityType string, persister Persister[T], bus events.Bus, log *logger.Logger, opts Options) *WriteBehind[T] {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 5
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = 500 * time.Millisecond
	}

	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}

	w := &WriteBehind[T]{
		entityType:  entityType,
		persister:   persister,
		bus:         bus,
		log:         log,
		limiter:     limiter,
		maxAttempts: opts.MaxAttempts,
		baseBackoff: opts.BaseBackoff,
		done:        make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// Start launches the drain goroutine. The context cancels in-flight waits on
// shutdown; already-dispatched ops are finished best-effort.
func (w *WriteBehind[T]) Start(ctx context.Context) {
	go w.drain(ctx)
}

// errQueueClosed marks ops that arrive after Close; they will never reach
// the remote store.
var errQueueClosed = errors.New("write-behind queue closed")

// Enqueue appends an op. It never blocks and never fails; the queue is
// unbounded so an optimistic mutation can always be recorded. An op arriving
// after Close cannot be persisted anymore and is reported like an exhausted
// retry.
func (w *WriteBehind[T]) Enqueue(op Op[T]) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.log.RemoteSyncError(w.entityType, op.ID.String(), 0, errQueueClosed)
		w.report(op, errQueueClosed)
		return
	}
	w.queue = append(w.queue, op)
	w.mu.Unlock()
	w.cond.Signal()
}

// Pending returns the number of queued, not-yet-persisted ops.
func (w *WriteBehind[T]) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// Close stops accepting ops, lets the drain loop flush what is queued, and
// waits for it to exit.
func (w *WriteBehind[T]) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.cond.Broadcast()
	<-w.done
}

func (w *WriteBehind[T]) drain(ctx context.Context) {
	defer close(w.done)

	for {
		w.mu.Lock()
		for len(w.queue) == 0 && !w.closed {
			w.cond.Wait()
		}
		if len(w.queue) == 0 && w.closed {
			w.mu.Unlock()
			return
		}
		op := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()

		w.flush(ctx, op)
	}
}

func (w *WriteBehind[T]) flush(ctx context.Context, op Op[T]) {
	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			w.report(op, err)
			return
		}
	}

	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		if err := w.apply(ctx, op); err == nil {
			return
		} else {
			lastErr = err
			w.log.RemoteSyncError(w.entityType, op.ID.String(), attempt, err)
		}

		if attempt < w.maxAttempts {
			delay := time.Duration(attempt*attempt) * w.baseBackoff
			select {
			case <-ctx.Done():
				w.report(op, ctx.Err())
				return
			case <-time.After(delay):
			}
		}
	}

	w.report(op, lastErr)
}

func (w *WriteBehind[T]) apply(ctx context.Context, op Op[T]) error {
	switch op.Kind {
	case OpCreate:
		return w.persister.Create(ctx, op.Entity)
	case OpUpdate:
		return w.persister.Update(ctx, op.ID, op.Patch)
	case OpDelete:
		return w.persister.Delete(ctx, op.ID)
	}
	return nil
}

// report surfaces a permanently failed op. The cache is left as-is; a full
// reconciliation pass is the only repair path.
func (w *WriteBehind[T]) report(op Op[T], err error) {
	if w.bus == nil || err == nil {
		return
	}
	w.bus.Publish(context.Background(), events.RemoteSyncFailed{
		BaseEvent:  events.NewBaseEvent(),
		EntityType: w.entityType,
		EntityID:   op.ID,
		Op:         string(op.Kind),
		Reason:     err.Error(),
	})
}
