package smp

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultBarrierTimeout matches spec.md §5's configurable default.
const DefaultBarrierTimeout = 100 * time.Millisecond

// ErrBarrierTimeout is returned when not every participant acknowledges
// within the timeout; callers translate this into a fatal machine check.
type ErrBarrierTimeout struct {
	Acked, Required int
}

func (e *ErrBarrierTimeout) Error() string {
	return "smp: memory barrier timed out waiting for acknowledgements"
}

// BarrierCoordinator implements global MB semantics across CPUs: one
// in-flight barrier at a time, an atomic acknowledgement counter, and a
// bounded wait using errgroup for the rendezvous.
//
// The protocol is arm-then-broadcast: Initiate arms the barrier before the
// caller posts the MEMORY_BARRIER IPIs, so an acknowledgement can never
// race ahead of the counter reset, and Await blocks until every
// participant has answered.
type BarrierCoordinator struct {
	mu       sync.Mutex
	acked    atomic.Int64
	required atomic.Int64
	timeout  time.Duration
	waiters  chan struct{}
}

// NewBarrierCoordinator constructs a coordinator with the default timeout.
func NewBarrierCoordinator() *BarrierCoordinator {
	return &BarrierCoordinator{timeout: DefaultBarrierTimeout}
}

// Initiate arms a barrier requiring `participants` acknowledgements and
// reports whether there is anyone to wait for (spec.md §4.7: returns true
// if non-local CPUs exist; the caller then broadcasts MEMORY_BARRIER_FULL
// IPIs and calls Await). Only one barrier may be in flight at a time.
func (b *BarrierCoordinator) Initiate(participants int) bool {
	if participants <= 0 {
		return false
	}
	b.mu.Lock()
	b.acked.Store(0)
	b.required.Store(int64(participants))
	b.waiters = make(chan struct{})
	b.mu.Unlock()
	return true
}

// Await blocks until every participant of the armed barrier acknowledges,
// the timeout elapses, or ctx is cancelled.
func (b *BarrierCoordinator) Await(ctx context.Context) error {
	b.mu.Lock()
	waiters := b.waiters
	b.mu.Unlock()
	if waiters == nil {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-waiters:
			return nil
		case <-time.After(b.timeout):
			return &ErrBarrierTimeout{Acked: int(b.acked.Load()), Required: int(b.required.Load())}
		case <-gctx.Done():
			return gctx.Err()
		}
	})
	return g.Wait()
}

// Acknowledge is called by each recipient after draining its write buffer.
func (b *BarrierCoordinator) Acknowledge() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.waiters == nil {
		return
	}
	newCount := b.acked.Add(1)
	if newCount >= b.required.Load() {
		select {
		case <-b.waiters:
			// already closed
		default:
			close(b.waiters)
		}
	}
}
