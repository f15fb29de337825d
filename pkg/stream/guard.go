package stream

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/haivivi/tio/pkg/device"
)

// Guarded serializes access to a stream shared between goroutines. The
// stream is reachable only through a Handle, which holds the lock until
// Unlock.
type Guarded[D device.Device] struct {
	sem *semaphore.Weighted
	s   *Stream[D]
}

// NewGuarded guards s. The caller must not use s directly afterwards.
func NewGuarded[D device.Device](s *Stream[D]) *Guarded[D] {
	return &Guarded[D]{sem: semaphore.NewWeighted(1), s: s}
}

// Handle is exclusive access to a guarded stream.
type Handle[D device.Device] struct {
	g        *Guarded[D]
	released atomic.Bool
}

// Stream returns the guarded stream. It must not be used after Unlock.
func (h *Handle[D]) Stream() *Stream[D] { return h.g.s }

// Unlock releases the lock. Calling it again has no effect.
func (h *Handle[D]) Unlock() {
	if h.released.CompareAndSwap(false, true) {
		h.g.sem.Release(1)
	}
}

// Lock waits for exclusive access.
func (g *Guarded[D]) Lock() *Handle[D] {
	// Acquire only fails when the context is done.
	_ = g.sem.Acquire(context.Background(), 1)
	return &Handle[D]{g: g}
}

// TryLock takes the lock if it is free.
func (g *Guarded[D]) TryLock() (*Handle[D], bool) {
	if !g.sem.TryAcquire(1) {
		return nil, false
	}
	return &Handle[D]{g: g}, true
}

// LockContext waits for exclusive access until ctx is done.
func (g *Guarded[D]) LockContext(ctx context.Context) (*Handle[D], error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("stream: lock: %w", err)
	}
	return &Handle[D]{g: g}, nil
}

// LockTimeout waits at most d for exclusive access. The timeout bounds only
// the wait, not the work done while holding the lock.
func (g *Guarded[D]) LockTimeout(d time.Duration) (*Handle[D], error) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return g.LockContext(ctx)
}

// Do runs fn with exclusive access to the stream.
func (g *Guarded[D]) Do(ctx context.Context, fn func(s *Stream[D]) error) error {
	h, err := g.LockContext(ctx)
	if err != nil {
		return err
	}
	defer h.Unlock()
	return fn(h.Stream())
}
