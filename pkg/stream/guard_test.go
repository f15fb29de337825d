package stream

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/haivivi/tio/pkg/device"
)

func TestGuardedLock(t *testing.T) {
	g := NewGuarded(newContainerStream(t, ""))

	h := g.Lock()
	if _, ok := g.TryLock(); ok {
		t.Fatal("TryLock succeeded while locked")
	}
	h.Unlock()
	h.Unlock()

	h2, ok := g.TryLock()
	if !ok {
		t.Fatal("TryLock failed after Unlock")
	}
	if _, ok := g.TryLock(); ok {
		t.Fatal("double Unlock released the lock twice")
	}
	h2.Unlock()
}

func TestGuardedLockTimeout(t *testing.T) {
	g := NewGuarded(newContainerStream(t, ""))
	h := g.Lock()
	defer h.Unlock()

	start := time.Now()
	_, err := g.LockTimeout(20 * time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("LockTimeout error = %v, want %v", err, context.DeadlineExceeded)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("LockTimeout returned after %v", elapsed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.LockContext(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("LockContext error = %v, want %v", err, context.Canceled)
	}
}

func TestGuardedDo(t *testing.T) {
	g := NewGuarded(newContainerStream(t, "", WithBufferSize(16)))

	const writers, lines = 8, 50
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range lines {
				err := g.Do(context.Background(), func(s *Stream[*device.Container]) error {
					return Println(s, "{}", i)
				})
				if err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	h := g.Lock()
	defer h.Unlock()
	s := h.Stream()
	if err := FlushBuffer(s); err != nil {
		t.Fatal(err)
	}
	got := strings.Split(strings.TrimSuffix(string(s.Device().Bytes()), "\n"), "\n")
	if len(got) != writers*lines {
		t.Fatalf("got %d lines, want %d", len(got), writers*lines)
	}
	for _, line := range got {
		if len(line) != 1 {
			t.Fatalf("interleaved line %q", line)
		}
	}
}
