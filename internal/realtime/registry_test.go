package realtime

import (
	"sync"
	"testing"
)

func TestRegistry_ConcurrentRegisterUnregister(t *testing.T) {
	t.Parallel()

	const n = 64
	const m = 32

	reg := NewRegistry(nil, nil)

	idsCh := make(chan string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idsCh <- reg.Register(NewClient(4))
		}()
	}
	wg.Wait()
	close(idsCh)

	if got := reg.Len(); got != n {
		t.Fatalf("expected %d registered, got %d", n, got)
	}

	all := make([]string, 0, n)
	for id := range idsCh {
		if id == "" {
			t.Fatalf("empty connection id")
		}
		all = append(all, id)
	}

	for i := 0; i < m; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			reg.Unregister(id)
		}(all[i])
	}
	wg.Wait()

	if got := reg.Len(); got != n-m {
		t.Fatalf("expected %d live after %d unregisters, got %d", n-m, m, got)
	}
}

func TestRegistry_UnregisterIdempotent(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil, nil)
	id := reg.Register(NewClient(4))

	reg.Unregister(id)
	reg.Unregister(id)       // already gone: no-op
	reg.Unregister("absent") // never registered: no-op

	if got := reg.Len(); got != 0 {
		t.Fatalf("expected empty registry, got %d", got)
	}
}

func TestRegistry_SnapshotHasNoDuplicates(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil, nil)

	c := NewClient(4)
	id := reg.Register(c)
	// Re-registering the same client must not create a second entry.
	if again := reg.Register(c); again != id {
		t.Fatalf("expected stable id on re-register, got %q vs %q", again, id)
	}

	reg.Register(NewClient(4))

	snap := reg.Snapshot()
	seen := make(map[string]bool, len(snap))
	for _, cl := range snap {
		if seen[cl.ID] {
			t.Fatalf("duplicate connection %q in snapshot", cl.ID)
		}
		seen[cl.ID] = true
	}
	if len(snap) != 2 {
		t.Fatalf("expected 2 connections, got %d", len(snap))
	}
}

func TestRegistry_UnregisterClosesClient(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil, nil)
	c := NewClient(4)
	id := reg.Register(c)

	reg.Unregister(id)

	select {
	case <-c.Done():
	default:
		t.Fatalf("expected client to be closed after unregister")
	}
}
