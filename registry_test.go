package refreshcache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// Scaled-down versions of spec.md's literal timings (1000ms startup delay,
// 2s/5s/10s/50s/100s windows) so the suite runs in well under a second
// instead of minutes; refresh stays strictly below ttl in every scenario.
const testStartupDelay = 5 * time.Millisecond

func newTestRegistry[V any](t *testing.T) *Registry[string, V] {
	t.Helper()
	r := NewRegistry[string, V](WithStartupDelay[string, V](testStartupDelay))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = r.Close(ctx)
	})
	return r
}

// Scenario 1: happy path.
func TestRegistry_HappyPath(t *testing.T) {
	r := newTestRegistry[int](t)
	if err := r.RegisterFunction("one_plus_one", func() (int, error) { return 2, nil }, 10*time.Millisecond, 100*time.Millisecond); err != nil {
		t.Fatalf("RegisterFunction: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	value, err := r.Get(ctx, "one_plus_one", 5*time.Second)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if value != 2 {
		t.Fatalf("got %d, want 2", value)
	}
}

// Scenario 2: a function that always fails never populates the Store, and
// Get eventually times out while the Worker keeps retrying.
func TestRegistry_FailingFunctionTimesOut(t *testing.T) {
	r := newTestRegistry[int](t)
	wantErr := errors.New("boom")
	if err := r.RegisterFunction("two_plus_two", func() (int, error) { return 0, wantErr }, 5*time.Millisecond, 50*time.Millisecond); err != nil {
		t.Fatalf("RegisterFunction: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := r.Get(ctx, "two_plus_two", 50*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}

	stats, ok := r.Stats("two_plus_two")
	if !ok {
		t.Fatalf("expected stats for two_plus_two")
	}
	if stats.RefreshFailureCount == 0 {
		t.Fatalf("expected at least one recorded refresh failure")
	}
}

// Scenario 3: Get awaits the in-flight computation when the Store entry
// was deleted out from under the Worker. Rather than inventing an
// unspecified "run now" API, this relies on a short refresh interval to
// naturally produce a new computation after the external delete.
func TestRegistry_AwaitsInFlightComputationAfterExternalDelete(t *testing.T) {
	store := NewMemoryStore[string, int]()
	r := NewRegistry[string, int](WithStore[string, int](store), WithStartupDelay[string, int](testStartupDelay))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = r.Close(ctx)
	}()

	if err := r.RegisterFunction("three_plus_three", func() (int, error) { return 6, nil }, 10*time.Millisecond, 100*time.Millisecond); err != nil {
		t.Fatalf("RegisterFunction: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := store.Get("three_plus_three"); !ok {
		t.Fatalf("expected a stored value before the external delete")
	}

	store.Delete("three_plus_three")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	value, err := r.Get(ctx, "three_plus_three", 500*time.Millisecond)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if value != 6 {
		t.Fatalf("got %d, want 6", value)
	}
}

// Scenario 4: an unregistered key returns ErrNotRegistered immediately.
func TestRegistry_NotRegistered(t *testing.T) {
	r := newTestRegistry[int](t)

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := r.Get(ctx, "never_seen", time.Second)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("got %v, want ErrNotRegistered", err)
	}
	if elapsed > 50*time.Millisecond {
		t.Fatalf("expected an immediate return, took %s", elapsed)
	}
}

// Scenario 5: duplicate registration is rejected, and the first Worker
// keeps running.
func TestRegistry_DuplicateRegistration(t *testing.T) {
	r := newTestRegistry[int](t)

	if err := r.RegisterFunction("dup", func() (int, error) { return 1, nil }, 10*time.Millisecond, 100*time.Millisecond); err != nil {
		t.Fatalf("first RegisterFunction: %v", err)
	}
	err := r.RegisterFunction("dup", func() (int, error) { return 2, nil }, 10*time.Millisecond, 100*time.Millisecond)
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("got %v, want ErrAlreadyRegistered", err)
	}

	time.Sleep(20 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	value, err := r.Get(ctx, "dup", time.Second)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if value != 1 {
		t.Fatalf("got %d, want 1 (the first Worker's function)", value)
	}
}

// Scenario 6: successive refreshes replace the stored value, and a reader
// never observes absence once the first success has landed.
func TestRegistry_RefreshReplacesValue(t *testing.T) {
	r := newTestRegistry[int](t)
	var counter atomic.Int64
	fn := func() (int, error) {
		return int(counter.Add(1)), nil
	}
	if err := r.RegisterFunction("counter", fn, 5*time.Millisecond, 50*time.Millisecond); err != nil {
		t.Fatalf("RegisterFunction: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	last := -1
	seenAbsence := false
	for i := 0; i < 10; i++ {
		value, err := r.Get(ctx, "counter", 200*time.Millisecond)
		if errors.Is(err, ErrNotRegistered) {
			t.Fatalf("unexpected ErrNotRegistered")
		}
		if err != nil {
			seenAbsence = true
		} else if value < last {
			t.Fatalf("value went backwards: %d after %d", value, last)
		} else {
			last = value
		}
		time.Sleep(5 * time.Millisecond)
	}
	if seenAbsence {
		t.Fatalf("observed absence after the first success")
	}
	if last < 1 {
		t.Fatalf("never observed a stored value")
	}
}

func TestRegistry_RegisterFunctionRejectsBadContract(t *testing.T) {
	r := newTestRegistry[int](t)
	fn := func() (int, error) { return 1, nil }

	cases := []struct {
		name            string
		refreshInterval time.Duration
		ttl             time.Duration
	}{
		{"zero ttl", 10 * time.Millisecond, 0},
		{"zero refresh", 0, 10 * time.Millisecond},
		{"refresh equals ttl", 10 * time.Millisecond, 10 * time.Millisecond},
		{"refresh exceeds ttl", 20 * time.Millisecond, 10 * time.Millisecond},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected a panic for %s", tc.name)
				}
			}()
			_ = r.RegisterFunction(tc.name, fn, tc.refreshInterval, tc.ttl)
		})
	}
}

// A Store entry can outlive its Worker (e.g. a Store shared across
// Registry instances via WithStore); RegisterFunction must treat that as
// already_registered too, not just a live Worker.
func TestRegistry_RegisterFunctionRejectsPreExistingStoreEntry(t *testing.T) {
	store := NewMemoryStore[string, int]()
	store.Put("seeded", 42)

	r := NewRegistry[string, int](WithStore[string, int](store), WithStartupDelay[string, int](testStartupDelay))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = r.Close(ctx)
	})

	err := r.RegisterFunction("seeded", func() (int, error) { return 1, nil }, 10*time.Millisecond, 100*time.Millisecond)
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("got %v, want ErrAlreadyRegistered", err)
	}
}

func TestRegistry_Close(t *testing.T) {
	r := NewRegistry[string, int](WithStartupDelay[string, int](testStartupDelay))
	if err := r.RegisterFunction("k", func() (int, error) { return 1, nil }, 10*time.Millisecond, 100*time.Millisecond); err != nil {
		t.Fatalf("RegisterFunction: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := r.RegisterFunction("k2", func() (int, error) { return 1, nil }, 10*time.Millisecond, 100*time.Millisecond); !errors.Is(err, ErrClosed) {
		t.Fatalf("got %v, want ErrClosed", err)
	}
	if _, err := r.Get(ctx, "k", time.Second); !errors.Is(err, ErrClosed) {
		t.Fatalf("got %v, want ErrClosed", err)
	}
}
