package cachetest

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cachewell/refreshcache"
)

// Options configures RunScenarios' timings. Defaults are scaled down from
// spec.md §8's literal millisecond values (1000ms startup delay; 2s, 5s,
// 10s, 50s, 100s windows) by roughly three orders of magnitude, keeping
// startup delay < refresh < ttl, so the suite runs in well under a second.
type Options struct {
	StartupDelay time.Duration
	Refresh      time.Duration
	TTL          time.Duration
	Settle       time.Duration
}

func (o Options) withDefaults() Options {
	if o.StartupDelay <= 0 {
		o.StartupDelay = 5 * time.Millisecond
	}
	if o.Refresh <= 0 {
		o.Refresh = 10 * time.Millisecond
	}
	if o.TTL <= 0 {
		o.TTL = 100 * time.Millisecond
	}
	if o.Settle <= 0 {
		o.Settle = 20 * time.Millisecond
	}
	return o
}

// RunScenarios runs five of spec.md §8's six literal end-to-end scenarios
// (all but the await-after-external-delete one, which it does not run)
// against a fresh Registry[string, int] built by newRegistry for each one, so a
// Store backend swapped in behind newRegistry gets the same assertions the
// in-process default does. newRegistry's Registry must have been
// constructed with refreshcache.WithStartupDelay(opts.StartupDelay) for the
// timings below to line up.
func RunScenarios(t *testing.T, opts Options, newRegistry func() *refreshcache.Registry[string, int]) {
	t.Helper()
	opts = opts.withDefaults()

	t.Run("happy_path", func(t *testing.T) { happyPath(t, opts, newRegistry) })
	t.Run("failing_function_never_populates", func(t *testing.T) { failingFunctionNeverPopulates(t, opts, newRegistry) })
	t.Run("not_registered", func(t *testing.T) { notRegistered(t, opts, newRegistry) })
	t.Run("duplicate_registration", func(t *testing.T) { duplicateRegistration(t, opts, newRegistry) })
	t.Run("refresh_replaces_value", func(t *testing.T) { refreshReplacesValue(t, opts, newRegistry) })
}

func closeRegistry(t *testing.T, r *refreshcache.Registry[string, int]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Close(ctx); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func happyPath(t *testing.T, opts Options, newRegistry func() *refreshcache.Registry[string, int]) {
	r := newRegistry()
	defer closeRegistry(t, r)

	if err := r.RegisterFunction("one_plus_one", func() (int, error) { return 2, nil }, opts.Refresh, opts.TTL); err != nil {
		t.Fatalf("RegisterFunction: %v", err)
	}
	time.Sleep(2 * opts.Settle)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	value, err := r.Get(ctx, "one_plus_one", time.Second)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if value != 2 {
		t.Fatalf("got %d, want 2", value)
	}
}

func failingFunctionNeverPopulates(t *testing.T, opts Options, newRegistry func() *refreshcache.Registry[string, int]) {
	r := newRegistry()
	defer closeRegistry(t, r)

	if err := r.RegisterFunction("two_plus_two", func() (int, error) { return 0, errors.New("reason") }, opts.Refresh, opts.TTL); err != nil {
		t.Fatalf("RegisterFunction: %v", err)
	}
	time.Sleep(2 * opts.Settle)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := r.Get(ctx, "two_plus_two", opts.Settle); !errors.Is(err, refreshcache.ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}
}

func notRegistered(t *testing.T, opts Options, newRegistry func() *refreshcache.Registry[string, int]) {
	r := newRegistry()
	defer closeRegistry(t, r)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	start := time.Now()
	if _, err := r.Get(ctx, "never_seen", time.Second); !errors.Is(err, refreshcache.ErrNotRegistered) {
		t.Fatalf("got %v, want ErrNotRegistered", err)
	}
	if elapsed := time.Since(start); elapsed > opts.Settle {
		t.Fatalf("expected an immediate return, took %s", elapsed)
	}
}

func duplicateRegistration(t *testing.T, opts Options, newRegistry func() *refreshcache.Registry[string, int]) {
	r := newRegistry()
	defer closeRegistry(t, r)

	if err := r.RegisterFunction("dup", func() (int, error) { return 1, nil }, opts.Refresh, opts.TTL); err != nil {
		t.Fatalf("first RegisterFunction: %v", err)
	}
	if err := r.RegisterFunction("dup", func() (int, error) { return 2, nil }, opts.Refresh, opts.TTL); !errors.Is(err, refreshcache.ErrAlreadyRegistered) {
		t.Fatalf("got %v, want ErrAlreadyRegistered", err)
	}

	time.Sleep(2 * opts.Settle)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	value, err := r.Get(ctx, "dup", time.Second)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if value != 1 {
		t.Fatalf("got %d, want 1 (the first Worker persists)", value)
	}
}

func refreshReplacesValue(t *testing.T, opts Options, newRegistry func() *refreshcache.Registry[string, int]) {
	r := newRegistry()
	defer closeRegistry(t, r)

	var counter atomic.Int64
	fn := func() (int, error) { return int(counter.Add(1)), nil }
	if err := r.RegisterFunction("counter", fn, opts.Refresh, opts.TTL); err != nil {
		t.Fatalf("RegisterFunction: %v", err)
	}
	time.Sleep(2 * opts.Settle)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	last := -1
	for i := 0; i < 8; i++ {
		value, err := r.Get(ctx, "counter", opts.TTL)
		if err != nil {
			t.Fatalf("Get observed absence after the first success: %v", err)
		}
		if value < last {
			t.Fatalf("value went backwards: %d after %d", value, last)
		}
		last = value
		time.Sleep(opts.Refresh)
	}
}
