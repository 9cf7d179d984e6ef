package refreshcache

import (
	"context"
	"sync"
	"time"
)

// Registry is the facade spec.md describes: RegisterFunction spawns a
// Worker for a key, Get reads that key's value. Those two methods are the
// entire public surface a caller needs; everything else in this package
// (Store, Worker, Observer, Stats) exists to implement them.
type Registry[K comparable, V any] struct {
	store        Store[K, V]
	observer     Observer[K]
	startupDelay time.Duration

	mu      sync.RWMutex
	workers map[K]*Worker[K, V]
	closed  bool
}

// NewRegistry constructs an empty Registry. By default it uses an
// in-process Store (NewMemoryStore) and DefaultStartupDelay; pass Options
// to override either.
func NewRegistry[K comparable, V any](opts ...Option[K, V]) *Registry[K, V] {
	cfg := &registryConfig[K, V]{
		startupDelay: DefaultStartupDelay,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.store == nil {
		cfg.store = NewMemoryStore[K, V]()
	}
	return &Registry[K, V]{
		store:        cfg.store,
		observer:     cfg.observer,
		startupDelay: cfg.startupDelay,
		workers:      make(map[K]*Worker[K, V]),
	}
}

var (
	defaultRegistry     *Registry[string, any]
	defaultRegistryOnce sync.Once
)

// Default returns a process-wide Registry[string, any], lazily constructed
// on first use. It is a convenience for callers happy with string keys and
// interface{} values; anything needing a typed Store should construct its
// own Registry with NewRegistry.
func Default() *Registry[string, any] {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry[string, any]()
	})
	return defaultRegistry
}

// RegisterFunction registers fun under key: a Worker is spawned that waits
// out the startup delay, then runs fun every refreshInterval, storing each
// success and retrying every failure or panic forever. The Worker expires
// the stored value if ttl elapses without a successful run.
//
// RegisterFunction panics if fun is nil, if refreshInterval or ttl is not
// positive, or if refreshInterval is not strictly less than ttl — these are
// caller contract violations, not runtime conditions, and spec.md keeps
// them out of the error return path. It returns ErrAlreadyRegistered if key
// already has a Worker or a Store entry — a Store entry can outlive its
// Worker (e.g. a Store shared across Registry instances via WithStore), and
// spec.md resolves registration uniqueness by presence of either — and
// ErrClosed once the Registry has been closed.
func (r *Registry[K, V]) RegisterFunction(key K, fun Func[V], refreshInterval, ttl time.Duration) error {
	if fun == nil {
		panic("refreshcache: fun must not be nil")
	}
	if refreshInterval <= 0 {
		panic("refreshcache: refreshInterval must be positive")
	}
	if ttl <= 0 {
		panic("refreshcache: ttl must be positive")
	}
	if refreshInterval >= ttl {
		panic("refreshcache: refreshInterval must be strictly less than ttl")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if _, exists := r.workers[key]; exists {
		return ErrAlreadyRegistered
	}
	if _, exists := r.store.Get(key); exists {
		return ErrAlreadyRegistered
	}
	r.workers[key] = newWorker[K, V](key, fun, r.store, refreshInterval, ttl, r.startupDelay, r.observer)
	if r.observer != nil {
		r.observer.OnEvent(EventRegistered, key, 0, nil)
	}
	return nil
}

// Get returns the value stored for key. If a value is already stored it is
// returned immediately without touching the Worker. If nothing is stored
// yet (the Worker is still on its startup delay, running its first
// computation, or retrying after a failure) Get blocks on that Worker's
// in-flight computation until it finishes or timeout elapses, whichever
// comes first, and returns ErrTimeout unless that computation succeeded
// in time. Get returns
// ErrNotRegistered if key has no Worker and nothing is stored for it, and
// ErrClosed once the Registry has been closed.
func (r *Registry[K, V]) Get(ctx context.Context, key K, timeout time.Duration) (V, error) {
	var zero V

	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return zero, ErrClosed
	}
	w, registered := r.workers[key]
	r.mu.RUnlock()

	if v, ok := r.store.Get(key); ok {
		if w != nil {
			w.stats.awaitHit.Add(1)
		}
		return v, nil
	}
	if !registered {
		return zero, ErrNotRegistered
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	v, ok := w.awaitCurrent(waitCtx)
	if !ok {
		return zero, ErrTimeout
	}
	return v, nil
}

// Stats returns a snapshot of key's counters, and whether key is
// registered.
func (r *Registry[K, V]) Stats(key K) (Stats, bool) {
	r.mu.RLock()
	w, ok := r.workers[key]
	r.mu.RUnlock()
	if !ok {
		return Stats{}, false
	}
	return w.Stats(), true
}

// Close stops every Worker's background loop and marks the Registry
// closed; subsequent RegisterFunction and Get calls return ErrClosed.
// Stored values are left in place. Close returns ctx's error if ctx is
// done before every Worker has stopped.
func (r *Registry[K, V]) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	workers := make([]*Worker[K, V], 0, len(r.workers))
	for _, w := range r.workers {
		workers = append(workers, w)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for _, w := range workers {
			w.Close()
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
