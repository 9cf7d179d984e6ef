package refreshcache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultStartupDelay is the fixed delay a Worker waits after being spawned
// before running its Func for the first time.
const DefaultStartupDelay = 1000 * time.Millisecond

// Worker owns a single key's background refresh loop. It is the only piece
// of this package that writes to or deletes from the Store, and the only
// piece that ever calls the registered Func — Registry.Get never runs a
// computation itself, it only reads the Store or awaits the Worker's
// current computation.
//
// Lifecycle: a Worker starts IDLE_BEFORE_FIRST_RUN, waits out startupDelay,
// then alternates between RUNNING (a Func call in flight) and either STORED
// (last run succeeded, an expiry timer is armed and the next run is
// scheduled after refreshInterval) or RETRYING (last run failed or
// panicked, no new value is written — an earlier one stays until its
// expiry timer fires — and the next run starts immediately, with no
// backoff and no refresh timer involved). spec.md leaves the retry backoff
// strategy open beyond "retry forever, immediately"; see retryext for an
// opt-in backoff wrapper around Func.
type Worker[K comparable, V any] struct {
	key             K
	fun             Func[V]
	store           Store[K, V]
	refreshInterval time.Duration
	ttl             time.Duration
	startupDelay    time.Duration
	observer        Observer[K]
	stats           statCounters

	mu      sync.Mutex
	current *computation[V]

	closeCh chan struct{}
	wg      sync.WaitGroup
}

func newWorker[K comparable, V any](key K, fun Func[V], store Store[K, V], refreshInterval, ttl, startupDelay time.Duration, observer Observer[K]) *Worker[K, V] {
	w := &Worker[K, V]{
		key:             key,
		fun:             fun,
		store:           store,
		refreshInterval: refreshInterval,
		ttl:             ttl,
		startupDelay:    startupDelay,
		observer:        observer,
		current:         newComputation[V](),
		closeCh:         make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w
}

// Stats returns a point-in-time snapshot of this Worker's counters.
func (w *Worker[K, V]) Stats() Stats {
	return w.stats.snapshot()
}

// Close stops the Worker's background loop and waits for any in-flight
// computation to finish before returning. It does not touch the Store —
// any value already written for this key is left in place.
func (w *Worker[K, V]) Close() {
	close(w.closeCh)
	w.wg.Wait()
}

func (w *Worker[K, V]) notify(event Event, dur time.Duration, err error) {
	if w.observer != nil {
		w.observer.OnEvent(event, w.key, dur, err)
	}
}

func (w *Worker[K, V]) loop() {
	defer w.wg.Done()

	startup := time.NewTimer(w.startupDelay)
	defer startup.Stop()
	select {
	case <-startup.C:
	case <-w.closeCh:
		return
	}

	refresh := time.NewTimer(0)
	defer refresh.Stop()

	var expiry *time.Timer
	var expiryC <-chan time.Time
	defer func() {
		if expiry != nil {
			expiry.Stop()
		}
	}()

	// runDone receives the outcome of a computation started off the loop
	// goroutine, so a slow fun never blocks the loop from noticing an
	// expiry timer or a Close — only awaitCurrent's own select, which
	// reads w.current directly, needs the loop to stay responsive for.
	runDone := make(chan runResult[V], 1)

	for {
		select {
		case <-w.closeCh:
			return

		case <-expiryC:
			w.store.Delete(w.key)
			w.stats.expiry.Add(1)
			w.notify(EventExpired, 0, nil)
			expiry = nil
			expiryC = nil

		case <-refresh.C:
			w.startRun(runDone)

		case res := <-runDone:
			dur, value, succeeded, crashed, err := res.dur, res.value, res.succeeded, res.crashed, res.err
			switch {
			case succeeded:
				w.store.Put(w.key, value)
				w.stats.refreshSuccess.Add(1)
				w.notify(EventRefreshSuccess, dur, nil)
				if expiry != nil {
					expiry.Stop()
				}
				expiry = time.NewTimer(w.ttl)
				expiryC = expiry.C
				refresh.Reset(w.refreshInterval)
			case crashed:
				w.stats.refreshCrash.Add(1)
				w.notify(EventRefreshCrash, dur, err)
				// RETRYING -> RUNNING is immediate: no backoff, no
				// refresh timer involved (spec.md §4.2).
				w.startRun(runDone)
			default:
				w.stats.refreshFailure.Add(1)
				w.notify(EventRefreshFailure, dur, err)
				w.startRun(runDone)
			}
		}
	}
}

// runResult carries runOnce's outcome across the runDone channel.
type runResult[V any] struct {
	dur       time.Duration
	value     V
	succeeded bool
	crashed   bool
	err       error
}

// startRun spawns a computation off the loop goroutine, tracked in w.wg so
// Close waits for it to finish rather than abandoning it mid-flight.
func (w *Worker[K, V]) startRun(done chan<- runResult[V]) {
	w.wg.Add(1)
	go w.runOnceAsync(done)
}

// runOnceAsync runs runOnce and reports its outcome on done. It is the
// "separate task" the design notes call for, so a slow or wedged fun never
// stalls the loop's own select.
func (w *Worker[K, V]) runOnceAsync(done chan<- runResult[V]) {
	defer w.wg.Done()
	dur, value, succeeded, crashed, err := w.runOnce()
	done <- runResult[V]{dur: dur, value: value, succeeded: succeeded, crashed: crashed, err: err}
}

// runOnce installs a fresh computation (the first run instead takes over the
// one newWorker installed, which readers arriving during the startup delay
// are already waiting on), runs fun to completion (recovering from any
// panic), and records the outcome on that computation before returning it
// to the caller's bookkeeping.
func (w *Worker[K, V]) runOnce() (dur time.Duration, value V, succeeded, crashed bool, err error) {
	w.mu.Lock()
	comp := w.current
	select {
	case <-comp.done:
		comp = newComputation[V]()
		w.current = comp
	default:
	}
	w.mu.Unlock()

	start := time.Now()
	defer func() {
		dur = time.Since(start)
		if r := recover(); r != nil {
			crashed = true
			succeeded = false
			err = fmt.Errorf("refreshcache: computation panicked: %v", r)
			var zero V
			comp.finish(zero, false)
		}
	}()

	v, fErr := w.fun()
	if fErr != nil {
		err = fErr
		comp.finish(v, false)
		return dur, v, false, false, err
	}
	value = v
	succeeded = true
	comp.finish(v, true)
	return
}

// awaitCurrent blocks until the computation that was in flight at call time
// finishes, ctx is done, or the Worker is closed, whichever happens first.
// It never starts a computation itself.
func (w *Worker[K, V]) awaitCurrent(ctx context.Context) (V, bool) {
	w.mu.Lock()
	comp := w.current
	w.mu.Unlock()

	var zero V
	select {
	case <-comp.done:
		return comp.value, comp.ok
	case <-ctx.Done():
		w.stats.awaitTimeout.Add(1)
		w.notify(EventAwaitTimeout, 0, ctx.Err())
		return zero, false
	case <-w.closeCh:
		return zero, false
	}
}
