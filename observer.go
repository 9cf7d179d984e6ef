package refreshcache

import "time"

// Event identifies what happened to a Worker when it calls an Observer.
type Event string

const (
	// EventRegistered fires once, when RegisterFunction spawns a new Worker.
	EventRegistered Event = "registered"
	// EventRefreshSuccess fires when a computation succeeds and its value is
	// written to the Store.
	EventRefreshSuccess Event = "refresh_success"
	// EventRefreshFailure fires when a computation returns a non-nil error.
	EventRefreshFailure Event = "refresh_failure"
	// EventRefreshCrash fires when a computation panics.
	EventRefreshCrash Event = "refresh_crash"
	// EventExpired fires when the expiry timer removes a Store entry.
	EventExpired Event = "expired"
	// EventAwaitTimeout fires when await_current gives up because the
	// reader's deadline passed. An await that ends because the computation
	// failed does not fire it.
	EventAwaitTimeout Event = "await_timeout"
)

// Observer receives a notification every time a Worker's state machine
// makes an observable transition. It is called synchronously from the
// Worker's event loop goroutine for every event except EventRegistered,
// which is called from RegisterFunction's goroutine while the Registry's
// lock is held, and EventAwaitTimeout, which is called from the awaiting
// reader's goroutine — implementations must not block or call back into
// the Registry.
//
// Modeled on the teacher library's Observer/ObserverFunc (there keyed to
// OnCacheOp); here re-targeted at the refresh/expiry/await lifecycle instead
// of generic cache verbs.
type Observer[K comparable] interface {
	OnEvent(event Event, key K, dur time.Duration, err error)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc[K comparable] func(event Event, key K, dur time.Duration, err error)

// OnEvent implements Observer.
func (f ObserverFunc[K]) OnEvent(event Event, key K, dur time.Duration, err error) {
	if f == nil {
		return
	}
	f(event, key, dur, err)
}
