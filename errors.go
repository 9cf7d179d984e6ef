package refreshcache

import "errors"

// ErrAlreadyRegistered is returned by RegisterFunction when key already has a
// worker or a stored value.
var ErrAlreadyRegistered = errors.New("refreshcache: key already registered")

// ErrNotRegistered is returned by Get when key has no worker and nothing is
// stored for it.
var ErrNotRegistered = errors.New("refreshcache: key not registered")

// ErrTimeout is returned by Get when it needed the in-flight computation's
// result and that computation did not succeed within the caller's deadline.
// This covers a still-running computation, a computation that failed or
// crashed before the deadline, and a computation currently retrying — the
// failure reason itself is never surfaced to readers.
var ErrTimeout = errors.New("refreshcache: timed out waiting for a value")

// ErrClosed is returned by RegisterFunction and Get once the Registry has
// been closed.
var ErrClosed = errors.New("refreshcache: registry is closed")
