package refreshcache

import (
	"encoding/json"
	"strings"
	"sync/atomic"
)

// Stats carries per-key counters for a Worker's lifetime. Fields are updated
// with atomic operations so Stats can be read concurrently with the
// Worker's event loop; a snapshot returned by Worker.Stats is a consistent
// point-in-time copy.
//
// This is a supplement to spec.md (which specifies no counters beyond the
// Store's own value), shaped after cpdupuis-Quixote's Stats struct: one
// field per counted event, encoded to JSON by String.
type Stats struct {
	RefreshSuccessCount uint64 // successful computations, each followed by a Store write
	RefreshFailureCount uint64 // computations that returned a non-nil error
	RefreshCrashCount   uint64 // computations that panicked
	ExpiryCount         uint64 // times the Store entry was removed by the expiry timer
	AwaitHitCount       uint64 // Get calls served from the Store without touching the Worker
	AwaitTimeoutCount   uint64 // await_current calls that gave up at the reader's deadline (not those ended by a failed computation)
}

// statCounters is the mutable, atomic-backed form embedded in a Worker.
type statCounters struct {
	refreshSuccess atomic.Uint64
	refreshFailure atomic.Uint64
	refreshCrash   atomic.Uint64
	expiry         atomic.Uint64
	awaitHit       atomic.Uint64
	awaitTimeout   atomic.Uint64
}

func (c *statCounters) snapshot() Stats {
	return Stats{
		RefreshSuccessCount: c.refreshSuccess.Load(),
		RefreshFailureCount: c.refreshFailure.Load(),
		RefreshCrashCount:   c.refreshCrash.Load(),
		ExpiryCount:         c.expiry.Load(),
		AwaitHitCount:       c.awaitHit.Load(),
		AwaitTimeoutCount:   c.awaitTimeout.Load(),
	}
}

// String encodes Stats as JSON.
func (s Stats) String() string {
	sb := &strings.Builder{}
	enc := json.NewEncoder(sb)
	if err := enc.Encode(s); err != nil {
		return "{}"
	}
	return strings.TrimRight(sb.String(), "\n")
}
