package retryext

import (
	"context"
	"time"

	"github.com/cachewell/refreshcache"
)

// Wrap returns a Func that calls fun up to cfg.MaxAttempts times per
// invocation, retrying only while shouldRetry(err) is true, with
// exponential backoff (and optional jitter) between attempts. The context
// is checked before every retry; if ctx is done the wrapped Func returns
// immediately with ctx's error.
//
// Grounded on Keksclan-goRawrSquirrel/retry.Do, which retried on a fixed
// set of gRPC status codes; shouldRetry replaces that gRPC coupling with a
// predicate the caller supplies, since a refreshcache.Func's errors carry
// no status-code convention of their own.
func Wrap[V any](ctx context.Context, fun refreshcache.Func[V], cfg Config, shouldRetry func(error) bool) refreshcache.Func[V] {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return func() (V, error) {
		var zero V
		var lastErr error
		for i := 0; i < attempts; i++ {
			value, err := fun()
			if err == nil {
				return value, nil
			}
			lastErr = err

			if i == attempts-1 || !shouldRetry(err) {
				return zero, err
			}

			delay := backoff(cfg, i)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
		return zero, lastErr
	}
}
