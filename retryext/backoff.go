// Package retryext is an optional, opt-in extension addressing spec.md
// §9's open question — "no backoff or bounded retry is specified for
// failing computations... implementers may add one as a documented
// extension" — without changing the core package's default of retrying
// forever, starting the next run immediately after each failure.
//
// Wrap adapts a Func so that a single run makes several bounded attempts
// with exponential backoff between them before reporting failure to the
// Worker. The Worker's own retry-forever behavior is unchanged: if every
// bounded attempt fails, the wrapped Func still reports one failure, and
// the Worker starts the next run immediately as usual.
package retryext

import (
	"math"
	"math/rand"
	"time"
)

// Config controls Wrap's bounded retry behavior. Grounded on
// Keksclan-goRawrSquirrel/retry.Config, generalized from gRPC status codes
// to the generic shouldRetry predicate Wrap takes (see retry.go) since a
// Func has no status-code convention of its own.
type Config struct {
	// MaxAttempts is the maximum number of times the wrapped Func is
	// called per call of the Func Wrap returns, including the first attempt.
	// Values <= 1 mean no retries.
	MaxAttempts int

	// BaseDelay is the delay before the first retry. Subsequent retries
	// use exponential backoff: BaseDelay * 2^attempt.
	BaseDelay time.Duration

	// MaxDelay caps the computed backoff delay.
	MaxDelay time.Duration

	// Jitter adds randomness to the delay. A value of 0.2 means +/-20% of
	// the computed delay. Zero disables jitter.
	Jitter float64
}

// backoff returns the delay before the given attempt (0-indexed),
// identical in shape to the teacher's backoff helper.
func backoff(cfg Config, attempt int) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt))
	if max := float64(cfg.MaxDelay); cfg.MaxDelay > 0 && delay > max {
		delay = max
	}
	if cfg.Jitter > 0 {
		delay += delay * cfg.Jitter * (rand.Float64()*2 - 1)
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}
