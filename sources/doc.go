// Package sources provides ready-made refreshcache.Func constructors bound
// to a particular backend call — Redis, SQL, DynamoDB, NATS JetStream
// KeyValue, and Memcached. None of these are Store implementations:
// spec.md's Store is in-memory only, so a backend client is instead
// wrapped as the computation a Worker calls on every refresh, the same way
// an application would hand RegisterFunction a closure over its own
// database handle.
//
// Each constructor narrows its backend client down to the handful of
// methods it actually calls, following the teacher library's narrow
// per-store client interfaces (e.g. rediscache.Client, dynamocache.DynamoAPI)
// so callers can pass a stub or a fake in tests without standing up the
// real backend.
package sources
