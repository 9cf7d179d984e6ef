// Package refreshcache is a self-refreshing keyed value cache.
//
// Callers register a zero-argument computation against a key with
// RegisterFunction. The cache spawns one background worker per key that
// periodically re-runs the computation, stores successful results, retries
// failures and crashes indefinitely, and expires a stored value once it has
// gone stale for too long without a successful refresh. Readers call Get and
// either receive the most recently stored value, wait briefly for the
// in-flight computation to finish when nothing is stored yet, or learn that
// the key was never registered. Readers never run the computation
// themselves.
//
// The cache is built for read-cheap, compute-expensive values: remote
// lookups, expensive aggregations, anything where a client wants a recent
// answer quickly and would rather get a slightly stale value than block on a
// slow dependency. See the sources subpackage for ready-made fetchers
// (redis, SQL, DynamoDB, NATS, memcached) suitable for RegisterFunction.
package refreshcache
