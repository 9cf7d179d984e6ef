// Package cachetest provides a reusable scenario suite for
// refreshcache.Registry, so that swapping the Registry's Store backend (the
// in-process default, or a future alternative) doesn't mean re-deriving
// spec.md §8's literal end-to-end scenarios by hand each time. Five of the
// six are covered; the await-after-external-delete scenario is not.
//
// Adapted from the teacher's own cachetest package, which ran a
// backend-agnostic contract suite (Set/Get/TTL/Add/Increment/Delete/Flush)
// against any cachecore.Store implementation — the same "one suite, many
// backends" shape, retargeted from a KV Store contract to the
// register-then-get refresh lifecycle.
//
// Example:
//
//	func TestRegistryScenarios(t *testing.T) {
//		cachetest.RunScenarios(t, cachetest.Options{}, func() *refreshcache.Registry[string, int] {
//			return refreshcache.NewRegistry[string, int](refreshcache.WithStartupDelay[string, int](5 * time.Millisecond))
//		})
//	}
package cachetest
