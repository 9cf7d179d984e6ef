package cachetest_test

import (
	"testing"
	"time"

	"github.com/cachewell/refreshcache"
	"github.com/cachewell/refreshcache/cachetest"
)

func TestRunScenariosAgainstDefaultRegistry(t *testing.T) {
	cachetest.RunScenarios(t, cachetest.Options{}, func() *refreshcache.Registry[string, int] {
		return refreshcache.NewRegistry[string, int](refreshcache.WithStartupDelay[string, int](5 * time.Millisecond))
	})
}
