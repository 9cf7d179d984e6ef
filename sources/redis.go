package sources

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/cachewell/refreshcache"
)

// RedisClient captures the subset of *redis.Client a fetcher needs.
// Narrowed the way rediscache.Client is in the driver package this was
// adapted from, so a stub can satisfy it in tests.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisGet returns a Func that reads key from a Redis server on every
// refresh. A miss (redis.Nil) is returned as an error like any other
// failure — the Worker retries it forever rather than surfacing it to
// readers, so there is no special "not found" value to thread through.
func RedisGet(ctx context.Context, client RedisClient, key string) refreshcache.Func[string] {
	return func() (string, error) {
		return client.Get(ctx, key).Result()
	}
}

// RedisGetBytes is RedisGet's []byte-valued counterpart, for payloads that
// aren't plain text.
func RedisGetBytes(ctx context.Context, client RedisClient, key string) refreshcache.Func[[]byte] {
	return func() ([]byte, error) {
		return client.Get(ctx, key).Bytes()
	}
}
