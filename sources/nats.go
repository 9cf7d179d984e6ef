package sources

import (
	"github.com/nats-io/nats.go"

	"github.com/cachewell/refreshcache"
)

// NatsKeyValue captures the subset of nats.KeyValue a fetcher needs.
// Narrowed from natscache.KeyValue, which also covered Put, Create,
// Update, Delete, Purge, and ListKeys for its full Store contract.
type NatsKeyValue interface {
	Get(key string) (nats.KeyValueEntry, error)
}

// NatsKVGet returns a Func that reads key from a JetStream KeyValue bucket
// on every refresh.
func NatsKVGet(kv NatsKeyValue, key string) refreshcache.Func[[]byte] {
	return func() ([]byte, error) {
		entry, err := kv.Get(key)
		if err != nil {
			return nil, err
		}
		return entry.Value(), nil
	}
}
