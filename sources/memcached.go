package sources

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/cachewell/refreshcache"
)

// MemcachedClient captures the single read operation a fetcher needs.
// Narrowed from the teacher's memcachedcache store, which also pooled
// connections and implemented Set/Add/Increment/Delete/Flush for its full
// Store contract — a fetcher only ever reads.
type MemcachedClient interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

// textClient is a minimal memcached text-protocol client: one connection,
// dialed fresh per call. Adapted from memcachedcache's connection-pooled
// client down to what a read-only fetcher needs; callers running enough
// refresh traffic to need pooling should bring their own MemcachedClient.
type textClient struct {
	addr    string
	timeout time.Duration
}

// NewTextClient returns a MemcachedClient speaking the memcached text
// protocol against addr (e.g. "127.0.0.1:11211").
func NewTextClient(addr string) MemcachedClient {
	return &textClient{addr: addr, timeout: 3 * time.Second}
}

func (c *textClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, false, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	reader := bufio.NewReader(conn)
	if _, err := fmt.Fprintf(conn, "get %s\r\n", key); err != nil {
		return nil, false, err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		return nil, false, err
	}
	if line == "END\r\n" {
		return nil, false, nil
	}

	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) < 4 || fields[0] != "VALUE" {
		return nil, false, fmt.Errorf("memcached: unexpected response %q", strings.TrimSpace(line))
	}
	n, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, false, fmt.Errorf("memcached: parse length: %w", err)
	}
	value := make([]byte, n)
	if _, err := io.ReadFull(reader, value); err != nil {
		return nil, false, err
	}
	if _, err := reader.ReadString('\n'); err != nil { // trailing CRLF
		return nil, false, err
	}
	if _, err := reader.ReadString('\n'); err != nil { // END
		return nil, false, err
	}
	return value, true, nil
}

// MemcachedGet returns a Func that fetches key on every refresh, reporting
// a cache miss as an error (the Worker retries forever either way).
func MemcachedGet(ctx context.Context, client MemcachedClient, key string) refreshcache.Func[[]byte] {
	return func() ([]byte, error) {
		value, found, err := client.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("memcached: key %q not found", key)
		}
		return value, nil
	}
}
