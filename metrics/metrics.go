// Package metrics exposes a Worker's refresh/expiry/await lifecycle as
// Prometheus counters, and an http.Handler to serve them.
//
// Grounded on Keksclan-goRawrSquirrel/server/server.go's MetricsHandler,
// which wraps promhttp.Handler() for a gRPC server; here the same handler
// is wired to a refreshcache.Observer instead of a gRPC interceptor chain,
// since the teacher itself has no Prometheus dependency of its own.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cachewell/refreshcache"
)

// Observer implements refreshcache.Observer[K], incrementing one counter
// per (event, key) pair it is notified of.
type Observer[K comparable] struct {
	events *prometheus.CounterVec
}

// NewObserver registers its counters against reg and returns an Observer
// ready to pass to refreshcache.WithObserver. Pass prometheus.DefaultRegisterer
// to register against the global default registry that Handler/promhttp.Handler
// serves.
func NewObserver[K comparable](reg prometheus.Registerer) *Observer[K] {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "refreshcache",
		Name:      "worker_events_total",
		Help:      "Count of refreshcache Worker lifecycle events by event and key.",
	}, []string{"event", "key"})
	reg.MustRegister(events)
	return &Observer[K]{events: events}
}

// OnEvent implements refreshcache.Observer.
func (o *Observer[K]) OnEvent(event refreshcache.Event, key K, _ time.Duration, _ error) {
	o.events.WithLabelValues(string(event), keyLabel(key)).Inc()
}

func keyLabel[K comparable](key K) string {
	if s, ok := any(key).(string); ok {
		return s
	}
	return fmt.Sprint(key)
}

// Handler serves the registered metrics in the Prometheus exposition
// format, the same promhttp.Handler() call the teacher's MetricsHandler
// wraps.
func Handler() http.Handler {
	return promhttp.Handler()
}
