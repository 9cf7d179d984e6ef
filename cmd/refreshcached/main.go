package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/cachewell/refreshcache"
	"github.com/cachewell/refreshcache/metrics"
)

var log = logrus.New()

// main follows the teacher's sharedhttpcache daemon shape: parse flags and
// config, start background services, wait on a signal or a service error,
// then shut everything down gracefully.
func main() {
	if err := initConfig(); err != nil {
		log.WithError(err).Fatal("reading config")
	}

	errChan := make(chan error, 1)

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		sig := <-c
		errChan <- errors.New(sig.String())
	}()

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	registry := refreshcache.NewRegistry[string, int64](
		refreshcache.WithObserver[string, int64](metrics.NewObserver[string](prometheus.DefaultRegisterer)),
	)
	registerDemoWorkers(registry)

	startMetricsServer(ctx, &wg, errChan)

	if err := <-errChan; err != nil {
		log.WithError(err).Warn("shutting down")
	}

	cancel()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer closeCancel()
	if err := registry.Close(closeCtx); err != nil {
		log.WithError(err).Error("registry did not close cleanly")
	}

	wg.Wait()
	log.Info("exited")
}

// registerDemoWorkers registers one monotonic counter per configured
// WorkerConfig, the same role sharedhttpcache's layer.NewInMemoryCacheLayer
// call plays in the teacher's startServer: a minimal, always-available
// piece of runtime state to prove the daemon is alive and refreshing.
func registerDemoWorkers(registry *refreshcache.Registry[string, int64]) {
	for _, wc := range config.Workers {
		wc := wc
		var counter atomic.Int64
		fun := refreshcache.Func[int64](func() (int64, error) {
			return counter.Add(1), nil
		})
		if err := registry.RegisterFunction(wc.Key, fun, wc.RefreshInterval, wc.TTL); err != nil {
			log.WithError(err).WithField("key", wc.Key).Error("registering demo worker")
		}
	}
}

func startMetricsServer(ctx context.Context, wg *sync.WaitGroup, errChan chan<- error) {
	server := &http.Server{
		Addr:    config.Listen.Address,
		Handler: metrics.Handler(),
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.WithField("address", config.Listen.Address).Info("serving /metrics")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}
