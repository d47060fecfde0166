// Command priopool-demo runs a small priority scenario on a two-worker pool
// and optionally serves the pool metrics for Prometheus.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	lg "github.com/Andrej220/go-utils/zlog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Andrej220/go-utils/priopool"
	"github.com/Andrej220/go-utils/priopool/prommetrics"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML pool config")
	metricsAddr := flag.String("metrics-addr", "", "serve /metrics on this address and keep running")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *metricsAddr); err != nil {
		fmt.Fprintln(os.Stderr, "priopool-demo:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, metricsAddr string) error {
	logger := lg.FromContext(ctx)

	cfg, err := priopool.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Workers == 0 {
		cfg.Workers = 2
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	opts.Ctx = ctx

	reg := prometheus.NewRegistry()
	pool, err := priopool.NewPoolFromOptions(prommetrics.New(reg, "demo"), opts)
	if err != nil {
		return err
	}
	defer pool.Stop()

	sleepy := func(d time.Duration, v int) func() (int, error) {
		return func() (int, error) {
			time.Sleep(d)
			logger.Info("task executed", lg.Int("task", v))
			return v, nil
		}
	}

	f1, _, err := priopool.Submit(pool, sleepy(100*time.Millisecond, 1), priopool.WithPriority(priopool.Medium))
	if err != nil {
		return err
	}
	f2, _, err := priopool.Submit(pool, sleepy(0, 2), priopool.WithPriority(priopool.High))
	if err != nil {
		return err
	}
	f3, _, err := priopool.Submit(pool, sleepy(0, 3), priopool.WithPriority(priopool.Low))
	if err != nil {
		return err
	}

	pool.Wait()

	r1, _ := f1.Get()
	r2, _ := f2.Get()
	r3, _ := f3.Get()
	fmt.Printf("task results: %d, %d, %d\n", r1, r2, r3)

	f4, _, err := priopool.Submit(pool, sleepy(150*time.Millisecond, 4))
	if err != nil {
		return err
	}
	if pool.WaitFor(200 * time.Millisecond) {
		r4, _ := f4.Get()
		fmt.Printf("task 4 result: %d\n", r4)
	} else {
		fmt.Println("task 4 timed out")
	}
	pool.Wait()
	fmt.Println("final tasks done")

	if metricsAddr == "" {
		return nil
	}
	return serveMetrics(ctx, metricsAddr, reg)
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	lg.FromContext(ctx).Info("serving metrics", lg.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
