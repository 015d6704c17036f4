package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/fest-cart/api/controllers"
	"github.com/angelmondragon/fest-cart/api/routes"
	"github.com/angelmondragon/fest-cart/internal/cart"
	"github.com/angelmondragon/fest-cart/internal/catalog"
	"github.com/angelmondragon/fest-cart/internal/cron"
	"github.com/angelmondragon/fest-cart/internal/notifications"
	"github.com/angelmondragon/fest-cart/pkg/config"
	"github.com/angelmondragon/fest-cart/pkg/instance"
	"github.com/angelmondragon/fest-cart/pkg/logger"
	"github.com/angelmondragon/fest-cart/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	// lifetime ends on SIGINT/SIGTERM; checkouts still processing are canceled with it.
	lifetime, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, err := catalog.LoadFile(cfg.Cart.CatalogPath)
	if err != nil {
		return err
	}

	b, err := openBackend(lifetime, cfg, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logg.Error(context.Background(), "error closing cart storage", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cartMetrics := metrics.NewCartMetrics(reg)

	feed := notifications.NewFeed(notifications.FeedOptions{
		TTL:   cfg.Cart.ToastTTL,
		Limit: cfg.Cart.ToastLimit,
	})
	carts := cart.NewRegistry(b.storage,
		cart.WithLogger(logg),
		cart.WithCheckoutDelay(cfg.Cart.CheckoutDelay),
		cart.WithObservers(feed, cart.MetricsObserver(cartMetrics), cart.LogObserver(logg)),
	)

	if cfg.Cron.Enabled {
		service, err := newCronService(cfg, logg, metrics.NewJobMetrics(reg), carts, feed, b.sql)
		if err != nil {
			return err
		}
		go func() {
			if err := service.Run(lifetime); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(lifetime, "cron service stopped", err)
			}
		}()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(lifetime, map[string]any{
		"env":            cfg.App.Env,
		"addr":           addr,
		"storage_driver": cfg.Storage.Normalized(),
		"events":         events.Len(),
		"instance":       instance.ID(),
	})
	logg.Info(ctx, "starting api server")

	checks := map[string]controllers.Pinger{"storage": b.health}
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			lifetime,
			cfg,
			logg,
			checks,
			events,
			carts,
			feed,
			metrics.NewHTTPMetrics(reg),
			promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-lifetime.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newCronService(
	cfg *config.Config,
	logg *logger.Logger,
	jobMetrics *metrics.JobMetrics,
	carts *cart.Registry,
	feed *notifications.Feed,
	snapshots *cart.GormStorage,
) (*cron.Service, error) {
	registry := cron.NewRegistry()

	eviction, err := cron.NewEngineEvictionJob(cron.EngineEvictionJobParams{
		Registry:  carts,
		IdleAfter: cfg.Cron.IdleAfter,
	})
	if err != nil {
		return nil, err
	}
	registry.Register(eviction)

	sweep, err := cron.NewToastSweepJob(feed)
	if err != nil {
		return nil, err
	}
	registry.Register(sweep)

	// Redis expires snapshots on its own; only SQL stores need pruning.
	if snapshots != nil && cfg.Storage.TTL > 0 {
		retention, err := cron.NewSnapshotRetentionJob(cron.SnapshotRetentionJobParams{
			Storage:   snapshots,
			Retention: cfg.Storage.TTL,
		})
		if err != nil {
			return nil, err
		}
		registry.Register(retention)
	}

	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Metrics:  jobMetrics,
		Interval: cfg.Cron.Interval,
	})
}
