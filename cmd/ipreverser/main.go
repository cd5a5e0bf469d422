package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vancho-go/ipreverser/internal/app/config"
	"github.com/vancho-go/ipreverser/internal/app/dnslookuper"
	"github.com/vancho-go/ipreverser/internal/app/geolocator"
	"github.com/vancho-go/ipreverser/internal/app/logger"
	"github.com/vancho-go/ipreverser/internal/app/metrics"
	"github.com/vancho-go/ipreverser/internal/app/router"
	"github.com/vancho-go/ipreverser/internal/app/storage"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("run: error loading config: %w", err)
	}

	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Initialize(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("run: error initialising store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error("error closing store", slog.Any("error", err))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(registry)
	if err != nil {
		return fmt.Errorf("run: error registering metrics: %w", err)
	}

	deps := router.Deps{
		Store:    store,
		Metrics:  m,
		Gatherer: registry,
		CORS:     cfg.CORS,
		Logger:   log,
	}

	if resolver := newResolver(cfg.DNS, log); resolver != nil {
		deps.Resolver = resolver
	}

	locator, err := geolocator.Open(cfg.GeoIP.DBPath)
	if err != nil {
		log.Warn("country lookups disabled", slog.Any("error", err))
	} else if locator != nil {
		defer locator.Close()
		deps.Locator = locator
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.New(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", slog.String("addr", srv.Addr), slog.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("run: error starting server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newResolver(cfg config.DNSConfig, log *slog.Logger) *dnslookuper.Resolver {
	if cfg.Server != "" {
		return dnslookuper.New(cfg.Server, cfg.Timeout)
	}

	resolver, err := dnslookuper.NewFromResolvConf(cfg.ResolvConf, cfg.Timeout)
	if err != nil {
		log.Warn("ptr lookups disabled", slog.Any("error", err))
		return nil
	}
	return resolver
}
