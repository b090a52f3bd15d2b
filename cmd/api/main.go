package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/xfinds/xfinds-backend/api/controllers"
	"github.com/xfinds/xfinds-backend/api/routes"
	"github.com/xfinds/xfinds-backend/internal/cart"
	"github.com/xfinds/xfinds-backend/internal/catalog"
	"github.com/xfinds/xfinds-backend/internal/cron"
	"github.com/xfinds/xfinds-backend/internal/optimizer"
	"github.com/xfinds/xfinds-backend/pkg/config"
	"github.com/xfinds/xfinds-backend/pkg/db"
	"github.com/xfinds/xfinds-backend/pkg/env"
	"github.com/xfinds/xfinds-backend/pkg/instance"
	"github.com/xfinds/xfinds-backend/pkg/logger"
	"github.com/xfinds/xfinds-backend/pkg/metrics"
	"github.com/xfinds/xfinds-backend/pkg/migrate"
	"github.com/xfinds/xfinds-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	jobMetrics := metrics.NewJobMetrics(registry)

	var (
		closers   []namedCloser
		readiness []controllers.ReadinessCheck
		provider  catalog.Provider
		dbClient  *db.Client
	)
	defer func() {
		if err := closeAll(closers); err != nil {
			logg.Error(context.Background(), "error closing resources", err)
		}
	}()

	if cfg.Catalog.UsesDB() {
		dbClient, err = db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		closers = append(closers, namedCloser{name: "database", closer: dbClient})
		readiness = append(readiness, controllers.ReadinessCheck{Name: "database", Pinger: dbClient})

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run dev migrations", err)
			os.Exit(1)
		}
		provider = catalog.NewRepository(dbClient.DB())
	} else {
		fileProvider, err := catalog.NewFileProvider(cfg.Catalog.DataDir)
		if err != nil {
			logg.Error(ctx, "failed to open catalog data dir", err)
			os.Exit(1)
		}
		provider = fileProvider
	}

	cache := catalog.NewCachedProvider(provider, cfg.Catalog.CacheTTL, catalog.WithReloadObserver(jobMetrics))
	catalogService, err := catalog.NewService(cache, cfg.Search.PageSize)
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Configured() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, namedCloser{name: "redis", closer: redisClient})
		readiness = append(readiness, controllers.ReadinessCheck{Name: "redis", Pinger: redisClient})
	}

	var store cart.Store = cart.NewMemoryStore()
	if cfg.Cart.UsesRedis() {
		redisStore, err := cart.NewRedisStore(redisClient, cfg.Cart.TTL, cfg.Cart.UpdateAttempts)
		if err != nil {
			logg.Error(ctx, "failed to create redis cart store", err)
			os.Exit(1)
		}
		store = redisStore
	}

	engine := optimizer.New(optimizer.Options{
		BruteForceLimit: cfg.Optimizer.BruteForceLimit,
		MaxCombinations: cfg.Optimizer.MaxCombinations,
		InStockOnly:     cfg.Optimizer.InStockOnly,
	}, metrics.NewOptimizerMetrics(registry))

	cartService, err := cart.NewService(store, catalogService, engine, logg, cart.Options{
		MaxItems:       cfg.Cart.MaxItems,
		TrackingSource: cfg.App.PublicSource,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}

	deps := routes.Dependencies{
		Catalog:   catalogService,
		Cart:      cartService,
		Metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Readiness: readiness,
	}
	if redisClient != nil {
		deps.RateLimiter = redisClient
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx = logg.WithFields(ctx, map[string]any{
		"env":            cfg.App.Env,
		"addr":           addr,
		"instance":       instance.GetID("local"),
		"catalog_source": cfg.Catalog.Source,
		"cart_store":     cfg.Cart.Store,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if cfg.Catalog.WarmInterval > 0 {
		warmer, err := catalogWarmer(logg, cache, jobMetrics, cfg.Catalog.WarmInterval)
		if err != nil {
			logg.Error(ctx, "failed to create catalog warmer", err)
			os.Exit(1)
		}
		g.Go(func() error {
			if err := warmer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if cfg.Cron.EmbeddedSync && dbClient != nil {
		syncer, err := catalogSyncer(cfg, logg, dbClient, cache, jobMetrics)
		if err != nil {
			logg.Error(ctx, "failed to create embedded catalog sync", err)
			os.Exit(1)
		}
		g.Go(func() error {
			if err := syncer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shut down gracefully")
}

func catalogWarmer(logg *logger.Logger, cache *catalog.CachedProvider, observer cron.JobObserver, interval time.Duration) (*cron.Service, error) {
	job, err := cron.NewCatalogWarmJob(logg, cache)
	if err != nil {
		return nil, err
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(job),
		Lock:     cron.LocalLock{},
		Metrics:  observer,
		Interval: interval,
	})
}

// catalogSyncer imports the flat-file catalog on the cron cadence and invalidates the
// request cache once each import commits.
func catalogSyncer(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, cache *catalog.CachedProvider, observer cron.JobObserver) (*cron.Service, error) {
	source, err := catalog.NewFileProvider(cfg.Catalog.DataDir)
	if err != nil {
		return nil, err
	}
	job, err := cron.NewCatalogSyncJob(cron.CatalogSyncJobParams{
		Logger: logg,
		Source: source,
		DB:     dbClient,
		Strict: cfg.Cron.SyncStrict,
		Cache:  cache,
	})
	if err != nil {
		return nil, err
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(job),
		Lock:     cron.LocalLock{},
		Metrics:  observer,
		Interval: cfg.Cron.SyncInterval,
	})
}

type namedCloser struct {
	name   string
	closer io.Closer
}

// closeAll closes in reverse acquisition order and reports every failure.
func closeAll(closers []namedCloser) error {
	var err error
	for i := len(closers) - 1; i >= 0; i-- {
		if cerr := closers[i].closer.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", closers[i].name, cerr))
		}
	}
	return err
}
