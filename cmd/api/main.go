package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"callerid_backend/internal/calllog"
	"callerid_backend/internal/contacts"
	"callerid_backend/internal/events"
	apphttp "callerid_backend/internal/http"
	"callerid_backend/internal/http/router"
	"callerid_backend/internal/lookup"
	"callerid_backend/internal/lookup/cache"
	lookupservice "callerid_backend/internal/lookup/service"
	"callerid_backend/internal/scheduler"
	"callerid_backend/platform/config"
	"callerid_backend/platform/db"
	"callerid_backend/platform/i18n"
	"callerid_backend/platform/logger"
	"callerid_backend/platform/metrics"
	"callerid_backend/platform/storage"
	"callerid_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	applied, err := db.RunMigrations(ctx, pool)
	if err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete", "applied", applied)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	val := validator.New()

	strings, err := i18n.Load()
	if err != nil {
		log.Error("failed to load localized strings", "error", err)
		panic("failed to load localized strings: " + err.Error())
	}

	lookupCache, closeCache := initLookupCache(ctx, cfg, log)
	if closeCache != nil {
		defer closeCache()
	}

	photos := initPhotoResolver(ctx, cfg, log)

	refreshQueue, closeQueue := initRefreshQueue(cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	contactsModule := contacts.NewModule(pool, cfg.GetDefaultRegion(), val, log)
	lookupModule := lookup.NewModule(pool, contactsModule.Repository(), lookupCache, photos, eventBus, appMetrics, val, strings, cfg, log)
	if refreshQueue != nil {
		lookupModule.SetRefreshEnqueuer(refreshQueue)
	}
	calllogModule := calllog.NewModule(pool, eventBus, strings, appMetrics, val, cfg, log)

	// Recorded calls are looked up; resolved identities land in the history.
	lookupModule.RegisterHandlers(eventBus)
	calllogModule.RegisterHandlers(eventBus)

	historyDone := make(chan struct{})
	go func() {
		defer close(historyDone)
		calllogModule.Run(ctx)
	}()

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		Metrics:  appMetrics,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			contactsModule,
			lookupModule,
			calllogModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 5 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
		<-historyDone
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initLookupCache(ctx context.Context, cfg *config.Config, log *logger.Logger) (cache.Cache, func()) {
	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; using in-process lookup cache")
		return cache.NewMemory(cfg.GetLookupCacheTTL()), nil
	}

	redisCache, err := cache.NewRedis(cfg.GetRedisURL())
	if err == nil {
		err = withRetry(ctx, log, "redis connection", 3, time.Second, func() error {
			return redisCache.Ping(ctx)
		})
	}
	if err != nil {
		log.Error("redis unavailable; using in-process lookup cache", "error", err)
		return cache.NewMemory(cfg.GetLookupCacheTTL()), nil
	}

	log.Info("redis lookup cache enabled")
	return redisCache, func() { _ = redisCache.Close() }
}

func initPhotoResolver(ctx context.Context, cfg *config.Config, log *logger.Logger) lookupservice.PhotoResolver {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; contact photos are returned as stored")
		return nil
	}

	resolver, err := storage.NewPhotoResolver(cfg)
	if err != nil {
		log.Error("failed to initialize photo storage", "error", err)
		panic("failed to initialize photo storage: " + err.Error())
	}
	if err := withRetry(ctx, log, "ensure contact-photos bucket", 5, 2*time.Second, func() error {
		return resolver.EnsureBucket(ctx)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketContactPhotos())
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("photo storage initialized", "bucket", cfg.GetMinioBucketContactPhotos())
	return resolver
}

func initRefreshQueue(cfg config.RedisConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; admin lookup refreshes run inline")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
