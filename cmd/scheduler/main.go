package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"callerid_backend/internal/calllog"
	calllogrepo "callerid_backend/internal/calllog/repository"
	"callerid_backend/internal/contacts"
	"callerid_backend/internal/events"
	"callerid_backend/internal/lookup"
	"callerid_backend/internal/lookup/cache"
	"callerid_backend/internal/scheduler"
	"callerid_backend/platform/config"
	"callerid_backend/platform/db"
	"callerid_backend/platform/i18n"
	"callerid_backend/platform/logger"
	"callerid_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	bundle, err := i18n.Load()
	if err != nil {
		log.Error("failed to load localized strings", "error", err)
		panic("failed to load localized strings: " + err.Error())
	}

	lookupCache := cache.Cache(cache.NewMemory(cfg.GetLookupCacheTTL()))
	if cfg.IsRedisEnabled() {
		redisCache, err := cache.NewRedis(cfg.GetRedisURL())
		if err != nil {
			log.Error("failed to initialize redis lookup cache", "error", err)
			panic("failed to initialize redis lookup cache: " + err.Error())
		}
		defer func() { _ = redisCache.Close() }()
		lookupCache = redisCache
	}

	// Worker-side lookup wiring (no HTTP handlers required). Refreshed
	// identities reach the history through the call log writer.
	contactsModule := contacts.NewModule(pool, cfg.GetDefaultRegion(), val, log)
	lookupModule := lookup.NewModule(pool, contactsModule.Repository(), lookupCache, nil, eventBus, nil, val, bundle, cfg, log)
	calllogModule := calllog.NewModule(pool, eventBus, bundle, nil, val, cfg, log)
	calllogModule.RegisterHandlers(eventBus)

	historyDone := make(chan struct{})
	go func() {
		defer close(historyDone)
		calllogModule.Run(ctx)
	}()

	cleanupInterval := getDurationEnv("HISTORY_CLEANUP_INTERVAL", time.Hour)
	retention := time.Duration(getPositiveIntEnv("HISTORY_RETENTION_DAYS", 30)) * 24 * time.Hour
	historyCleanup := scheduler.NewHistoryCleanup(calllogrepo.New(pool), log, cleanupInterval, retention)
	go historyCleanup.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, lookupModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	eventBus.Wait()
	<-historyDone
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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

func getPositiveIntEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
