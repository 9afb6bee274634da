// Package http holds the pieces the composition root hands to the router:
// the App and the Module contract every bounded context implements.
package http

import (
	"context"

	"callerid_backend/internal/events"
	"callerid_backend/platform/config"
	"callerid_backend/platform/logger"
	"callerid_backend/platform/metrics"
)

// RouterConfig is the configuration the router reads.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker backs GET /api/health. *pgxpool.Pool satisfies it.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is assembled in cmd/api and passed to router.New.
type App struct {
	Config RouterConfig
	Logger *logger.Logger
	Health HealthChecker
	// Metrics may be nil, which disables /metrics.
	Metrics  *metrics.Metrics
	EventBus events.Bus
	Modules  []Module
}
