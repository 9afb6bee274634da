// Package calllog provides the call log bounded context module.
// It records calls, keeps the lookup history written by the history writer
// and renders coalesced, localized call log entries.
package calllog

import (
	"context"

	"callerid_backend/internal/calllog/display"
	"callerid_backend/internal/calllog/handler"
	"callerid_backend/internal/calllog/history"
	"callerid_backend/internal/calllog/repository"
	"callerid_backend/internal/calllog/service"
	"callerid_backend/internal/events"
	apphttp "callerid_backend/internal/http"
	"callerid_backend/platform/config"
	"callerid_backend/platform/db"
	"callerid_backend/platform/i18n"
	"callerid_backend/platform/logger"
	"callerid_backend/platform/metrics"
	"callerid_backend/platform/validator"
)

// Config combines the settings the call log needs.
type Config interface {
	config.LookupConfig
	config.HistoryConfig
}

// Module is the call log bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	writer  *history.Writer
}

// NewModule creates and initializes the call log module with all its dependencies.
func NewModule(pool db.Querier, eventBus events.Bus, strings *i18n.Bundle, m *metrics.Metrics, val *validator.Validator, cfg Config, log *logger.Logger) *Module {
	repo := repository.New(pool)
	video := display.ComponentDetector(cfg.GetVideoComponents())
	svc := service.New(repo, eventBus, strings, video, cfg.GetDefaultRegion(), log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		writer:  history.NewWriter(repo, cfg, m, log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "calllog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts call log routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/calllog")
	group.POST("", m.handler.Record)
	group.GET("", m.handler.List)
	group.POST("/read", m.handler.MarkRead)
	group.GET("/:id/sheet", m.handler.Sheet)
}

// RegisterHandlers subscribes the history writer to resolved lookups.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.IdentityResolved{}.EventName(), m.writer)
}

// Run flushes the lookup history until ctx is cancelled.
func (m *Module) Run(ctx context.Context) {
	m.writer.Run(ctx)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
