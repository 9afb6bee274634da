// Package lookup provides the number identity bounded context module.
// It resolves who is behind a phone number from local contacts, the remote
// directory and caller-ID, and maintains the blocklist and spam reports.
package lookup

import (
	"context"

	"callerid_backend/internal/events"
	apphttp "callerid_backend/internal/http"
	"callerid_backend/internal/lookup/cache"
	"callerid_backend/internal/lookup/handler"
	"callerid_backend/internal/lookup/repository"
	"callerid_backend/internal/lookup/service"
	"callerid_backend/internal/lookup/sources"
	"callerid_backend/internal/lookup/sources/callerid"
	"callerid_backend/internal/lookup/sources/directory"
	"callerid_backend/internal/scheduler"
	"callerid_backend/platform/config"
	"callerid_backend/platform/db"
	"callerid_backend/platform/i18n"
	"callerid_backend/platform/logger"
	"callerid_backend/platform/metrics"
	"callerid_backend/platform/validator"
)

// Module is the lookup bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates the lookup module. Remote sources are only added when
// configured; the local contacts source is always present.
func NewModule(
	pool db.Querier,
	contacts sources.ContactFinder,
	c cache.Cache,
	photos service.PhotoResolver,
	eventBus events.Bus,
	m *metrics.Metrics,
	val *validator.Validator,
	strings *i18n.Bundle,
	cfg config.LookupConfig,
	log *logger.Logger,
) *Module {
	providers := []sources.Provider{sources.NewLocal(contacts)}
	if cfg.IsDirectoryEnabled() {
		providers = append(providers, directory.New(cfg.GetDirectoryURL(), cfg.GetDirectoryAPIKey(), log))
		log.Info("lookup source enabled", "source", "remote_contact", "url", cfg.GetDirectoryURL())
	}
	if cfg.IsCallerIDEnabled() {
		providers = append(providers, callerid.New(cfg.GetCallerIDURL(), cfg.GetCallerIDAPIKey(), cfg.GetCallerIDRatePerSecond(), log))
		log.Info("lookup source enabled", "source", "caller_id", "url", cfg.GetCallerIDURL())
	}

	repo := repository.New(pool)
	svc := service.New(providers, repo, c, photos, eventBus, m, log, service.Options{
		DefaultRegion: cfg.GetDefaultRegion(),
		SourceTimeout: cfg.GetSourceTimeout(),
		CacheTTL:      cfg.GetLookupCacheTTL(),
	})
	h := handler.New(svc, val, strings)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "lookup"
}

// SetRefreshEnqueuer queues admin refreshes instead of running them inline.
func (m *Module) SetRefreshEnqueuer(e scheduler.RefreshEnqueuer) {
	m.handler.SetRefreshEnqueuer(e)
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts lookup routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/lookup", m.handler.Lookup)
	ctx.V1.POST("/lookup/batch", m.handler.LookupBatch)
	ctx.V1.GET("/numbers/normalize", m.handler.Normalize)
	ctx.V1.POST("/numbers/match", m.handler.Match)

	// Blocklist and spam reports change what every caller sees.
	numbers := ctx.Protected.Group("/numbers")
	numbers.POST("/block", m.handler.Block)
	numbers.POST("/unblock", m.handler.Unblock)
	numbers.POST("/report-spam", m.handler.ReportSpam)

	ctx.Admin.POST("/lookup/refresh", m.handler.Refresh)
}

// RegisterHandlers looks up every recorded call so its identity lands in the
// lookup history.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.CallRecorded{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.CallRecorded:
		_, err := m.service.Lookup(ctx, service.Query{Raw: e.RawNumber, Region: e.CountryISO})
		return err
	default:
		return nil
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
