// Package contacts provides the local contacts bounded context module.
// Stored contacts feed the local lookup source and the dialpad search.
package contacts

import (
	"callerid_backend/internal/contacts/handler"
	"callerid_backend/internal/contacts/repository"
	"callerid_backend/internal/contacts/service"
	apphttp "callerid_backend/internal/http"
	"callerid_backend/platform/db"
	"callerid_backend/platform/logger"
	"callerid_backend/platform/validator"
)

// Module is the contacts bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the contacts module with all its dependencies.
func NewModule(pool db.Querier, defaultRegion string, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, defaultRegion, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "contacts"
}

// Repository returns the repository; the lookup module uses it as its
// local contacts source.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts contact routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/contacts/search", m.handler.Search)
	ctx.Protected.POST("/contacts", m.handler.Create)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
