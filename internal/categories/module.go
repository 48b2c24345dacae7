// Package categories provides the categories bounded context module.
// Categories group phone numbers; a category cannot be removed while numbers
// still reference it.
package categories

import (
	"phonebook_backend/internal/categories/handler"
	"phonebook_backend/internal/categories/repository"
	"phonebook_backend/internal/categories/service"
	"phonebook_backend/internal/events"
	apphttp "phonebook_backend/internal/http"
	"phonebook_backend/platform/db"
	"phonebook_backend/platform/logger"
	"phonebook_backend/platform/validator"
)

// Module is the categories bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the categories module with all its dependencies.
func NewModule(pool db.Pool, eventBus events.Publisher, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "categories"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts category routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/categories")
	group.GET("", m.handler.List)
	group.POST("", m.handler.Create)
	group.GET("/:id", m.handler.GetByID)
	group.PUT("/:id", m.handler.Update)
	group.DELETE("/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
