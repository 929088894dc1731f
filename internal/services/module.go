// Package services provides the service catalog module. Catalog entries
// seed quote line items with a name and default price.
package services

import (
	apphttp "agency_crm_backend/internal/http"
	"agency_crm_backend/internal/services/handler"
	"agency_crm_backend/internal/services/repository"
	"agency_crm_backend/internal/services/service"
	"agency_crm_backend/platform/logger"
	"agency_crm_backend/platform/validator"
)

// Module is the catalog module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the catalog module on the given repository.
func NewModule(repo repository.Repository, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repo, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "services"
}

// Service returns the service layer. It doubles as the quotes catalog reader.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/services", m.handler.List)
	ctx.Protected.GET("/services/:id", m.handler.GetByID)

	adminGroup := ctx.Admin.Group("/services")
	adminGroup.POST("", m.handler.Create)
	adminGroup.PUT("/:id", m.handler.Update)
	adminGroup.PATCH("/:id/toggle-active", m.handler.ToggleActive)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
