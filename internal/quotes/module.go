// Package quotes provides the quotes domain module.
package quotes

import (
	apphttp "agency_crm_backend/internal/http"
	"agency_crm_backend/internal/numbering"
	"agency_crm_backend/internal/ports"
	"agency_crm_backend/internal/quotes/handler"
	"agency_crm_backend/internal/quotes/service"
	"agency_crm_backend/platform/events"
	"agency_crm_backend/platform/logger"
	"agency_crm_backend/platform/validator"
)

// Module represents the quotes domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new quotes module with all dependencies wired
func NewModule(store ports.Store, numbers *numbering.Allocator, eventBus events.Bus, cfg service.Config, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(store, numbers, eventBus, cfg, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "quotes"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/quotes"), ctx.ExportRateLimit)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
