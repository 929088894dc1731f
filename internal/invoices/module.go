// Package invoices provides the invoices domain module.
package invoices

import (
	apphttp "agency_crm_backend/internal/http"
	"agency_crm_backend/internal/invoices/handler"
	"agency_crm_backend/internal/invoices/service"
	"agency_crm_backend/internal/numbering"
	"agency_crm_backend/internal/ports"
	"agency_crm_backend/platform/events"
	"agency_crm_backend/platform/logger"
	"agency_crm_backend/platform/validator"
)

// Module represents the invoices domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new invoices module with all dependencies wired
func NewModule(store ports.Store, numbers *numbering.Allocator, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(store, numbers, eventBus, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "invoices"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/invoices"), ctx.ExportRateLimit)
}

var _ apphttp.Module = (*Module)(nil)
