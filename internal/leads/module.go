// Package leads provides the lead module. Leads are the generic CRUD
// collaborator of the quote lifecycle.
package leads

import (
	apphttp "agency_crm_backend/internal/http"
	"agency_crm_backend/internal/leads/handler"
	"agency_crm_backend/internal/leads/service"
	"agency_crm_backend/internal/ports"
	"agency_crm_backend/platform/config"
	"agency_crm_backend/platform/events"
	"agency_crm_backend/platform/logger"
	"agency_crm_backend/platform/validator"
)

// Module is the leads module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the leads module.
func NewModule(store ports.Store, eventBus events.Bus, cfg config.ContactConfig, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(store, eventBus, cfg, log)
	return &Module{handler: handler.New(svc, val), service: svc}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
	m.handler.RegisterPublicRoutes(ctx.V1.Group("/public"), ctx.PublicRateLimit)
}

var _ apphttp.Module = (*Module)(nil)
