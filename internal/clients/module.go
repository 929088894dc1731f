// Package clients provides the read side of the client aggregate.
package clients

import (
	"agency_crm_backend/internal/clients/handler"
	"agency_crm_backend/internal/clients/service"
	apphttp "agency_crm_backend/internal/http"
	"agency_crm_backend/internal/ports"
	"agency_crm_backend/platform/validator"
)

// Module is the clients module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates the clients module.
func NewModule(store ports.Reader, val *validator.Validator) *Module {
	return &Module{handler: handler.New(service.New(store), val)}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "clients"
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/clients"))
}

var _ apphttp.Module = (*Module)(nil)
