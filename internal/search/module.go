package search

import (
	apphttp "agency_crm_backend/internal/http"
	"agency_crm_backend/internal/ports"
	"agency_crm_backend/internal/search/handler"
	"agency_crm_backend/internal/search/service"
	"agency_crm_backend/platform/validator"
)

type Module struct {
	handler *handler.Handler
}

func NewModule(store ports.Reader, val *validator.Validator) *Module {
	svc := service.New(store)
	h := handler.New(svc, val)

	return &Module{handler: h}
}

func (m *Module) Name() string {
	return "search"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/search")
	m.handler.RegisterRoutes(group)
}

var _ apphttp.Module = (*Module)(nil)
