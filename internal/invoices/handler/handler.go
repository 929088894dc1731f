package handler

import (
	"net/http"

	"agency_crm_backend/internal/invoices/service"
	"agency_crm_backend/internal/invoices/transport"
	"agency_crm_backend/platform/httpkit"
	"agency_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for invoices
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new invoices handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the invoice routes. exportLimit may be nil.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, exportLimit gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.POST("/:id/pay", h.MarkPaid)
	rg.POST("/:id/cancel", h.Cancel)

	exports := []gin.HandlerFunc{}
	if exportLimit != nil {
		exports = append(exports, exportLimit)
	}
	rg.POST("/:id/export", append(exports, h.Export)...)
	rg.POST("/:id/receipt", append(exports, h.Receipt)...)
}

// List handles GET /api/v1/invoices
func (h *Handler) List(c *gin.Context) {
	var req transport.ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetByID handles GET /api/v1/invoices/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// MarkPaid handles POST /api/v1/invoices/:id/pay. The body is optional.
func (h *Handler) MarkPaid(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.MarkPaidRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		if err := h.val.Struct(req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
			return
		}
	}

	result, err := h.svc.MarkPaid(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Cancel handles POST /api/v1/invoices/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.Cancel(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Export handles POST /api/v1/invoices/:id/export
func (h *Handler) Export(c *gin.Context) {
	id, lang, ok := h.parseExport(c)
	if !ok {
		return
	}

	result, err := h.svc.Export(c.Request.Context(), id, lang)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Receipt handles POST /api/v1/invoices/:id/receipt
func (h *Handler) Receipt(c *gin.Context) {
	id, lang, ok := h.parseExport(c)
	if !ok {
		return
	}

	result, err := h.svc.Receipt(c.Request.Context(), id, lang)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) parseExport(c *gin.Context) (uuid.UUID, string, bool) {
	id, ok := parseID(c)
	if !ok {
		return uuid.Nil, "", false
	}
	var req transport.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return uuid.Nil, "", false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return uuid.Nil, "", false
	}
	return id, req.Lang, true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
