package transport

import (
	"time"

	quotetransport "agency_crm_backend/internal/quotes/transport"

	"github.com/google/uuid"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// MarkPaidRequest is the optional body of the pay endpoint.
type MarkPaidRequest struct {
	PaymentMethod *string `json:"paymentMethod" validate:"omitempty,max=100"`
	Language      string  `json:"language" validate:"omitempty,oneof=en es"`
}

// ExportRequest defines the query parameters of export endpoints.
type ExportRequest struct {
	Lang string `form:"lang" validate:"omitempty,oneof=en es"`
}

// ListInvoicesRequest defines the query parameters for listing invoices.
type ListInvoicesRequest struct {
	ClientID string `form:"clientId" validate:"omitempty,uuid"`
	Status   string `form:"status" validate:"omitempty,oneof=pending paid cancelled overdue"`
	Search   string `form:"search" validate:"omitempty,max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// InvoiceResponse is an invoice with its display status.
type InvoiceResponse struct {
	ID                uuid.UUID                         `json:"id"`
	Number            string                            `json:"number"`
	Status            string                            `json:"status"`
	StoredStatus      string                            `json:"storedStatus"`
	Currency          string                            `json:"currency"`
	Items             []quotetransport.LineItemResponse `json:"items"`
	TaxRate           string                            `json:"taxRate"`
	Subtotal          string                            `json:"subtotal"`
	DiscountAmount    string                            `json:"discountAmount"`
	Tax               string                            `json:"tax"`
	Total             string                            `json:"total"`
	ClientID          uuid.UUID                         `json:"clientId"`
	SourceQuoteID     *uuid.UUID                        `json:"sourceQuoteId,omitempty"`
	PreviousInvoiceID *uuid.UUID                        `json:"previousInvoiceId,omitempty"`
	Recurring         bool                              `json:"recurring"`
	DueDate           string                            `json:"dueDate"`
	PaidAt            *time.Time                        `json:"paidAt,omitempty"`
	CancelledAt       *time.Time                        `json:"cancelledAt,omitempty"`
	PaymentMethod     *string                           `json:"paymentMethod,omitempty"`
	Language          string                            `json:"language"`
	Notes             *string                           `json:"notes,omitempty"`
	DocumentURL       *string                           `json:"documentUrl,omitempty"`
	CreatedAt         time.Time                         `json:"createdAt"`
	UpdatedAt         time.Time                         `json:"updatedAt"`
}

// MarkPaidResponse reports a payment. NextInvoice is set for recurring
// invoices. Warnings list side effects that failed after the commit.
type MarkPaidResponse struct {
	PaidInvoice InvoiceResponse  `json:"paidInvoice"`
	NextInvoice *InvoiceResponse `json:"nextInvoice,omitempty"`
	ReceiptURL  string           `json:"receiptUrl,omitempty"`
	Warnings    []string         `json:"warnings,omitempty"`
}

// ExportResponse is the reference to a rendered document.
type ExportResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// InvoiceListResponse is a page of invoices.
type InvoiceListResponse struct {
	Items      []InvoiceResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}
