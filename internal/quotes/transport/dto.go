package transport

import (
	"time"

	"github.com/google/uuid"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// LineItemRequest is the input for a single line item. When ServiceRef is
// set, an omitted description or unit price is filled from the catalog.
type LineItemRequest struct {
	ServiceRef  *uuid.UUID `json:"serviceRef"`
	Description string     `json:"description" validate:"max=500"`
	Quantity    int        `json:"quantity" validate:"min=1"`
	UnitPrice   *string    `json:"unitPrice" validate:"omitempty,decimal_gte0"`
	SortOrder   *int       `json:"sortOrder" validate:"omitempty,min=0"`
}

// ClientSnapshotRequest is the client data stored on the quote.
type ClientSnapshotRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
	Company *string `json:"company" validate:"omitempty,max=200"`
}

// CreateQuoteRequest is the request body for creating a new quote. Client
// defaults to the lead's contact data when omitted.
type CreateQuoteRequest struct {
	LeadID           *uuid.UUID             `json:"leadId"`
	Client           *ClientSnapshotRequest `json:"client" validate:"omitempty"`
	Currency         string                 `json:"currency" validate:"omitempty,oneof=USD TTD EUR"`
	Items            []LineItemRequest      `json:"items" validate:"required,min=1,dive"`
	DiscountType     string                 `json:"discountType" validate:"omitempty,oneof=none percentage fixed"`
	DiscountValue    string                 `json:"discountValue" validate:"omitempty,decimal_gte0"`
	TaxRate          string                 `json:"taxRate" validate:"omitempty,fraction"`
	ValidityDays     *int                   `json:"validityDays" validate:"omitempty,min=1,max=365"`
	Language         string                 `json:"language" validate:"omitempty,oneof=en es"`
	Notes            *string                `json:"notes" validate:"omitempty,max=5000"`
	RecurringBilling bool                   `json:"recurringBilling"`
}

// UpdateQuoteRequest is the request body for editing a draft quote. Omitted
// fields are unchanged. Items, discount and tax are re-priced together.
type UpdateQuoteRequest struct {
	Client           *ClientSnapshotRequest `json:"client" validate:"omitempty"`
	Currency         *string                `json:"currency" validate:"omitempty,oneof=USD TTD EUR"`
	Items            *[]LineItemRequest     `json:"items" validate:"omitempty,min=1,dive"`
	DiscountType     *string                `json:"discountType" validate:"omitempty,oneof=none percentage fixed"`
	DiscountValue    *string                `json:"discountValue" validate:"omitempty,decimal_gte0"`
	TaxRate          *string                `json:"taxRate" validate:"omitempty,fraction"`
	ValidUntil       *time.Time             `json:"validUntil"`
	Language         *string                `json:"language" validate:"omitempty,oneof=en es"`
	Notes            *string                `json:"notes" validate:"omitempty,max=5000"`
	RecurringBilling *bool                  `json:"recurringBilling"`
}

// SendQuoteRequest optionally overrides the export locale.
type SendQuoteRequest struct {
	Language string `json:"language" validate:"omitempty,oneof=en es"`
}

// ExportRequest defines the query parameters of export endpoints.
type ExportRequest struct {
	Lang string `form:"lang" validate:"omitempty,oneof=en es"`
}

// ListQuotesRequest defines the query parameters for listing quotes
type ListQuotesRequest struct {
	LeadID   string `form:"leadId" validate:"omitempty,uuid"`
	Status   string `form:"status" validate:"omitempty,oneof=draft sent accepted rejected expired"`
	Search   string `form:"search" validate:"omitempty,max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// LineItemResponse is the response for a single line item
type LineItemResponse struct {
	ServiceRef  *uuid.UUID `json:"serviceRef,omitempty"`
	Description string     `json:"description"`
	Quantity    int        `json:"quantity"`
	UnitPrice   string     `json:"unitPrice"`
	Total       string     `json:"total"`
	SortOrder   int        `json:"sortOrder"`
}

// ClientSnapshotResponse is the client data stored on the quote.
type ClientSnapshotResponse struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone,omitempty"`
	Company *string `json:"company,omitempty"`
}

// QuoteResponse is a quote with its display status.
type QuoteResponse struct {
	ID               uuid.UUID              `json:"id"`
	Number           string                 `json:"number"`
	Status           string                 `json:"status"`
	StoredStatus     string                 `json:"storedStatus"`
	Currency         string                 `json:"currency"`
	Items            []LineItemResponse     `json:"items"`
	DiscountType     string                 `json:"discountType"`
	DiscountValue    string                 `json:"discountValue"`
	TaxRate          string                 `json:"taxRate"`
	Subtotal         string                 `json:"subtotal"`
	DiscountAmount   string                 `json:"discountAmount"`
	Tax              string                 `json:"tax"`
	Total            string                 `json:"total"`
	Client           ClientSnapshotResponse `json:"client"`
	LeadID           *uuid.UUID             `json:"leadId,omitempty"`
	ValidUntil       string                 `json:"validUntil"`
	Language         string                 `json:"language"`
	Notes            *string                `json:"notes,omitempty"`
	RecurringBilling bool                   `json:"recurringBilling"`
	SentAt           *time.Time             `json:"sentAt,omitempty"`
	DecidedAt        *time.Time             `json:"decidedAt,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

// SendQuoteResponse reports a sent quote. Warnings list side effects that
// failed without undoing the transition.
type SendQuoteResponse struct {
	Quote       QuoteResponse `json:"quote"`
	DocumentURL string        `json:"documentUrl,omitempty"`
	Warnings    []string      `json:"warnings,omitempty"`
}

// ExportResponse is the reference to a rendered document.
type ExportResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// QuoteListResponse is a page of quotes.
type QuoteListResponse struct {
	Items      []QuoteResponse `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}
