package transport

import (
	"time"

	invoicetransport "agency_crm_backend/internal/invoices/transport"

	"github.com/google/uuid"
)

// ConvertRequest optionally overrides the invoice export locale.
type ConvertRequest struct {
	Language string `json:"language" validate:"omitempty,oneof=en es"`
}

// RejectRequest must carry confirm=true: rejection deletes the quote and its lead.
type RejectRequest struct {
	Confirm bool `json:"confirm"`
}

// ClientResponse is the client the invoice was issued to.
type ClientResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Phone             *string    `json:"phone,omitempty"`
	Company           *string    `json:"company,omitempty"`
	CreatedFromLeadID *uuid.UUID `json:"createdFromLeadId,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// ConvertResponse is the result of accepting a quote.
type ConvertResponse struct {
	Invoice     invoicetransport.InvoiceResponse `json:"invoice"`
	Client      ClientResponse                   `json:"client"`
	IsNewClient bool                             `json:"isNewClient"`
	DocumentURL string                           `json:"documentUrl,omitempty"`
	Warnings    []string                         `json:"warnings,omitempty"`
}

// RejectResponse reports what a rejection deleted.
type RejectResponse struct {
	QuoteID     uuid.UUID  `json:"quoteId"`
	QuoteNumber string     `json:"quoteNumber"`
	LeadID      *uuid.UUID `json:"leadId,omitempty"`
	LeadDeleted bool       `json:"leadDeleted"`
}
