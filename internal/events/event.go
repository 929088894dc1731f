// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"agency_crm_backend/platform/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Quote Domain Events
// =============================================================================

// QuoteCreated is published when a draft quote is created.
type QuoteCreated struct {
	BaseEvent
	QuoteID     uuid.UUID       `json:"quoteId"`
	QuoteNumber string          `json:"quoteNumber"`
	LeadID      *uuid.UUID      `json:"leadId,omitempty"`
	ClientName  string          `json:"clientName"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
}

func (e QuoteCreated) EventName() string { return "quotes.quote.created" }

// QuoteSent is published when a quote moves from draft to sent.
type QuoteSent struct {
	BaseEvent
	QuoteID     uuid.UUID       `json:"quoteId"`
	QuoteNumber string          `json:"quoteNumber"`
	ClientName  string          `json:"clientName"`
	ClientEmail string          `json:"clientEmail"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
	ValidUntil  time.Time       `json:"validUntil"`
	DocumentURL string          `json:"documentUrl,omitempty"`
	Language    string          `json:"language"`
}

func (e QuoteSent) EventName() string { return "quotes.quote.sent" }

// QuoteAccepted is published after a quote was converted into an invoice.
type QuoteAccepted struct {
	BaseEvent
	QuoteID       uuid.UUID       `json:"quoteId"`
	QuoteNumber   string          `json:"quoteNumber"`
	InvoiceID     uuid.UUID       `json:"invoiceId"`
	InvoiceNumber string          `json:"invoiceNumber"`
	ClientID      uuid.UUID       `json:"clientId"`
	ClientName    string          `json:"clientName"`
	ClientEmail   string          `json:"clientEmail"`
	IsNewClient   bool            `json:"isNewClient"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	Language      string          `json:"language"`
	DocumentURL   string          `json:"documentUrl,omitempty"`
}

func (e QuoteAccepted) EventName() string { return "quotes.quote.accepted" }

// QuoteRejected is published after a rejected quote and its lead were deleted.
type QuoteRejected struct {
	BaseEvent
	QuoteID     uuid.UUID  `json:"quoteId"`
	QuoteNumber string     `json:"quoteNumber"`
	LeadID      *uuid.UUID `json:"leadId,omitempty"`
	ClientName  string     `json:"clientName"`
	RejectedBy  string     `json:"rejectedBy"`
}

func (e QuoteRejected) EventName() string { return "quotes.quote.rejected" }

// =============================================================================
// Invoice Domain Events
// =============================================================================

// InvoiceCreated is published for every new invoice. Recurring is true when
// the invoice was spawned by payment of its predecessor.
type InvoiceCreated struct {
	BaseEvent
	InvoiceID     uuid.UUID       `json:"invoiceId"`
	InvoiceNumber string          `json:"invoiceNumber"`
	ClientID      uuid.UUID       `json:"clientId"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	DueDate       time.Time       `json:"dueDate"`
	Recurring     bool            `json:"recurring"`
	PreviousID    *uuid.UUID      `json:"previousInvoiceId,omitempty"`
}

func (e InvoiceCreated) EventName() string { return "invoices.invoice.created" }

// InvoicePaid is published after the pending→paid transition committed.
type InvoicePaid struct {
	BaseEvent
	InvoiceID         uuid.UUID       `json:"invoiceId"`
	InvoiceNumber     string          `json:"invoiceNumber"`
	ClientID          uuid.UUID       `json:"clientId"`
	Total             decimal.Decimal `json:"total"`
	Currency          string          `json:"currency"`
	PaymentMethod     string          `json:"paymentMethod,omitempty"`
	PaidAt            time.Time       `json:"paidAt"`
	NextInvoiceNumber string          `json:"nextInvoiceNumber,omitempty"`
	ReceiptURL        string          `json:"receiptUrl,omitempty"`
}

func (e InvoicePaid) EventName() string { return "invoices.invoice.paid" }

// InvoiceCancelled is published after the pending→cancelled transition.
type InvoiceCancelled struct {
	BaseEvent
	InvoiceID     uuid.UUID `json:"invoiceId"`
	InvoiceNumber string    `json:"invoiceNumber"`
	ClientID      uuid.UUID `json:"clientId"`
}

func (e InvoiceCancelled) EventName() string { return "invoices.invoice.cancelled" }

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published when a lead enters the pipeline.
type LeadCreated struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }
