// Package ports defines the contracts between the lifecycle services and
// their collaborators: persistence, document export and catalog lookups.
// Adapters live in internal/repository, internal/memstore and
// internal/exports.
package ports

import (
	"context"
	"time"

	clients "agency_crm_backend/internal/clients/domain"
	invoicedomain "agency_crm_backend/internal/invoices/domain"
	leaddomain "agency_crm_backend/internal/leads/domain"
	"agency_crm_backend/internal/numbering"
	"agency_crm_backend/internal/pricing"
	quotedomain "agency_crm_backend/internal/quotes/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository is the transaction-scoped persistence contract. Every Load*
// returns an apperr NotFound error when the row does not exist.
type Repository interface {
	numbering.Store

	LoadQuote(ctx context.Context, id uuid.UUID) (*quotedomain.Quote, error)
	SaveQuote(ctx context.Context, q *quotedomain.Quote) error
	DeleteQuote(ctx context.Context, id uuid.UUID) error

	LoadInvoice(ctx context.Context, id uuid.UUID) (*invoicedomain.Invoice, error)
	SaveInvoice(ctx context.Context, inv *invoicedomain.Invoice) error
	// CompareAndSwapInvoiceStatus persists the status fields of inv (status,
	// paid/cancelled timestamps, payment method) only if the stored status is
	// still from. It reports whether the swap happened.
	CompareAndSwapInvoiceStatus(ctx context.Context, inv *invoicedomain.Invoice, from invoicedomain.Status) (bool, error)

	LoadClientByEmail(ctx context.Context, email string) (*clients.Client, error)
	SaveClient(ctx context.Context, c *clients.Client) error

	LoadLead(ctx context.Context, id uuid.UUID) (*leaddomain.Lead, error)
	SaveLead(ctx context.Context, l *leaddomain.Lead) error
	DeleteLead(ctx context.Context, id uuid.UUID) error
}

// Store opens units of work and serves reads outside of them.
type Store interface {
	Reader
	// WithinTx runs fn in one transaction. The transaction commits when fn
	// returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
	// SetInvoiceDocumentURL records the last exported document of an invoice.
	// It runs outside any unit of work since exports happen after commit.
	SetInvoiceDocumentURL(ctx context.Context, id uuid.UUID, url string) error
}

// Reader serves the query side. Display statuses are derived by callers.
type Reader interface {
	GetQuote(ctx context.Context, id uuid.UUID) (*quotedomain.Quote, error)
	ListQuotes(ctx context.Context, f QuoteFilter) ([]*quotedomain.Quote, int, error)
	GetInvoice(ctx context.Context, id uuid.UUID) (*invoicedomain.Invoice, error)
	ListInvoices(ctx context.Context, f InvoiceFilter) ([]*invoicedomain.Invoice, int, error)
	GetClient(ctx context.Context, id uuid.UUID) (*clients.Client, error)
	ListClients(ctx context.Context, f ClientFilter) ([]*clients.Client, int, error)
	GetLead(ctx context.Context, id uuid.UUID) (*leaddomain.Lead, error)
	ListLeads(ctx context.Context, f LeadFilter) ([]*leaddomain.Lead, int, error)
}

// Page is an offset window. Limit is always positive.
type Page struct {
	Offset int
	Limit  int
}

// QuoteFilter narrows ListQuotes. Status may be a derived status; Now is the
// reference time for expired matching.
type QuoteFilter struct {
	Status *quotedomain.Status
	LeadID *uuid.UUID
	Search string
	Now    time.Time
	Page   Page
}

// InvoiceFilter narrows ListInvoices. Status may be a derived status; Now is
// the reference time for overdue matching.
type InvoiceFilter struct {
	Status   *invoicedomain.Status
	ClientID *uuid.UUID
	Search   string
	Now      time.Time
	Page     Page
}

// ClientFilter narrows ListClients.
type ClientFilter struct {
	Search string
	Page   Page
}

// LeadFilter narrows ListLeads.
type LeadFilter struct {
	Status *leaddomain.Status
	Search string
	Page   Page
}

// DocumentKind identifies an exportable document.
type DocumentKind string

const (
	DocumentQuote   DocumentKind = "quote"
	DocumentInvoice DocumentKind = "invoice"
	DocumentReceipt DocumentKind = "receipt"
)

// Document is the input of an export. Exactly one of Quote and Invoice is set.
type Document struct {
	Kind    DocumentKind
	Quote   *quotedomain.Quote
	Invoice *invoicedomain.Invoice
	Client  *clients.Client
}

// Number returns the document number of the wrapped aggregate.
func (d Document) Number() string {
	if d.Quote != nil {
		return d.Quote.Number
	}
	if d.Invoice != nil {
		return d.Invoice.Number
	}
	return ""
}

// ExportRef is an opaque reference to a rendered document.
type ExportRef struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// DocumentExporter renders a document for a locale. Failures never affect
// the transition that triggered the export.
type DocumentExporter interface {
	Export(ctx context.Context, doc Document, locale string) (ExportRef, error)
}

// CatalogService is the read-only catalog entry used to fill line items.
type CatalogService struct {
	ID           uuid.UUID
	Name         string
	Description  *string
	DefaultPrice decimal.Decimal
	Currency     pricing.Currency
	IsActive     bool
}

// CatalogReader looks up catalog services.
type CatalogReader interface {
	GetCatalogService(ctx context.Context, id uuid.UUID) (CatalogService, error)
}
