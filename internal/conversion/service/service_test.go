package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"agency_crm_backend/internal/conversion/transport"
	"agency_crm_backend/internal/events"
	invoiceservice "agency_crm_backend/internal/invoices/service"
	invoicetransport "agency_crm_backend/internal/invoices/transport"
	leaddomain "agency_crm_backend/internal/leads/domain"
	"agency_crm_backend/internal/memstore"
	"agency_crm_backend/internal/numbering"
	"agency_crm_backend/internal/ports"
	quoteservice "agency_crm_backend/internal/quotes/service"
	quotetransport "agency_crm_backend/internal/quotes/transport"
	"agency_crm_backend/platform/apperr"
	"agency_crm_backend/platform/config"
	"agency_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type failingExporter struct{}

func (failingExporter) Export(context.Context, ports.Document, string) (ports.ExportRef, error) {
	return ports.ExportRef{}, errors.New("renderer down")
}

type harness struct {
	store    *memstore.Store
	quotes   *quoteservice.Service
	convert  *Service
	invoices *invoiceservice.Service
	bus      *events.InMemoryBus
}

var today = time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC)

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memstore.New()
	numbers := numbering.NewAllocator(nil)
	bus := events.NewInMemoryBus(logger.Discard())
	cfg := &config.Config{QuoteValidityDays: 15, InvoiceNetTermsDays: 13, DefaultCurrency: "USD"}
	clock := func() time.Time { return today }

	h := &harness{
		store:    store,
		quotes:   quoteservice.New(store, numbers, bus, cfg, logger.Discard()),
		convert:  New(store, numbers, bus, cfg, logger.Discard()),
		invoices: invoiceservice.New(store, numbers, bus, logger.Discard()),
		bus:      bus,
	}
	h.quotes.SetClock(clock)
	h.convert.SetClock(clock)
	h.invoices.SetClock(clock)
	return h
}

func (h *harness) sentQuote(t *testing.T, leadID *uuid.UUID, email string, recurring bool) uuid.UUID {
	t.Helper()
	price := "500"
	req := quotetransport.CreateQuoteRequest{
		LeadID:           leadID,
		Items:            []quotetransport.LineItemRequest{{Description: "Website", Quantity: 2, UnitPrice: &price}},
		DiscountType:     "percentage",
		DiscountValue:    "10",
		TaxRate:          "0",
		RecurringBilling: recurring,
	}
	if leadID == nil {
		req.Client = &quotetransport.ClientSnapshotRequest{Name: "Acme", Email: email}
	}
	q, err := h.quotes.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	if _, err := h.quotes.Send(context.Background(), q.ID, quotetransport.SendQuoteRequest{}); err != nil {
		t.Fatalf("send quote: %v", err)
	}
	return q.ID
}

func TestEndToEndQuoteToRecurringInvoice(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	leadID := uuid.New()
	h.store.SeedLead(leaddomain.Lead{ID: leadID, Name: "Ana", Email: "Ana@Example.com", Status: leaddomain.StatusQualified})

	quoteID := h.sentQuote(t, &leadID, "", true)
	converted, err := h.convert.Convert(ctx, quoteID, transport.ConvertRequest{})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	inv := converted.Invoice
	if inv.Total != "900.00" || inv.Status != "pending" || inv.Number != "INV-001" {
		t.Fatalf("unexpected invoice %s %s %s", inv.Number, inv.Status, inv.Total)
	}
	if inv.DueDate != "2024-01-15" {
		t.Fatalf("expected due date after net terms, got %s", inv.DueDate)
	}
	if !converted.IsNewClient || converted.Client.Email != "ana@example.com" {
		t.Fatalf("expected new client from lead snapshot, got %+v", converted.Client)
	}
	if converted.Client.CreatedFromLeadID == nil || *converted.Client.CreatedFromLeadID != leadID {
		t.Fatalf("client must reference its lead")
	}

	q, _ := h.store.GetQuote(ctx, quoteID)
	if q.Status != "accepted" {
		t.Fatalf("expected accepted quote, got %s", q.Status)
	}
	lead, _ := h.store.GetLead(ctx, leadID)
	if lead.Status != leaddomain.StatusConverted {
		t.Fatalf("expected converted lead, got %s", lead.Status)
	}

	paid, err := h.invoices.MarkPaid(ctx, inv.ID, invoicetransport.MarkPaidRequest{})
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.PaidInvoice.Status != "paid" || paid.NextInvoice == nil {
		t.Fatalf("expected paid invoice with a successor, got %+v", paid)
	}
	if paid.NextInvoice.Total != "900.00" || paid.NextInvoice.DueDate != "2024-02-15" {
		t.Fatalf("unexpected successor %s due %s", paid.NextInvoice.Total, paid.NextInvoice.DueDate)
	}
}

func TestConvertReusesClientByEmail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, err := h.convert.Convert(ctx, h.sentQuote(t, nil, "billing@acme.test", false), transport.ConvertRequest{})
	if err != nil {
		t.Fatalf("convert first: %v", err)
	}
	second, err := h.convert.Convert(ctx, h.sentQuote(t, nil, "  BILLING@acme.test", false), transport.ConvertRequest{})
	if err != nil {
		t.Fatalf("convert second: %v", err)
	}
	if !first.IsNewClient || second.IsNewClient || first.Client.ID != second.Client.ID {
		t.Fatalf("expected the second conversion to reuse client %s, got %s", first.Client.ID, second.Client.ID)
	}
	if second.Invoice.Number != "INV-002" {
		t.Fatalf("expected INV-002, got %s", second.Invoice.Number)
	}
}

func TestConvertRequiresSentQuote(t *testing.T) {
	h := newHarness(t)
	price := "10"
	draft, err := h.quotes.Create(context.Background(), quotetransport.CreateQuoteRequest{
		Client: &quotetransport.ClientSnapshotRequest{Name: "Acme", Email: "a@acme.test"},
		Items:  []quotetransport.LineItemRequest{{Description: "Logo", Quantity: 1, UnitPrice: &price}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := h.convert.Convert(context.Background(), draft.ID, transport.ConvertRequest{}); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state converting a draft, got %v", err)
	}

	_, total, _ := h.store.ListClients(context.Background(), ports.ClientFilter{})
	if total != 0 {
		t.Fatalf("failed conversion must not create a client")
	}
}

func TestConvertExpiredQuoteFails(t *testing.T) {
	h := newHarness(t)
	quoteID := h.sentQuote(t, nil, "a@acme.test", false)
	h.convert.SetClock(func() time.Time { return today.AddDate(0, 0, 16) })

	if _, err := h.convert.Convert(context.Background(), quoteID, transport.ConvertRequest{}); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state for expired quote, got %v", err)
	}
}

func TestConvertTwiceFails(t *testing.T) {
	h := newHarness(t)
	quoteID := h.sentQuote(t, nil, "a@acme.test", false)
	if _, err := h.convert.Convert(context.Background(), quoteID, transport.ConvertRequest{}); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if _, err := h.convert.Convert(context.Background(), quoteID, transport.ConvertRequest{}); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state on second conversion, got %v", err)
	}
	_, total, _ := h.store.ListInvoices(context.Background(), ports.InvoiceFilter{Now: today})
	if total != 1 {
		t.Fatalf("expected a single invoice, got %d", total)
	}
}

func TestConvertExportFailureIsWarning(t *testing.T) {
	h := newHarness(t)
	h.convert.SetExporter(failingExporter{})
	quoteID := h.sentQuote(t, nil, "a@acme.test", false)

	res, err := h.convert.Convert(context.Background(), quoteID, transport.ConvertRequest{})
	if err != nil {
		t.Fatalf("convert must succeed when export fails: %v", err)
	}
	if len(res.Warnings) != 1 || res.DocumentURL != "" {
		t.Fatalf("expected one warning, got %+v", res)
	}
	if _, err := h.store.GetInvoice(context.Background(), res.Invoice.ID); err != nil {
		t.Fatalf("invoice must be persisted: %v", err)
	}
}

func TestRejectDeletesQuoteAndLead(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	leadID := uuid.New()
	h.store.SeedLead(leaddomain.Lead{ID: leadID, Name: "Ana", Email: "ana@example.com", Status: leaddomain.StatusNew})
	quoteID := h.sentQuote(t, &leadID, "", false)

	res, err := h.convert.Reject(ctx, quoteID, transport.RejectRequest{Confirm: true}, "tester")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if !res.LeadDeleted {
		t.Fatalf("expected lead deletion to be reported")
	}
	if _, err := h.store.GetQuote(ctx, quoteID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected quote not found, got %v", err)
	}
	if _, err := h.store.GetLead(ctx, leadID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected lead not found, got %v", err)
	}
}

func TestRejectRequiresConfirmationAndSentStatus(t *testing.T) {
	h := newHarness(t)
	quoteID := h.sentQuote(t, nil, "a@acme.test", false)

	if _, err := h.convert.Reject(context.Background(), quoteID, transport.RejectRequest{}, "tester"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error without confirmation, got %v", err)
	}
	if _, err := h.store.GetQuote(context.Background(), quoteID); err != nil {
		t.Fatalf("unconfirmed reject must not delete: %v", err)
	}

	if _, err := h.convert.Convert(context.Background(), quoteID, transport.ConvertRequest{}); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if _, err := h.convert.Reject(context.Background(), quoteID, transport.RejectRequest{Confirm: true}, "tester"); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state rejecting an accepted quote, got %v", err)
	}
}
