// Package service orchestrates the promotions that span aggregates: a sent
// quote becomes an invoice (materializing the client), or is rejected and
// deleted together with its lead.
package service

import (
	"context"
	"time"

	clients "agency_crm_backend/internal/clients/domain"
	"agency_crm_backend/internal/conversion/transport"
	"agency_crm_backend/internal/events"
	invoicedomain "agency_crm_backend/internal/invoices/domain"
	invoiceservice "agency_crm_backend/internal/invoices/service"
	leaddomain "agency_crm_backend/internal/leads/domain"
	"agency_crm_backend/internal/numbering"
	"agency_crm_backend/internal/ports"
	quotedomain "agency_crm_backend/internal/quotes/domain"
	"agency_crm_backend/internal/shared/sideeffect"
	"agency_crm_backend/platform/apperr"
	"agency_crm_backend/platform/config"
	"agency_crm_backend/platform/logger"
	"agency_crm_backend/platform/metrics"

	"github.com/google/uuid"
)

const documentQuote = "quote"

// Service converts and rejects sent quotes.
type Service struct {
	store    ports.Store
	numbers  *numbering.Allocator
	bus      events.Bus
	cfg      config.BillingConfig
	log      *logger.Logger
	exporter ports.DocumentExporter // optional, nil disables exports
	now      func() time.Time
}

// New creates a new conversion service
func New(store ports.Store, numbers *numbering.Allocator, bus events.Bus, cfg config.BillingConfig, log *logger.Logger) *Service {
	return &Service{
		store:   store,
		numbers: numbers,
		bus:     bus,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

// SetExporter injects the document exporter used for the new invoice.
func (s *Service) SetExporter(exporter ports.DocumentExporter) {
	s.exporter = exporter
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

type conversion struct {
	quote       *quotedomain.Quote
	invoice     *invoicedomain.Invoice
	client      *clients.Client
	isNewClient bool
}

// Convert accepts a sent quote and issues its invoice. Finding or creating
// the client, numbering the invoice, accepting the quote and advancing the
// lead commit together or not at all.
func (s *Service) Convert(ctx context.Context, quoteID uuid.UUID, req transport.ConvertRequest) (*transport.ConvertResponse, error) {
	now := s.now()
	var out conversion
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		q, err := repo.LoadQuote(ctx, quoteID)
		if err != nil {
			return err
		}
		if err := q.Accept(now); err != nil {
			return err
		}

		client, isNew, err := findOrCreateClient(ctx, repo, q, now)
		if err != nil {
			return err
		}

		number, err := s.numbers.Next(ctx, repo, numbering.SequenceInvoice)
		if err != nil {
			return err
		}
		inv := invoicedomain.FromQuote(uuid.New(), number, client.ID, invoicedomain.QuoteSource{
			ID:        q.ID,
			Currency:  q.Currency,
			Items:     q.Items,
			TaxRate:   q.TaxRate,
			Totals:    q.Totals,
			Recurring: q.RecurringBilling,
			Language:  string(q.Language),
			Notes:     q.Notes,
		}, s.cfg.GetInvoiceNetTermsDays(), now)
		if err := repo.SaveInvoice(ctx, inv); err != nil {
			return err
		}
		if err := repo.SaveQuote(ctx, q); err != nil {
			return err
		}
		if err := advanceLead(ctx, repo, q.LeadID, now); err != nil {
			return err
		}

		out = conversion{quote: q, invoice: inv, client: client, isNewClient: isNew}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(documentQuote, string(quotedomain.StatusSent), string(quotedomain.StatusAccepted))
	s.log.WithContext(ctx).Transition(documentQuote, out.quote.Number, string(quotedomain.StatusSent), string(quotedomain.StatusAccepted))
	s.log.WithContext(ctx).Info("quote converted", "quote", out.quote.Number, "invoice", out.invoice.Number, "client", out.client.ID, "newClient", out.isNewClient)

	locale := out.invoice.Language
	if req.Language != "" {
		locale = req.Language
	}
	ref, warning := sideeffect.Export(ctx, s.exporter, ports.Document{Kind: ports.DocumentInvoice, Invoice: out.invoice, Client: out.client}, locale, s.log)
	result := &transport.ConvertResponse{
		IsNewClient: out.isNewClient,
		Client:      clientResponse(out.client),
	}
	if ref != nil {
		result.DocumentURL = ref.URL
		if err := s.store.SetInvoiceDocumentURL(ctx, out.invoice.ID, ref.URL); err != nil {
			s.log.WithContext(ctx).DatabaseError("set invoice document url", err)
		} else {
			out.invoice.DocumentURL = &ref.URL
		}
	}
	result.Invoice = invoiceservice.ToResponse(out.invoice, now)
	result.Warnings = sideeffect.Warnings(warning)

	s.bus.Publish(ctx, events.QuoteAccepted{
		BaseEvent:     events.NewBaseEvent(),
		QuoteID:       out.quote.ID,
		QuoteNumber:   out.quote.Number,
		InvoiceID:     out.invoice.ID,
		InvoiceNumber: out.invoice.Number,
		ClientID:      out.client.ID,
		ClientName:    out.client.Name,
		ClientEmail:   out.client.Email,
		IsNewClient:   out.isNewClient,
		Total:         out.invoice.Totals.Total,
		Currency:      string(out.invoice.Currency),
		Language:      string(out.quote.Language),
		DocumentURL:   result.DocumentURL,
	})
	s.bus.Publish(ctx, events.InvoiceCreated{
		BaseEvent:     events.NewBaseEvent(),
		InvoiceID:     out.invoice.ID,
		InvoiceNumber: out.invoice.Number,
		ClientID:      out.client.ID,
		Total:         out.invoice.Totals.Total,
		Currency:      string(out.invoice.Currency),
		DueDate:       out.invoice.DueDate,
	})
	return result, nil
}

// Reject deletes a sent quote and the lead it came from. The caller must
// confirm explicitly; nothing is kept for undo.
func (s *Service) Reject(ctx context.Context, quoteID uuid.UUID, req transport.RejectRequest, actor string) (*transport.RejectResponse, error) {
	if !req.Confirm {
		return nil, apperr.Validation("rejecting a quote deletes it and its lead; set confirm to true").
			WithDetails(map[string]string{"field": "confirm"})
	}

	now := s.now()
	var rejected *quotedomain.Quote
	leadDeleted := false
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		q, err := repo.LoadQuote(ctx, quoteID)
		if err != nil {
			return err
		}
		if err := q.Reject(now); err != nil {
			return err
		}
		if err := repo.DeleteQuote(ctx, q.ID); err != nil {
			return err
		}
		if q.LeadID != nil {
			err := repo.DeleteLead(ctx, *q.LeadID)
			switch {
			case err == nil:
				leadDeleted = true
			case !apperr.Is(err, apperr.KindNotFound):
				return err
			}
		}
		rejected = q
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(documentQuote, string(quotedomain.StatusSent), string(quotedomain.StatusRejected))
	s.log.WithContext(ctx).Transition(documentQuote, rejected.Number, string(quotedomain.StatusSent), string(quotedomain.StatusRejected))
	s.log.WithContext(ctx).Info("rejected quote deleted", "quote", rejected.Number, "leadDeleted", leadDeleted, "actor", actor)

	s.bus.Publish(ctx, events.QuoteRejected{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     rejected.ID,
		QuoteNumber: rejected.Number,
		LeadID:      rejected.LeadID,
		ClientName:  rejected.Client.Name,
		RejectedBy:  actor,
	})

	return &transport.RejectResponse{
		QuoteID:     rejected.ID,
		QuoteNumber: rejected.Number,
		LeadID:      rejected.LeadID,
		LeadDeleted: leadDeleted,
	}, nil
}

// findOrCreateClient matches on the normalized snapshot email.
func findOrCreateClient(ctx context.Context, repo ports.Repository, q *quotedomain.Quote, now time.Time) (*clients.Client, bool, error) {
	existing, err := repo.LoadClientByEmail(ctx, q.Client.Email)
	if err == nil {
		return existing, false, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, false, err
	}

	c := &clients.Client{
		ID:                uuid.New(),
		Name:              q.Client.Name,
		Email:             clients.NormalizeEmail(q.Client.Email),
		Phone:             q.Client.Phone,
		Company:           q.Client.Company,
		CreatedFromLeadID: q.LeadID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := repo.SaveClient(ctx, c); err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func advanceLead(ctx context.Context, repo ports.Repository, leadID *uuid.UUID, now time.Time) error {
	if leadID == nil {
		return nil
	}
	lead, err := repo.LoadLead(ctx, *leadID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !lead.Advance(leaddomain.StatusConverted, now) {
		return nil
	}
	return repo.SaveLead(ctx, lead)
}

func clientResponse(c *clients.Client) transport.ClientResponse {
	return transport.ClientResponse{
		ID:                c.ID,
		Name:              c.Name,
		Email:             c.Email,
		Phone:             c.Phone,
		Company:           c.Company,
		CreatedFromLeadID: c.CreatedFromLeadID,
		CreatedAt:         c.CreatedAt,
	}
}
