package service

import (
	"context"
	"time"

	"agency_crm_backend/internal/events"
	leaddomain "agency_crm_backend/internal/leads/domain"
	"agency_crm_backend/internal/numbering"
	"agency_crm_backend/internal/ports"
	"agency_crm_backend/internal/quotes/domain"
	"agency_crm_backend/internal/quotes/transport"
	"agency_crm_backend/internal/shared/paging"
	"agency_crm_backend/internal/shared/sideeffect"
	"agency_crm_backend/platform/apperr"
	"agency_crm_backend/platform/config"
	"agency_crm_backend/platform/logger"
	"agency_crm_backend/platform/metrics"

	"github.com/google/uuid"
)

const documentQuote = "quote"

// Config combines the settings the quote service reads.
type Config interface {
	config.BillingConfig
	config.ContactConfig
}

// Service provides business logic for quotes
type Service struct {
	store    ports.Store
	numbers  *numbering.Allocator
	bus      events.Bus
	cfg      Config
	log      *logger.Logger
	exporter ports.DocumentExporter // optional, nil disables exports
	catalog  ports.CatalogReader    // optional, nil disables catalog lookups
	now      func() time.Time
}

// New creates a new quotes service
func New(store ports.Store, numbers *numbering.Allocator, bus events.Bus, cfg Config, log *logger.Logger) *Service {
	return &Service{
		store:   store,
		numbers: numbers,
		bus:     bus,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

// SetExporter injects the document exporter used on send and export.
func (s *Service) SetExporter(exporter ports.DocumentExporter) {
	s.exporter = exporter
}

// SetCatalogReader injects the service catalog used to fill line items.
func (s *Service) SetCatalogReader(catalog ports.CatalogReader) {
	s.catalog = catalog
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create drafts a quote, numbering it and computing its totals. When a lead
// is referenced its contact data seeds the client snapshot and it advances
// to drafting.
func (s *Service) Create(ctx context.Context, req transport.CreateQuoteRequest) (*transport.QuoteResponse, error) {
	now := s.now()
	validity := s.cfg.GetQuoteValidityDays()
	if req.ValidityDays != nil {
		validity = *req.ValidityDays
	}
	currency := req.Currency
	if currency == "" {
		currency = s.cfg.GetDefaultCurrency()
	}

	var created *domain.Quote
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		var lead *leaddomain.Lead
		if req.LeadID != nil {
			l, err := repo.LoadLead(ctx, *req.LeadID)
			if err != nil {
				return err
			}
			lead = l
		}

		snapshot, err := s.snapshotFor(req.Client, lead)
		if err != nil {
			return err
		}
		p, err := s.buildPricing(ctx, currency, req.Items, req.DiscountType, req.DiscountValue, req.TaxRate)
		if err != nil {
			return err
		}

		number, err := s.numbers.Next(ctx, repo, numbering.SequenceQuote)
		if err != nil {
			return err
		}
		q, err := domain.New(domain.NewParams{
			ID:               uuid.New(),
			Number:           number,
			Pricing:          p,
			Client:           snapshot,
			LeadID:           req.LeadID,
			ValidityDays:     validity,
			Language:         domain.ParseLanguage(req.Language),
			Notes:            sanitizeNotes(req.Notes),
			RecurringBilling: req.RecurringBilling,
			Now:              now,
		})
		if err != nil {
			return err
		}
		if err := repo.SaveQuote(ctx, q); err != nil {
			return err
		}
		if lead != nil && lead.Advance(leaddomain.StatusDrafting, now) {
			if err := repo.SaveLead(ctx, lead); err != nil {
				return err
			}
		}
		created = q
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("quote created", "id", created.ID, "number", created.Number, "total", created.Totals.Total.StringFixed(2))
	s.bus.Publish(ctx, events.QuoteCreated{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     created.ID,
		QuoteNumber: created.Number,
		LeadID:      created.LeadID,
		ClientName:  created.Client.Name,
		Total:       created.Totals.Total,
		Currency:    string(created.Currency),
	})

	resp := ToResponse(created, now)
	return &resp, nil
}

// Update edits a draft quote and recomputes its totals.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateQuoteRequest) (*transport.QuoteResponse, error) {
	now := s.now()
	var updated *domain.Quote
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		q, err := repo.LoadQuote(ctx, id)
		if err != nil {
			return err
		}
		edit, err := s.buildEdit(ctx, q, req)
		if err != nil {
			return err
		}
		if err := q.ApplyEdit(edit, now); err != nil {
			return err
		}
		if err := repo.SaveQuote(ctx, q); err != nil {
			return err
		}
		updated = q
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := ToResponse(updated, now)
	return &resp, nil
}

// Send moves a draft quote to sent, then renders its document. A failed
// export is reported as a warning; the quote stays sent.
func (s *Service) Send(ctx context.Context, id uuid.UUID, req transport.SendQuoteRequest) (*transport.SendQuoteResponse, error) {
	now := s.now()
	var sent *domain.Quote
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		q, err := repo.LoadQuote(ctx, id)
		if err != nil {
			return err
		}
		if err := q.Send(now); err != nil {
			return err
		}
		if err := repo.SaveQuote(ctx, q); err != nil {
			return err
		}
		if err := advanceLead(ctx, repo, q.LeadID, leaddomain.StatusQuoted, now); err != nil {
			return err
		}
		sent = q
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(documentQuote, string(domain.StatusDraft), string(domain.StatusSent))
	s.log.WithContext(ctx).Transition(documentQuote, sent.Number, string(domain.StatusDraft), string(domain.StatusSent))

	locale := string(sent.Language)
	if req.Language != "" {
		locale = req.Language
	}
	ref, warning := sideeffect.Export(ctx, s.exporter, ports.Document{Kind: ports.DocumentQuote, Quote: sent}, locale, s.log)

	result := &transport.SendQuoteResponse{
		Quote:    ToResponse(sent, now),
		Warnings: sideeffect.Warnings(warning),
	}
	if ref != nil {
		result.DocumentURL = ref.URL
	}

	s.bus.Publish(ctx, events.QuoteSent{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     sent.ID,
		QuoteNumber: sent.Number,
		ClientName:  sent.Client.Name,
		ClientEmail: sent.Client.Email,
		Total:       sent.Totals.Total,
		Currency:    string(sent.Currency),
		ValidUntil:  sent.ValidUntil,
		DocumentURL: result.DocumentURL,
		Language:    locale,
	})
	return result, nil
}

// Export renders the quote document on demand. Here the export is the
// operation itself, so its failure is returned.
func (s *Service) Export(ctx context.Context, id uuid.UUID, lang string) (*transport.ExportResponse, error) {
	if s.exporter == nil {
		return nil, apperr.BadRequest("document export is not configured")
	}
	q, err := s.store.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if lang == "" {
		lang = string(q.Language)
	}
	ref, err := s.exporter.Export(ctx, ports.Document{Kind: ports.DocumentQuote, Quote: q}, lang)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to render quote document", err)
	}
	return &transport.ExportResponse{URL: ref.URL, Key: ref.Key}, nil
}

// GetByID returns a quote with its display status.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.QuoteResponse, error) {
	q, err := s.store.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(q, s.now())
	return &resp, nil
}

// List returns a page of quotes filtered by display status, lead and search.
func (s *Service) List(ctx context.Context, req transport.ListQuotesRequest) (*transport.QuoteListResponse, error) {
	now := s.now()
	page, pageSize, window := paging.Normalize(req.Page, req.PageSize)
	filter := ports.QuoteFilter{Search: req.Search, Now: now, Page: window}
	if req.Status != "" {
		status := domain.Status(req.Status)
		filter.Status = &status
	}
	if req.LeadID != "" {
		leadID, err := uuid.Parse(req.LeadID)
		if err != nil {
			return nil, apperr.BadRequest("invalid leadId")
		}
		filter.LeadID = &leadID
	}

	items, total, err := s.store.ListQuotes(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]transport.QuoteResponse, len(items))
	for i, q := range items {
		out[i] = ToResponse(q, now)
	}
	return &transport.QuoteListResponse{
		Items:      out,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: paging.TotalPages(total, pageSize),
	}, nil
}

func advanceLead(ctx context.Context, repo ports.Repository, leadID *uuid.UUID, next leaddomain.Status, now time.Time) error {
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
	if !lead.Advance(next, now) {
		return nil
	}
	return repo.SaveLead(ctx, lead)
}
