package service

import (
	"context"
	"time"

	clients "agency_crm_backend/internal/clients/domain"
	"agency_crm_backend/internal/events"
	"agency_crm_backend/internal/invoices/domain"
	"agency_crm_backend/internal/invoices/transport"
	"agency_crm_backend/internal/numbering"
	"agency_crm_backend/internal/ports"
	"agency_crm_backend/internal/shared/paging"
	"agency_crm_backend/internal/shared/sideeffect"
	"agency_crm_backend/platform/apperr"
	"agency_crm_backend/platform/logger"
	"agency_crm_backend/platform/metrics"
	"agency_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

const documentInvoice = "invoice"

// Service provides business logic for invoices
type Service struct {
	store    ports.Store
	numbers  *numbering.Allocator
	bus      events.Bus
	log      *logger.Logger
	exporter ports.DocumentExporter // optional, nil disables exports
	now      func() time.Time
}

// New creates a new invoices service
func New(store ports.Store, numbers *numbering.Allocator, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:   store,
		numbers: numbers,
		bus:     bus,
		log:     log,
		now:     time.Now,
	}
}

// SetExporter injects the document exporter used for invoices and receipts.
func (s *Service) SetExporter(exporter ports.DocumentExporter) {
	s.exporter = exporter
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// MarkPaid settles a pending (or overdue) invoice. The status swap is the
// serialization point: of two concurrent calls exactly one commits, and only
// that one creates the next recurring invoice.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID, req transport.MarkPaidRequest) (*transport.MarkPaidResponse, error) {
	now := s.now()
	var paid, next *domain.Invoice
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		inv, err := repo.LoadInvoice(ctx, id)
		if err != nil {
			return err
		}
		if err := inv.MarkPaid(sanitize.TextPtr(req.PaymentMethod), now); err != nil {
			return err
		}
		swapped, err := repo.CompareAndSwapInvoiceStatus(ctx, inv, domain.StatusPending)
		if err != nil {
			return err
		}
		if !swapped {
			return domain.ErrConcurrentPayment()
		}

		if inv.Recurring {
			number, err := s.numbers.Next(ctx, repo, numbering.SequenceInvoice)
			if err != nil {
				return err
			}
			next = domain.NextRecurring(inv, uuid.New(), number, now)
			if err := repo.SaveInvoice(ctx, next); err != nil {
				return err
			}
		}
		paid = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(documentInvoice, string(domain.StatusPending), string(domain.StatusPaid))
	s.log.WithContext(ctx).Transition(documentInvoice, paid.Number, string(domain.StatusPending), string(domain.StatusPaid))

	locale := paid.Language
	if req.Language != "" {
		locale = req.Language
	}
	doc := ports.Document{Kind: ports.DocumentReceipt, Invoice: paid, Client: s.clientFor(ctx, paid.ClientID)}
	ref, warning := sideeffect.Export(ctx, s.exporter, doc, locale, s.log)

	result := &transport.MarkPaidResponse{
		PaidInvoice: ToResponse(paid, now),
		Warnings:    sideeffect.Warnings(warning),
	}
	if ref != nil {
		result.ReceiptURL = ref.URL
	}

	paidEvent := events.InvoicePaid{
		BaseEvent:     events.NewBaseEvent(),
		InvoiceID:     paid.ID,
		InvoiceNumber: paid.Number,
		ClientID:      paid.ClientID,
		Total:         paid.Totals.Total,
		Currency:      string(paid.Currency),
		PaymentMethod: derefString(paid.PaymentMethod),
		PaidAt:        now,
		ReceiptURL:    result.ReceiptURL,
	}
	if next != nil {
		metrics.RecurringInvoices.Inc()
		s.log.WithContext(ctx).Info("recurring invoice created", "previous", paid.Number, "number", next.Number, "dueDate", next.DueDate.Format("2006-01-02"))
		nextResp := ToResponse(next, now)
		result.NextInvoice = &nextResp
		paidEvent.NextInvoiceNumber = next.Number
	}

	s.bus.Publish(ctx, paidEvent)
	if next != nil {
		s.bus.Publish(ctx, events.InvoiceCreated{
			BaseEvent:     events.NewBaseEvent(),
			InvoiceID:     next.ID,
			InvoiceNumber: next.Number,
			ClientID:      next.ClientID,
			Total:         next.Totals.Total,
			Currency:      string(next.Currency),
			DueDate:       next.DueDate,
			Recurring:     true,
			PreviousID:    next.PreviousInvoiceID,
		})
	}
	return result, nil
}

// Cancel voids a pending invoice. Paid invoices cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*transport.InvoiceResponse, error) {
	now := s.now()
	var cancelled *domain.Invoice
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		inv, err := repo.LoadInvoice(ctx, id)
		if err != nil {
			return err
		}
		if err := inv.Cancel(now); err != nil {
			return err
		}
		swapped, err := repo.CompareAndSwapInvoiceStatus(ctx, inv, domain.StatusPending)
		if err != nil {
			return err
		}
		if !swapped {
			return apperr.InvalidState("invoice status changed concurrently").
				WithOp("invoice.cancel").
				WithDetails(map[string]string{"reason": "concurrent_transition"})
		}
		cancelled = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(documentInvoice, string(domain.StatusPending), string(domain.StatusCancelled))
	s.log.WithContext(ctx).Transition(documentInvoice, cancelled.Number, string(domain.StatusPending), string(domain.StatusCancelled))
	s.bus.Publish(ctx, events.InvoiceCancelled{
		BaseEvent:     events.NewBaseEvent(),
		InvoiceID:     cancelled.ID,
		InvoiceNumber: cancelled.Number,
		ClientID:      cancelled.ClientID,
	})

	resp := ToResponse(cancelled, now)
	return &resp, nil
}

// Export renders the invoice document and records its URL.
func (s *Service) Export(ctx context.Context, id uuid.UUID, lang string) (*transport.ExportResponse, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	ref, err := s.render(ctx, ports.DocumentInvoice, inv, lang)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetInvoiceDocumentURL(ctx, inv.ID, ref.URL); err != nil {
		s.log.WithContext(ctx).DatabaseError("set invoice document url", err)
	}
	return &transport.ExportResponse{URL: ref.URL, Key: ref.Key}, nil
}

// Receipt renders the payment receipt of a paid invoice.
func (s *Service) Receipt(ctx context.Context, id uuid.UUID, lang string) (*transport.ExportResponse, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != domain.StatusPaid {
		return nil, apperr.InvalidState("receipts exist only for paid invoices").
			WithOp("invoice.receipt").
			WithDetails(map[string]string{"status": string(inv.DisplayStatus(s.now())), "required": string(domain.StatusPaid)})
	}
	ref, err := s.render(ctx, ports.DocumentReceipt, inv, lang)
	if err != nil {
		return nil, err
	}
	return &transport.ExportResponse{URL: ref.URL, Key: ref.Key}, nil
}

// GetByID returns an invoice with its display status.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.InvoiceResponse, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(inv, s.now())
	return &resp, nil
}

// List returns a page of invoices filtered by display status, client and search.
func (s *Service) List(ctx context.Context, req transport.ListInvoicesRequest) (*transport.InvoiceListResponse, error) {
	now := s.now()
	page, pageSize, window := paging.Normalize(req.Page, req.PageSize)
	filter := ports.InvoiceFilter{Search: req.Search, Now: now, Page: window}
	if req.Status != "" {
		status := domain.Status(req.Status)
		filter.Status = &status
	}
	if req.ClientID != "" {
		clientID, err := uuid.Parse(req.ClientID)
		if err != nil {
			return nil, apperr.BadRequest("invalid clientId")
		}
		filter.ClientID = &clientID
	}

	items, total, err := s.store.ListInvoices(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]transport.InvoiceResponse, len(items))
	for i, inv := range items {
		out[i] = ToResponse(inv, now)
	}
	return &transport.InvoiceListResponse{
		Items:      out,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: paging.TotalPages(total, pageSize),
	}, nil
}

func (s *Service) render(ctx context.Context, kind ports.DocumentKind, inv *domain.Invoice, lang string) (ports.ExportRef, error) {
	if s.exporter == nil {
		return ports.ExportRef{}, apperr.BadRequest("document export is not configured")
	}
	if lang == "" {
		lang = inv.Language
	}
	doc := ports.Document{Kind: kind, Invoice: inv, Client: s.clientFor(ctx, inv.ClientID)}
	ref, err := s.exporter.Export(ctx, doc, lang)
	if err != nil {
		return ports.ExportRef{}, apperr.Wrap(apperr.KindInternal, "failed to render "+string(kind)+" document", err)
	}
	return ref, nil
}

// clientFor is best effort: documents render without client details when
// the lookup fails.
func (s *Service) clientFor(ctx context.Context, id uuid.UUID) *clients.Client {
	c, err := s.store.GetClient(ctx, id)
	if err != nil {
		s.log.WithContext(ctx).Warn("client lookup for document failed", "clientId", id, "error", err)
		return nil
	}
	return c
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
