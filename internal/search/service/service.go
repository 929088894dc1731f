package service

import (
	"context"
	"sort"
	"strings"
	"time"

	clients "agency_crm_backend/internal/clients/domain"
	invoicedomain "agency_crm_backend/internal/invoices/domain"
	leaddomain "agency_crm_backend/internal/leads/domain"
	"agency_crm_backend/internal/ports"
	"agency_crm_backend/internal/pricing"
	quotedomain "agency_crm_backend/internal/quotes/domain"
	"agency_crm_backend/internal/search/transport"
	"agency_crm_backend/platform/apperr"

	"golang.org/x/sync/errgroup"
)

const defaultLimit = 10

type Service struct {
	store ports.Reader
	now   func() time.Time
}

func New(store ports.Reader) *Service {
	return &Service{store: store, now: time.Now}
}

// SetClock overrides the time source used for derived statuses.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// GlobalSearch looks the query up in leads, clients, quotes and invoices and
// returns the newest matches first. Total counts every match, not only the
// returned ones.
func (s *Service) GlobalSearch(ctx context.Context, req transport.SearchRequest) (*transport.SearchResponse, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return &transport.SearchResponse{Items: []transport.SearchResultItem{}, Total: 0}, nil
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	window := ports.Page{Offset: 0, Limit: limit}
	now := s.now()

	var (
		leads    []*leaddomain.Lead
		parties  []*clients.Client
		quotes   []*quotedomain.Quote
		invoices []*invoicedomain.Invoice
		totals   [4]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leads, totals[0], err = s.store.ListLeads(gctx, ports.LeadFilter{Search: q, Page: window})
		return err
	})
	g.Go(func() error {
		var err error
		parties, totals[1], err = s.store.ListClients(gctx, ports.ClientFilter{Search: q, Page: window})
		return err
	})
	g.Go(func() error {
		var err error
		quotes, totals[2], err = s.store.ListQuotes(gctx, ports.QuoteFilter{Search: q, Now: now, Page: window})
		return err
	})
	g.Go(func() error {
		var err error
		invoices, totals[3], err = s.store.ListInvoices(gctx, ports.InvoiceFilter{Search: q, Now: now, Page: window})
		return err
	})
	if err := g.Wait(); err != nil {
		appErr := apperr.Internal("search failed").WithOp("search.GlobalSearch")
		appErr.Err = err
		return nil, appErr
	}

	items := make([]transport.SearchResultItem, 0, len(leads)+len(parties)+len(quotes)+len(invoices))
	for _, l := range leads {
		items = append(items, transport.SearchResultItem{
			ID:        l.ID,
			Type:      "lead",
			Title:     l.Name,
			Subtitle:  l.Email,
			Status:    string(l.Status),
			Link:      "/api/v1/leads/" + l.ID.String(),
			CreatedAt: l.CreatedAt,
		})
	}
	for _, c := range parties {
		items = append(items, transport.SearchResultItem{
			ID:        c.ID,
			Type:      "client",
			Title:     c.Name,
			Subtitle:  c.Email,
			Link:      "/api/v1/clients/" + c.ID.String(),
			CreatedAt: c.CreatedAt,
		})
	}
	for _, qt := range quotes {
		items = append(items, transport.SearchResultItem{
			ID:        qt.ID,
			Type:      "quote",
			Title:     qt.Number,
			Subtitle:  qt.Client.Name,
			Status:    string(qt.DisplayStatus(now)),
			Link:      "/api/v1/quotes/" + qt.ID.String(),
			CreatedAt: qt.CreatedAt,
		})
	}
	for _, inv := range invoices {
		items = append(items, transport.SearchResultItem{
			ID:        inv.ID,
			Type:      "invoice",
			Title:     inv.Number,
			Subtitle:  pricing.Format(inv.Totals.Total, inv.Currency, inv.Language),
			Status:    string(inv.DisplayStatus(now)),
			Link:      "/api/v1/invoices/" + inv.ID.String(),
			CreatedAt: inv.CreatedAt,
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	if len(items) > limit {
		items = items[:limit]
	}

	return &transport.SearchResponse{Items: items, Total: totals[0] + totals[1] + totals[2] + totals[3]}, nil
}
