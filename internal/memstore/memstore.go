// Package memstore is an in-memory ports.Store. Units of work are
// serialized and applied copy-on-write, so a failed unit leaves no trace.
// It backs the test suites and STORE_DRIVER=memory.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	clients "agency_crm_backend/internal/clients/domain"
	invoicedomain "agency_crm_backend/internal/invoices/domain"
	leaddomain "agency_crm_backend/internal/leads/domain"
	"agency_crm_backend/internal/ports"
	quotedomain "agency_crm_backend/internal/quotes/domain"
	"agency_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

const (
	quoteNotFoundMsg   = "quote not found"
	invoiceNotFoundMsg = "invoice not found"
	clientNotFoundMsg  = "client not found"
	leadNotFoundMsg    = "lead not found"
)

type state struct {
	quotes   map[uuid.UUID]quotedomain.Quote
	invoices map[uuid.UUID]invoicedomain.Invoice
	clients  map[uuid.UUID]clients.Client
	leads    map[uuid.UUID]leaddomain.Lead
	counters map[string]int64
}

func newState() *state {
	return &state{
		quotes:   make(map[uuid.UUID]quotedomain.Quote),
		invoices: make(map[uuid.UUID]invoicedomain.Invoice),
		clients:  make(map[uuid.UUID]clients.Client),
		leads:    make(map[uuid.UUID]leaddomain.Lead),
		counters: make(map[string]int64),
	}
}

func (s *state) clone() *state {
	out := &state{
		quotes:   make(map[uuid.UUID]quotedomain.Quote, len(s.quotes)),
		invoices: make(map[uuid.UUID]invoicedomain.Invoice, len(s.invoices)),
		clients:  make(map[uuid.UUID]clients.Client, len(s.clients)),
		leads:    make(map[uuid.UUID]leaddomain.Lead, len(s.leads)),
		counters: make(map[string]int64, len(s.counters)),
	}
	for k, v := range s.quotes {
		out.quotes[k] = v
	}
	for k, v := range s.invoices {
		out.invoices[k] = v
	}
	for k, v := range s.clients {
		out.clients[k] = v
	}
	for k, v := range s.leads {
		out.leads[k] = v
	}
	for k, v := range s.counters {
		out.counters[k] = v
	}
	return out
}

// Store implements ports.Store in memory.
type Store struct {
	mu    sync.RWMutex
	state *state
}

var _ ports.Store = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	return &Store{state: newState()}
}

// WithinTx implements ports.Store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repo ports.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.state.clone()
	if err := fn(ctx, &txRepo{st: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// SetInvoiceDocumentURL implements ports.Store.
func (s *Store) SetInvoiceDocumentURL(_ context.Context, id uuid.UUID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.state.invoices[id]
	if !ok {
		return apperr.NotFound(invoiceNotFoundMsg)
	}
	inv.DocumentURL = &url
	s.state.invoices[id] = inv
	return nil
}

// SeedLead inserts a lead directly. Used by tests and local demos.
func (s *Store) SeedLead(l leaddomain.Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.leads[l.ID] = l
}

// GetQuote implements ports.Reader.
func (s *Store) GetQuote(_ context.Context, id uuid.UUID) (*quotedomain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return loadQuote(s.state, id)
}

// GetInvoice implements ports.Reader.
func (s *Store) GetInvoice(_ context.Context, id uuid.UUID) (*invoicedomain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return loadInvoice(s.state, id)
}

// GetClient implements ports.Reader.
func (s *Store) GetClient(_ context.Context, id uuid.UUID) (*clients.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.clients[id]
	if !ok {
		return nil, apperr.NotFound(clientNotFoundMsg)
	}
	return &c, nil
}

// GetLead implements ports.Reader.
func (s *Store) GetLead(_ context.Context, id uuid.UUID) (*leaddomain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return loadLead(s.state, id)
}

// ListQuotes implements ports.Reader. Newest first.
func (s *Store) ListQuotes(_ context.Context, f ports.QuoteFilter) ([]*quotedomain.Quote, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(f.Search)
	var matched []*quotedomain.Quote
	for _, q := range s.state.quotes {
		if f.Status != nil && q.DisplayStatus(f.Now) != *f.Status {
			continue
		}
		if f.LeadID != nil && (q.LeadID == nil || *q.LeadID != *f.LeadID) {
			continue
		}
		if search != "" && !containsAny(search, q.Number, q.Client.Name, q.Client.Email) {
			continue
		}
		matched = append(matched, cloneQuote(q))
	}
	sort.Slice(matched, func(i, j int) bool { return newerFirst(matched[i].CreatedAt.UnixNano(), matched[j].CreatedAt.UnixNano(), matched[i].Number, matched[j].Number) })
	return paginate(matched, f.Page), len(matched), nil
}

// ListInvoices implements ports.Reader. Newest first.
func (s *Store) ListInvoices(_ context.Context, f ports.InvoiceFilter) ([]*invoicedomain.Invoice, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(f.Search)
	var matched []*invoicedomain.Invoice
	for _, inv := range s.state.invoices {
		if f.Status != nil && inv.DisplayStatus(f.Now) != *f.Status {
			continue
		}
		if f.ClientID != nil && inv.ClientID != *f.ClientID {
			continue
		}
		if search != "" && !containsAny(search, inv.Number) {
			continue
		}
		matched = append(matched, cloneInvoice(inv))
	}
	sort.Slice(matched, func(i, j int) bool { return newerFirst(matched[i].CreatedAt.UnixNano(), matched[j].CreatedAt.UnixNano(), matched[i].Number, matched[j].Number) })
	return paginate(matched, f.Page), len(matched), nil
}

// ListClients implements ports.Reader. Ordered by name.
func (s *Store) ListClients(_ context.Context, f ports.ClientFilter) ([]*clients.Client, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(f.Search)
	var matched []*clients.Client
	for _, c := range s.state.clients {
		if search != "" && !containsAny(search, c.Name, c.Email) {
			continue
		}
		c := c
		matched = append(matched, &c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return paginate(matched, f.Page), len(matched), nil
}

// ListLeads implements ports.Reader. Newest first.
func (s *Store) ListLeads(_ context.Context, f ports.LeadFilter) ([]*leaddomain.Lead, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(f.Search)
	var matched []*leaddomain.Lead
	for _, l := range s.state.leads {
		if f.Status != nil && l.Status != *f.Status {
			continue
		}
		if search != "" && !containsAny(search, l.Name, l.Email, deref(l.Company)) {
			continue
		}
		l := l
		matched = append(matched, &l)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})
	return paginate(matched, f.Page), len(matched), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func newerFirst(a, b int64, numA, numB string) bool {
	if a != b {
		return a > b
	}
	return numA > numB
}

func containsAny(needle string, haystack ...string) bool {
	for _, h := range haystack {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, p ports.Page) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if p.Limit > 0 && p.Offset+p.Limit < end {
		end = p.Offset + p.Limit
	}
	return items[p.Offset:end]
}
