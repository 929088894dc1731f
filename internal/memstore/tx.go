package memstore

import (
	"context"

	clients "agency_crm_backend/internal/clients/domain"
	invoicedomain "agency_crm_backend/internal/invoices/domain"
	leaddomain "agency_crm_backend/internal/leads/domain"
	"agency_crm_backend/internal/ports"
	"agency_crm_backend/internal/pricing"
	quotedomain "agency_crm_backend/internal/quotes/domain"
	"agency_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// txRepo operates on the working copy of a unit of work.
type txRepo struct {
	st *state
}

var _ ports.Repository = (*txRepo)(nil)

func (r *txRepo) IncrementAndGet(_ context.Context, key string) (int64, error) {
	r.st.counters[key]++
	return r.st.counters[key], nil
}

func (r *txRepo) LoadQuote(_ context.Context, id uuid.UUID) (*quotedomain.Quote, error) {
	return loadQuote(r.st, id)
}

func (r *txRepo) SaveQuote(_ context.Context, q *quotedomain.Quote) error {
	for id, existing := range r.st.quotes {
		if existing.Number == q.Number && id != q.ID {
			return apperr.Conflict("quote number already in use")
		}
	}
	r.st.quotes[q.ID] = *cloneQuote(*q)
	return nil
}

func (r *txRepo) DeleteQuote(_ context.Context, id uuid.UUID) error {
	if _, ok := r.st.quotes[id]; !ok {
		return apperr.NotFound(quoteNotFoundMsg)
	}
	delete(r.st.quotes, id)
	return nil
}

func (r *txRepo) LoadInvoice(_ context.Context, id uuid.UUID) (*invoicedomain.Invoice, error) {
	return loadInvoice(r.st, id)
}

func (r *txRepo) SaveInvoice(_ context.Context, inv *invoicedomain.Invoice) error {
	for id, existing := range r.st.invoices {
		if existing.Number == inv.Number && id != inv.ID {
			return apperr.Conflict("invoice number already in use")
		}
	}
	r.st.invoices[inv.ID] = *cloneInvoice(*inv)
	return nil
}

func (r *txRepo) CompareAndSwapInvoiceStatus(_ context.Context, inv *invoicedomain.Invoice, from invoicedomain.Status) (bool, error) {
	stored, ok := r.st.invoices[inv.ID]
	if !ok {
		return false, apperr.NotFound(invoiceNotFoundMsg)
	}
	if stored.Status != from {
		return false, nil
	}
	stored.Status = inv.Status
	stored.PaidAt = inv.PaidAt
	stored.CancelledAt = inv.CancelledAt
	stored.PaymentMethod = inv.PaymentMethod
	stored.UpdatedAt = inv.UpdatedAt
	r.st.invoices[inv.ID] = stored
	return true, nil
}

func (r *txRepo) LoadClientByEmail(_ context.Context, email string) (*clients.Client, error) {
	key := clients.NormalizeEmail(email)
	for _, c := range r.st.clients {
		if clients.NormalizeEmail(c.Email) == key {
			c := c
			return &c, nil
		}
	}
	return nil, apperr.NotFound(clientNotFoundMsg)
}

func (r *txRepo) SaveClient(_ context.Context, c *clients.Client) error {
	key := clients.NormalizeEmail(c.Email)
	for id, existing := range r.st.clients {
		if id != c.ID && clients.NormalizeEmail(existing.Email) == key {
			return apperr.Conflict("a client with this email already exists")
		}
	}
	r.st.clients[c.ID] = *c
	return nil
}

func (r *txRepo) LoadLead(_ context.Context, id uuid.UUID) (*leaddomain.Lead, error) {
	return loadLead(r.st, id)
}

func (r *txRepo) SaveLead(_ context.Context, l *leaddomain.Lead) error {
	r.st.leads[l.ID] = *l
	return nil
}

func (r *txRepo) DeleteLead(_ context.Context, id uuid.UUID) error {
	if _, ok := r.st.leads[id]; !ok {
		return apperr.NotFound(leadNotFoundMsg)
	}
	delete(r.st.leads, id)
	return nil
}

func loadQuote(st *state, id uuid.UUID) (*quotedomain.Quote, error) {
	q, ok := st.quotes[id]
	if !ok {
		return nil, apperr.NotFound(quoteNotFoundMsg)
	}
	return cloneQuote(q), nil
}

func loadInvoice(st *state, id uuid.UUID) (*invoicedomain.Invoice, error) {
	inv, ok := st.invoices[id]
	if !ok {
		return nil, apperr.NotFound(invoiceNotFoundMsg)
	}
	return cloneInvoice(inv), nil
}

func loadLead(st *state, id uuid.UUID) (*leaddomain.Lead, error) {
	l, ok := st.leads[id]
	if !ok {
		return nil, apperr.NotFound(leadNotFoundMsg)
	}
	return &l, nil
}

func cloneQuote(q quotedomain.Quote) *quotedomain.Quote {
	q.Items = cloneItems(q.Items)
	return &q
}

func cloneInvoice(inv invoicedomain.Invoice) *invoicedomain.Invoice {
	inv.Items = cloneItems(inv.Items)
	return &inv
}

func cloneItems(items []pricing.LineItem) []pricing.LineItem {
	out := make([]pricing.LineItem, len(items))
	copy(out, items)
	return out
}
