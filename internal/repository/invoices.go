package repository

import (
	"context"
	"fmt"
	"strings"

	invoicedomain "agency_crm_backend/internal/invoices/domain"
	"agency_crm_backend/internal/ports"
	"agency_crm_backend/internal/shared/calendar"
	"agency_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const invoiceNotFoundMsg = "invoice not found"

const invoiceColumns = `id, number, status, currency, tax_rate,
	subtotal, discount_amount, tax, total,
	client_id, source_quote_id, previous_invoice_id, recurring, billing_day, due_date,
	paid_at, cancelled_at, payment_method, language, notes, document_url, created_at, updated_at`

func scanInvoice(row pgx.Row) (*invoicedomain.Invoice, error) {
	var inv invoicedomain.Invoice
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.Status, &inv.Currency, &inv.TaxRate,
		&inv.Totals.Subtotal, &inv.Totals.DiscountAmount, &inv.Totals.Tax, &inv.Totals.Total,
		&inv.ClientID, &inv.SourceQuoteID, &inv.PreviousInvoiceID, &inv.Recurring, &inv.BillingDay, &inv.DueDate,
		&inv.PaidAt, &inv.CancelledAt, &inv.PaymentMethod, &inv.Language, &inv.Notes, &inv.DocumentURL, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func getInvoice(ctx context.Context, q querier, id uuid.UUID) (*invoicedomain.Invoice, error) {
	inv, err := scanInvoice(q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, invoiceNotFoundMsg, "load invoice")
	}
	items, err := loadItems(ctx, q, invoiceItems, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	inv.Items = items[id]
	return inv, nil
}

// LoadInvoice implements ports.Repository. The row is not locked: status
// transitions go through CompareAndSwapInvoiceStatus.
func (r *txRepo) LoadInvoice(ctx context.Context, id uuid.UUID) (*invoicedomain.Invoice, error) {
	return getInvoice(ctx, r.q, id)
}

// SaveInvoice implements ports.Repository. Invoices are immutable apart from
// their status fields, so only new rows are written here.
func (r *txRepo) SaveInvoice(ctx context.Context, inv *invoicedomain.Invoice) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		inv.ID, inv.Number, inv.Status, inv.Currency, inv.TaxRate,
		inv.Totals.Subtotal, inv.Totals.DiscountAmount, inv.Totals.Tax, inv.Totals.Total,
		inv.ClientID, inv.SourceQuoteID, inv.PreviousInvoiceID, inv.Recurring, inv.BillingDay, inv.DueDate,
		inv.PaidAt, inv.CancelledAt, inv.PaymentMethod, inv.Language, inv.Notes, inv.DocumentURL, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return mapError("save invoice", err)
	}
	return replaceItems(ctx, r.q, invoiceItems, inv.ID, inv.Items)
}

// CompareAndSwapInvoiceStatus implements ports.Repository. A concurrent
// writer holding the row makes this UPDATE wait, after which the status
// predicate is re-evaluated, so exactly one of two racing payments matches.
func (r *txRepo) CompareAndSwapInvoiceStatus(ctx context.Context, inv *invoicedomain.Invoice, from invoicedomain.Status) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE invoices SET
			status = $2,
			paid_at = $3,
			cancelled_at = $4,
			payment_method = $5,
			updated_at = $6
		WHERE id = $1 AND status = $7`,
		inv.ID, inv.Status, inv.PaidAt, inv.CancelledAt, inv.PaymentMethod, inv.UpdatedAt, from,
	)
	if err != nil {
		return false, mapError("swap invoice status", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM invoices WHERE id = $1)`, inv.ID).Scan(&exists); err != nil {
		return false, mapError("swap invoice status", err)
	}
	if !exists {
		return false, apperr.NotFound(invoiceNotFoundMsg)
	}
	return false, nil
}

// GetInvoice implements ports.Reader.
func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoicedomain.Invoice, error) {
	return getInvoice(ctx, s.pool, id)
}

// SetInvoiceDocumentURL implements ports.Store.
func (s *Store) SetInvoiceDocumentURL(ctx context.Context, id uuid.UUID, url string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE invoices SET document_url = $2, updated_at = now() WHERE id = $1`, id, url)
	if err != nil {
		return mapError("set invoice document url", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(invoiceNotFoundMsg)
	}
	return nil
}

// ListInvoices implements ports.Reader. Newest first. Overdue is matched on
// pending invoices whose due date lies before today.
func (s *Store) ListInvoices(ctx context.Context, f ports.InvoiceFilter) ([]*invoicedomain.Invoice, int, error) {
	w := &whereBuilder{}
	if f.Status != nil {
		today := calendar.DateOf(f.Now)
		switch *f.Status {
		case invoicedomain.StatusOverdue:
			w.add("status = 'pending' AND due_date < %s", today)
		case invoicedomain.StatusPending:
			w.add("status = 'pending' AND due_date >= %s", today)
		default:
			w.add("status = %s", *f.Status)
		}
	}
	if f.ClientID != nil {
		w.add("client_id = %s", *f.ClientID)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		w.add("number ILIKE %s", "%"+search+"%")
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices` + w.sql() + w.page(f.Page, "created_at DESC, number DESC")
	rows, err := s.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var (
		out []*invoicedomain.Invoice
		ids []uuid.UUID
	)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, inv)
		ids = append(ids, inv.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate invoices: %w", err)
	}

	items, err := loadItems(ctx, s.pool, invoiceItems, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, inv := range out {
		inv.Items = items[inv.ID]
	}
	return out, total, nil
}
