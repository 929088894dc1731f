package repository

import (
	"context"
	"fmt"
	"strings"

	"agency_crm_backend/internal/ports"
	quotedomain "agency_crm_backend/internal/quotes/domain"
	"agency_crm_backend/internal/shared/calendar"
	"agency_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const quoteNotFoundMsg = "quote not found"

const quoteColumns = `id, number, status, currency, discount_type, discount_value, tax_rate,
	subtotal, discount_amount, tax, total,
	client_name, client_email, client_phone, client_company, lead_id,
	valid_until, language, notes, recurring_billing, sent_at, decided_at, created_at, updated_at`

func scanQuote(row pgx.Row) (*quotedomain.Quote, error) {
	var q quotedomain.Quote
	err := row.Scan(
		&q.ID, &q.Number, &q.Status, &q.Currency, &q.Discount.Type, &q.Discount.Value, &q.TaxRate,
		&q.Totals.Subtotal, &q.Totals.DiscountAmount, &q.Totals.Tax, &q.Totals.Total,
		&q.Client.Name, &q.Client.Email, &q.Client.Phone, &q.Client.Company, &q.LeadID,
		&q.ValidUntil, &q.Language, &q.Notes, &q.RecurringBilling, &q.SentAt, &q.DecidedAt, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func getQuote(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*quotedomain.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	quote, err := scanQuote(q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, quoteNotFoundMsg, "load quote")
	}
	items, err := loadItems(ctx, q, quoteItems, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	quote.Items = items[id]
	return quote, nil
}

// LoadQuote implements ports.Repository. The row stays locked until the unit
// of work ends.
func (r *txRepo) LoadQuote(ctx context.Context, id uuid.UUID) (*quotedomain.Quote, error) {
	return getQuote(ctx, r.q, id, true)
}

// SaveQuote implements ports.Repository.
func (r *txRepo) SaveQuote(ctx context.Context, q *quotedomain.Quote) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO quotes (`+quoteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			currency = EXCLUDED.currency,
			discount_type = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value,
			tax_rate = EXCLUDED.tax_rate,
			subtotal = EXCLUDED.subtotal,
			discount_amount = EXCLUDED.discount_amount,
			tax = EXCLUDED.tax,
			total = EXCLUDED.total,
			client_name = EXCLUDED.client_name,
			client_email = EXCLUDED.client_email,
			client_phone = EXCLUDED.client_phone,
			client_company = EXCLUDED.client_company,
			lead_id = EXCLUDED.lead_id,
			valid_until = EXCLUDED.valid_until,
			language = EXCLUDED.language,
			notes = EXCLUDED.notes,
			recurring_billing = EXCLUDED.recurring_billing,
			sent_at = EXCLUDED.sent_at,
			decided_at = EXCLUDED.decided_at,
			updated_at = EXCLUDED.updated_at`,
		q.ID, q.Number, q.Status, q.Currency, q.Discount.Type, q.Discount.Value, q.TaxRate,
		q.Totals.Subtotal, q.Totals.DiscountAmount, q.Totals.Tax, q.Totals.Total,
		q.Client.Name, q.Client.Email, q.Client.Phone, q.Client.Company, q.LeadID,
		q.ValidUntil, q.Language, q.Notes, q.RecurringBilling, q.SentAt, q.DecidedAt, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return mapError("save quote", err)
	}
	return replaceItems(ctx, r.q, quoteItems, q.ID, q.Items)
}

// DeleteQuote implements ports.Repository. Line items cascade.
func (r *txRepo) DeleteQuote(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return mapError("delete quote", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMsg)
	}
	return nil
}

// GetQuote implements ports.Reader.
func (s *Store) GetQuote(ctx context.Context, id uuid.UUID) (*quotedomain.Quote, error) {
	return getQuote(ctx, s.pool, id, false)
}

// ListQuotes implements ports.Reader. Newest first. Expired is matched on
// open quotes whose validity date lies before today.
func (s *Store) ListQuotes(ctx context.Context, f ports.QuoteFilter) ([]*quotedomain.Quote, int, error) {
	w := &whereBuilder{}
	if f.Status != nil {
		today := calendar.DateOf(f.Now)
		switch *f.Status {
		case quotedomain.StatusExpired:
			w.add("status IN ('draft', 'sent') AND valid_until < %s", today)
		case quotedomain.StatusDraft, quotedomain.StatusSent:
			w.add("status = %s", *f.Status)
			w.add("valid_until >= %s", today)
		default:
			w.add("status = %s", *f.Status)
		}
	}
	if f.LeadID != nil {
		w.add("lead_id = %s", *f.LeadID)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		w.add("(number ILIKE %[1]s OR client_name ILIKE %[1]s OR client_email ILIKE %[1]s)", "%"+search+"%")
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quotes`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count quotes: %w", err)
	}

	query := `SELECT ` + quoteColumns + ` FROM quotes` + w.sql() + w.page(f.Page, "created_at DESC, number DESC")
	rows, err := s.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	var (
		out []*quotedomain.Quote
		ids []uuid.UUID
	)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan quote: %w", err)
		}
		out = append(out, q)
		ids = append(ids, q.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate quotes: %w", err)
	}

	items, err := loadItems(ctx, s.pool, quoteItems, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, q := range out {
		q.Items = items[q.ID]
	}
	return out, total, nil
}
