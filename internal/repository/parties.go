package repository

import (
	"context"
	"fmt"
	"strings"

	clients "agency_crm_backend/internal/clients/domain"
	leaddomain "agency_crm_backend/internal/leads/domain"
	"agency_crm_backend/internal/ports"
	"agency_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	clientNotFoundMsg = "client not found"
	leadNotFoundMsg   = "lead not found"
)

const clientEmailIndex = "idx_clients_email"

const clientColumns = `id, name, email, phone, company, created_from_lead_id, created_at, updated_at`

const leadColumns = `id, name, email, phone, company, source, notes, status, created_at, updated_at`

func scanClient(row pgx.Row) (*clients.Client, error) {
	var c clients.Client
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.CreatedFromLeadID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanLead(row pgx.Row) (*leaddomain.Lead, error) {
	var l leaddomain.Lead
	if err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Company, &l.Source, &l.Notes, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// LoadClientByEmail implements ports.Repository. Matching uses the same
// normalization as the unique index on clients.
func (r *txRepo) LoadClientByEmail(ctx context.Context, email string) (*clients.Client, error) {
	c, err := scanClient(r.q.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE lower(trim(email)) = $1 FOR UPDATE`,
		clients.NormalizeEmail(email),
	))
	if err != nil {
		return nil, notFoundOr(err, clientNotFoundMsg, "load client by email")
	}
	return c, nil
}

// SaveClient implements ports.Repository.
func (r *txRepo) SaveClient(ctx context.Context, c *clients.Client) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			company = EXCLUDED.company,
			updated_at = EXCLUDED.updated_at`,
		c.ID, c.Name, c.Email, c.Phone, c.Company, c.CreatedFromLeadID, c.CreatedAt, c.UpdatedAt,
	)
	return clientSaveError(err)
}

// clientSaveError maps a unique violation on the email index to a lost race:
// another unit of work created the client after our LoadClientByEmail missed.
// The transaction is aborted either way, so the caller retries from scratch.
func clientSaveError(err error) error {
	mapped := mapError("save client", err)
	if !apperr.Is(mapped, apperr.KindConflict) {
		return mapped
	}
	return apperr.Wrap(apperr.KindConcurrencyConflict, "a client with this email was created concurrently, retry the request", err).
		WithOp("save client").
		WithDetails(map[string]string{"constraint": clientEmailIndex})
}

// LoadLead implements ports.Repository. The row stays locked until the unit
// of work ends.
func (r *txRepo) LoadLead(ctx context.Context, id uuid.UUID) (*leaddomain.Lead, error) {
	l, err := scanLead(r.q.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFoundOr(err, leadNotFoundMsg, "load lead")
	}
	return l, nil
}

// SaveLead implements ports.Repository.
func (r *txRepo) SaveLead(ctx context.Context, l *leaddomain.Lead) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO leads (`+leadColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			company = EXCLUDED.company,
			source = EXCLUDED.source,
			notes = EXCLUDED.notes,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`,
		l.ID, l.Name, l.Email, l.Phone, l.Company, l.Source, l.Notes, l.Status, l.CreatedAt, l.UpdatedAt,
	)
	return mapError("save lead", err)
}

// DeleteLead implements ports.Repository.
func (r *txRepo) DeleteLead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return mapError("delete lead", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}
	return nil
}

// IncrementAndGet implements numbering.Store. The upsert holds the counter
// row until the unit of work ends, so numbers are gapless and roll back with
// the document they were allocated for.
func (r *txRepo) IncrementAndGet(ctx context.Context, key string) (int64, error) {
	var value int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO document_counters (sequence, value) VALUES ($1, 1)
		ON CONFLICT (sequence) DO UPDATE SET value = document_counters.value + 1
		RETURNING value`, key,
	).Scan(&value)
	if err != nil {
		return 0, mapError("increment counter", err)
	}
	return value, nil
}

// GetClient implements ports.Reader.
func (s *Store) GetClient(ctx context.Context, id uuid.UUID) (*clients.Client, error) {
	c, err := scanClient(s.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, clientNotFoundMsg, "get client")
	}
	return c, nil
}

// ListClients implements ports.Reader. Ordered by name.
func (s *Store) ListClients(ctx context.Context, f ports.ClientFilter) ([]*clients.Client, int, error) {
	w := &whereBuilder{}
	if search := strings.TrimSpace(f.Search); search != "" {
		w.add("(name ILIKE %[1]s OR email ILIKE %[1]s)", "%"+search+"%")
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clients`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	rows, err := s.pool.Query(ctx, `SELECT `+clientColumns+` FROM clients`+w.sql()+w.page(f.Page, "name ASC, id"), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []*clients.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate clients: %w", err)
	}
	return out, total, nil
}

// GetLead implements ports.Reader.
func (s *Store) GetLead(ctx context.Context, id uuid.UUID) (*leaddomain.Lead, error) {
	l, err := scanLead(s.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, leadNotFoundMsg, "get lead")
	}
	return l, nil
}

// ListLeads implements ports.Reader. Newest first.
func (s *Store) ListLeads(ctx context.Context, f ports.LeadFilter) ([]*leaddomain.Lead, int, error) {
	w := &whereBuilder{}
	if f.Status != nil {
		w.add("status = %s", string(*f.Status))
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		w.add("(name ILIKE %[1]s OR email ILIKE %[1]s OR company ILIKE %[1]s)", "%"+search+"%")
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	rows, err := s.pool.Query(ctx, `SELECT `+leadColumns+` FROM leads`+w.sql()+w.page(f.Page, "created_at DESC, id DESC"), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var out []*leaddomain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate leads: %w", err)
	}
	return out, total, nil
}
