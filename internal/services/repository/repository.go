package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agency_crm_backend/platform/apperr"
)

const catalogServiceNotFoundMessage = "service not found"

const selectColumns = `id, name, description, default_price, currency, category, is_active, created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a catalog service by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (CatalogService, error) {
	query := `SELECT ` + selectColumns + ` FROM catalog_services WHERE id = $1`

	st, err := scanCatalogService(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CatalogService{}, apperr.NotFound(catalogServiceNotFoundMessage)
		}
		return CatalogService{}, fmt.Errorf("get catalog service by id: %w", err)
	}
	return st, nil
}

// List retrieves catalog services with search, category and active filters.
func (r *Repo) List(ctx context.Context, params ListParams) ([]CatalogService, int, error) {
	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}
	var categoryParam interface{}
	if params.Category != "" {
		categoryParam = params.Category
	}
	var isActiveParam interface{}
	if params.IsActive != nil {
		isActiveParam = *params.IsActive
	}

	args := []interface{}{searchParam, categoryParam, isActiveParam}
	where := `
		WHERE ($1::text IS NULL OR name ILIKE $1 OR description ILIKE $1)
			AND ($2::text IS NULL OR category = $2)
			AND ($3::boolean IS NULL OR is_active = $3)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM catalog_services`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count catalog services: %w", err)
	}

	query := `SELECT ` + selectColumns + ` FROM catalog_services` + where + `
		ORDER BY name ASC
		LIMIT $4 OFFSET $5`

	args = append(args, params.Limit, params.Offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list catalog services: %w", err)
	}
	defer rows.Close()

	var results []CatalogService
	for rows.Next() {
		st, err := scanCatalogService(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan catalog service: %w", err)
		}
		results = append(results, st)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate catalog services: %w", err)
	}

	return results, total, nil
}

// Create creates a new catalog service.
func (r *Repo) Create(ctx context.Context, params CreateParams) (CatalogService, error) {
	query := `
		INSERT INTO catalog_services (id, name, description, default_price, currency, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + selectColumns

	st, err := scanCatalogService(r.pool.QueryRow(ctx, query,
		uuid.New(), params.Name, params.Description, params.DefaultPrice, params.Currency, params.Category,
	))
	if err != nil {
		return CatalogService{}, fmt.Errorf("create catalog service: %w", err)
	}
	return st, nil
}

// Update updates an existing catalog service.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (CatalogService, error) {
	query := `
		UPDATE catalog_services SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			default_price = COALESCE($4, default_price),
			currency = COALESCE($5, currency),
			category = COALESCE($6, category),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + selectColumns

	st, err := scanCatalogService(r.pool.QueryRow(ctx, query,
		params.ID, params.Name, params.Description, params.DefaultPrice, params.Currency, params.Category,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CatalogService{}, apperr.NotFound(catalogServiceNotFoundMessage)
		}
		return CatalogService{}, fmt.Errorf("update catalog service: %w", err)
	}
	return st, nil
}

// SetActive sets the is_active flag. Services are never hard-deleted since
// quote line items keep referencing them.
func (r *Repo) SetActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	query := `UPDATE catalog_services SET is_active = $2, updated_at = now() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, isActive)
	if err != nil {
		return fmt.Errorf("set catalog service active: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(catalogServiceNotFoundMessage)
	}
	return nil
}

func scanCatalogService(row pgx.Row) (CatalogService, error) {
	var st CatalogService
	err := row.Scan(
		&st.ID, &st.Name, &st.Description, &st.DefaultPrice, &st.Currency, &st.Category,
		&st.IsActive, &st.CreatedAt, &st.UpdatedAt,
	)
	return st, err
}
