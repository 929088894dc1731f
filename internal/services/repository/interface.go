package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogService is a billable service offered by the agency.
type CatalogService struct {
	ID           uuid.UUID
	Name         string
	Description  *string
	DefaultPrice decimal.Decimal
	Currency     string
	Category     *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateParams contains parameters for creating a catalog service.
type CreateParams struct {
	Name         string
	Description  *string
	DefaultPrice decimal.Decimal
	Currency     string
	Category     *string
}

// UpdateParams contains parameters for updating a catalog service.
// Nil fields are left unchanged.
type UpdateParams struct {
	ID           uuid.UUID
	Name         *string
	Description  *string
	DefaultPrice *decimal.Decimal
	Currency     *string
	Category     *string
}

// ListParams contains parameters for listing catalog services.
type ListParams struct {
	Search   string
	Category string
	IsActive *bool
	Offset   int
	Limit    int
}

// Reader provides read operations for catalog services.
type Reader interface {
	GetByID(ctx context.Context, id uuid.UUID) (CatalogService, error)
	List(ctx context.Context, params ListParams) ([]CatalogService, int, error)
}

// Writer provides write operations for catalog services.
type Writer interface {
	Create(ctx context.Context, params CreateParams) (CatalogService, error)
	Update(ctx context.Context, params UpdateParams) (CatalogService, error)
	SetActive(ctx context.Context, id uuid.UUID, isActive bool) error
}

// Repository combines all catalog repository operations.
type Repository interface {
	Reader
	Writer
}
