// Package service manages the agency's service catalog. Quotes read it to
// fill line items; nothing in the quote or invoice lifecycle writes to it.
package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"agency_crm_backend/internal/ports"
	"agency_crm_backend/internal/pricing"
	"agency_crm_backend/internal/services/repository"
	"agency_crm_backend/internal/services/transport"
	"agency_crm_backend/internal/shared/paging"
	"agency_crm_backend/platform/apperr"
	"agency_crm_backend/platform/logger"
	"agency_crm_backend/platform/sanitize"
)

// Service provides business logic for catalog services.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new catalog service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

var _ ports.CatalogReader = (*Service)(nil)

// GetCatalogService implements ports.CatalogReader.
func (s *Service) GetCatalogService(ctx context.Context, id uuid.UUID) (ports.CatalogService, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ports.CatalogService{}, err
	}
	return ports.CatalogService{
		ID:           st.ID,
		Name:         st.Name,
		Description:  st.Description,
		DefaultPrice: st.DefaultPrice,
		Currency:     pricing.Currency(st.Currency),
		IsActive:     st.IsActive,
	}, nil
}

// GetByID retrieves a catalog service by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.ServiceResponse, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	return toResponse(st), nil
}

// List retrieves catalog services. Only active services are listed unless
// the caller asks otherwise.
func (s *Service) List(ctx context.Context, req transport.ListServicesRequest) (transport.ServiceListResponse, error) {
	page, pageSize, window := paging.Normalize(req.Page, req.PageSize)

	isActive := req.IsActive
	if isActive == nil {
		defaultActive := true
		isActive = &defaultActive
	}

	items, total, err := s.repo.List(ctx, repository.ListParams{
		Search:   req.Search,
		Category: req.Category,
		IsActive: isActive,
		Offset:   window.Offset,
		Limit:    window.Limit,
	})
	if err != nil {
		return transport.ServiceListResponse{}, err
	}

	responses := make([]transport.ServiceResponse, len(items))
	for i, item := range items {
		responses[i] = toResponse(item)
	}
	return transport.ServiceListResponse{
		Items:      responses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: paging.TotalPages(total, pageSize),
	}, nil
}

// Create creates a new catalog service.
func (s *Service) Create(ctx context.Context, req transport.CreateServiceRequest) (transport.ServiceResponse, error) {
	price, err := parsePrice(req.DefaultPrice)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	currency, err := pricing.ParseCurrency(req.Currency)
	if err != nil {
		return transport.ServiceResponse{}, err
	}

	st, err := s.repo.Create(ctx, repository.CreateParams{
		Name:         sanitize.Text(req.Name),
		Description:  sanitize.TextPtr(req.Description),
		DefaultPrice: price,
		Currency:     string(currency),
		Category:     sanitize.TextPtr(req.Category),
	})
	if err != nil {
		return transport.ServiceResponse{}, err
	}

	s.log.Info("catalog service created", "id", st.ID, "name", st.Name)
	return toResponse(st), nil
}

// Update updates an existing catalog service. Quotes already priced from it
// keep their copied figures.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateServiceRequest) (transport.ServiceResponse, error) {
	params := repository.UpdateParams{
		ID:          id,
		Description: sanitize.TextPtr(req.Description),
		Category:    sanitize.TextPtr(req.Category),
	}
	if req.Name != nil {
		name := sanitize.Text(*req.Name)
		params.Name = &name
	}
	if req.DefaultPrice != nil {
		price, err := parsePrice(*req.DefaultPrice)
		if err != nil {
			return transport.ServiceResponse{}, err
		}
		params.DefaultPrice = &price
	}
	if req.Currency != nil {
		currency, err := pricing.ParseCurrency(*req.Currency)
		if err != nil {
			return transport.ServiceResponse{}, err
		}
		code := string(currency)
		params.Currency = &code
	}

	st, err := s.repo.Update(ctx, params)
	if err != nil {
		return transport.ServiceResponse{}, err
	}

	s.log.Info("catalog service updated", "id", st.ID, "name", st.Name)
	return toResponse(st), nil
}

// ToggleActive flips the is_active flag of a catalog service.
func (s *Service) ToggleActive(ctx context.Context, id uuid.UUID) (transport.ServiceResponse, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}

	newActive := !st.IsActive
	if err := s.repo.SetActive(ctx, id, newActive); err != nil {
		return transport.ServiceResponse{}, err
	}

	st, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}

	s.log.Info("catalog service active toggled", "id", id, "isActive", newActive)
	return toResponse(st), nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperr.Validation("defaultPrice must be a decimal amount")
	}
	if price.IsNegative() {
		return decimal.Zero, apperr.Validation("defaultPrice must not be negative")
	}
	return price.Round(2), nil
}

func toResponse(st repository.CatalogService) transport.ServiceResponse {
	return transport.ServiceResponse{
		ID:           st.ID,
		Name:         st.Name,
		Description:  st.Description,
		DefaultPrice: st.DefaultPrice.StringFixed(2),
		Currency:     st.Currency,
		Category:     st.Category,
		IsActive:     st.IsActive,
		CreatedAt:    st.CreatedAt,
		UpdatedAt:    st.UpdatedAt,
	}
}
