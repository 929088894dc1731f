// Package service exposes clients read-only. Clients are only ever written
// by quote conversion.
package service

import (
	"context"

	"agency_crm_backend/internal/clients/domain"
	"agency_crm_backend/internal/clients/transport"
	"agency_crm_backend/internal/ports"
	"agency_crm_backend/internal/shared/paging"

	"github.com/google/uuid"
)

// Service provides client queries.
type Service struct {
	store ports.Reader
}

// New creates a new clients service.
func New(store ports.Reader) *Service {
	return &Service{store: store}
}

// GetByID returns a client.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.ClientResponse, error) {
	c, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(c)
	return &resp, nil
}

// List returns a page of clients ordered by name.
func (s *Service) List(ctx context.Context, req transport.ListClientsRequest) (*transport.ClientListResponse, error) {
	page, pageSize, window := paging.Normalize(req.Page, req.PageSize)
	items, total, err := s.store.ListClients(ctx, ports.ClientFilter{Search: req.Search, Page: window})
	if err != nil {
		return nil, err
	}
	out := make([]transport.ClientResponse, len(items))
	for i, c := range items {
		out[i] = ToResponse(c)
	}
	return &transport.ClientListResponse{
		Items:      out,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: paging.TotalPages(total, pageSize),
	}, nil
}

// ToResponse maps a client to its API shape.
func ToResponse(c *domain.Client) transport.ClientResponse {
	return transport.ClientResponse{
		ID:                c.ID,
		Name:              c.Name,
		Email:             c.Email,
		Phone:             c.Phone,
		Company:           c.Company,
		CreatedFromLeadID: c.CreatedFromLeadID,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}
