package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateServiceRequest contains data for creating a catalog service.
type CreateServiceRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=100"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=500"`
	DefaultPrice string  `json:"defaultPrice" validate:"required,max=32"`
	Currency     string  `json:"currency" validate:"required,len=3"`
	Category     *string `json:"category,omitempty" validate:"omitempty,max=50"`
}

// UpdateServiceRequest contains data for updating a catalog service.
type UpdateServiceRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=500"`
	DefaultPrice *string `json:"defaultPrice,omitempty" validate:"omitempty,max=32"`
	Currency     *string `json:"currency,omitempty" validate:"omitempty,len=3"`
	Category     *string `json:"category,omitempty" validate:"omitempty,max=50"`
}

// ListServicesRequest is the query for listing catalog services.
type ListServicesRequest struct {
	Search   string `form:"search" validate:"max=100"`
	Category string `form:"category" validate:"max=50"`
	IsActive *bool  `form:"isActive"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ServiceResponse represents a catalog service in API responses.
type ServiceResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	DefaultPrice string    `json:"defaultPrice"`
	Currency     string    `json:"currency"`
	Category     *string   `json:"category,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ServiceListResponse is a page of catalog services.
type ServiceListResponse struct {
	Items      []ServiceResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}
