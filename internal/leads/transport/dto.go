package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateLeadRequest is the request body for creating a lead.
type CreateLeadRequest struct {
	Name    string  `json:"name" validate:"required,min=1,max=200"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   *string `json:"phone" validate:"omitempty,min=5,max=30"`
	Company *string `json:"company" validate:"omitempty,max=200"`
	Source  *string `json:"source" validate:"omitempty,max=100"`
	Notes   *string `json:"notes" validate:"omitempty,max=5000"`
}

// PublicLeadRequest is the website contact form. BotField is a honeypot
// that real visitors never fill in.
type PublicLeadRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone" validate:"omitempty,min=5,max=30"`
	Company  *string `json:"company" validate:"omitempty,max=200"`
	Message  *string `json:"message" validate:"omitempty,max=5000"`
	BotField string  `json:"botField"`
}

// UpdateLeadStatusRequest moves a lead along the pipeline by hand.
type UpdateLeadStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted qualified lost"`
}

// ListLeadsRequest is the query for GET /leads.
type ListLeadsRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=new contacted qualified drafting quoted converted lost"`
	Search   string `form:"search" validate:"max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// LeadResponse is the API shape of a lead.
type LeadResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Company   *string   `json:"company,omitempty"`
	Source    *string   `json:"source,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LeadListResponse is a page of leads.
type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}
