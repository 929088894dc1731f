package transport

import (
	"time"

	"github.com/google/uuid"
)

type SearchRequest struct {
	Query string `form:"q" validate:"required,min=2,max=100"`
	Limit int    `form:"limit" validate:"omitempty,min=1,max=50"`
}

type SearchResultItem struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`     // "lead", "client", "quote", "invoice"
	Title     string    `json:"title"`    // Name or document number
	Subtitle  string    `json:"subtitle"` // Email, client name or total
	Status    string    `json:"status,omitempty"`
	Link      string    `json:"link"` // API path of the resource
	CreatedAt time.Time `json:"createdAt"`
}

type SearchResponse struct {
	Items []SearchResultItem `json:"items"`
	Total int                `json:"total"`
}
