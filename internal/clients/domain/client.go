// Package domain holds the Client aggregate: a lead that had at least one
// quote accepted. Clients are created by quote conversion and are never
// deleted by quote or invoice operations.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is a billable customer.
type Client struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Phone             *string    `json:"phone,omitempty"`
	Company           *string    `json:"company,omitempty"`
	CreatedFromLeadID *uuid.UUID `json:"createdFromLeadId,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// NormalizeEmail is the matching key used to find an existing client.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
