// Package domain provides core business rules for the leads bounded context.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the pipeline position of a lead.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusDrafting  Status = "drafting"
	StatusQuoted    Status = "quoted"
	StatusConverted Status = "converted"
	StatusLost      Status = "lost"
)

var knownStatuses = map[Status]struct{}{
	StatusNew:       {},
	StatusContacted: {},
	StatusQualified: {},
	StatusDrafting:  {},
	StatusQuoted:    {},
	StatusConverted: {},
	StatusLost:      {},
}

// IsKnownStatus reports whether s is a valid lead status.
func IsKnownStatus(s Status) bool {
	_, ok := knownStatuses[s]
	return ok
}

// IsTerminal reports whether the lead left the pipeline.
func (s Status) IsTerminal() bool {
	return s == StatusConverted || s == StatusLost
}

// Lead is an unconverted contact. Quotes copy its contact fields into a
// snapshot, so later edits on either side do not propagate.
type Lead struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Company   *string   `json:"company,omitempty"`
	Source    *string   `json:"source,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Advance moves the lead to next unless it already reached a terminal
// status. It reports whether the status changed.
func (l *Lead) Advance(next Status, now time.Time) bool {
	if l.Status.IsTerminal() || l.Status == next {
		return false
	}
	l.Status = next
	l.UpdatedAt = now
	return true
}
