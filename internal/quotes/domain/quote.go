// Package domain holds the quote aggregate and its state machine.
//
// Persisted statuses are Draft, Sent, Accepted and Rejected. Expired is a
// display status derived from ValidUntil at read time and is never stored.
package domain

import (
	"fmt"
	"time"

	"agency_crm_backend/internal/pricing"
	"agency_crm_backend/internal/shared/calendar"
	"agency_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is a quote lifecycle status.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	// StatusExpired is only ever returned by DisplayStatus.
	StatusExpired Status = "expired"
)

// IsPersisted reports whether s may be stored.
func (s Status) IsPersisted() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Language selects the locale of exported documents.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
)

// ParseLanguage defaults to English for empty or unknown values.
func ParseLanguage(raw string) Language {
	if Language(raw) == LanguageSpanish {
		return LanguageSpanish
	}
	return LanguageEnglish
}

// ClientSnapshot is the contact data copied from the lead when the quote is
// drafted. It is edited independently of the lead.
type ClientSnapshot struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone,omitempty"`
	Company *string `json:"company,omitempty"`
}

// Quote is a priced proposal with an expiry date.
type Quote struct {
	ID               uuid.UUID
	Number           string
	Status           Status
	Currency         pricing.Currency
	Items            []pricing.LineItem
	Discount         pricing.Discount
	TaxRate          decimal.Decimal
	Totals           pricing.Totals
	Client           ClientSnapshot
	LeadID           *uuid.UUID
	ValidUntil       time.Time
	Language         Language
	Notes            *string
	RecurringBilling bool
	SentAt           *time.Time
	DecidedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Pricing groups the inputs of the total computation.
type Pricing struct {
	Currency pricing.Currency
	Items    []pricing.LineItem
	Discount pricing.Discount
	TaxRate  decimal.Decimal
}

// NewParams are the inputs of New.
type NewParams struct {
	ID               uuid.UUID
	Number           string
	Pricing          Pricing
	Client           ClientSnapshot
	LeadID           *uuid.UUID
	ValidityDays     int
	Language         Language
	Notes            *string
	RecurringBilling bool
	Now              time.Time
}

// New builds a Draft quote and computes its totals.
func New(p NewParams) (*Quote, error) {
	if err := validateSnapshot(p.Client); err != nil {
		return nil, err
	}
	if p.ValidityDays < 1 {
		return nil, apperr.Validation("validity must be at least one day")
	}

	q := &Quote{
		ID:               p.ID,
		Number:           p.Number,
		Status:           StatusDraft,
		Client:           p.Client,
		LeadID:           p.LeadID,
		ValidUntil:       calendar.AddDays(p.Now, p.ValidityDays),
		Language:         p.Language,
		Notes:            p.Notes,
		RecurringBilling: p.RecurringBilling,
		CreatedAt:        p.Now,
		UpdatedAt:        p.Now,
	}
	if err := q.applyPricing(p.Pricing); err != nil {
		return nil, err
	}
	return q, nil
}

// DisplayStatus returns the status to show at now: a Draft or Sent quote
// past its validity date reads as Expired.
func (q *Quote) DisplayStatus(now time.Time) Status {
	if q.IsExpired(now) {
		return StatusExpired
	}
	return q.Status
}

// IsExpired reports whether an open quote is past ValidUntil.
func (q *Quote) IsExpired(now time.Time) bool {
	if q.Status != StatusDraft && q.Status != StatusSent {
		return false
	}
	return calendar.IsAfterDate(now, q.ValidUntil)
}

// Edit describes a draft modification. Nil fields are left unchanged.
type Edit struct {
	Pricing          *Pricing
	Client           *ClientSnapshot
	ValidUntil       *time.Time
	Language         *Language
	Notes            *string
	RecurringBilling *bool
}

// ApplyEdit changes a Draft quote and recomputes its totals.
func (q *Quote) ApplyEdit(e Edit, now time.Time) error {
	if q.Status != StatusDraft {
		return invalidState("edit", q.Status, StatusDraft)
	}
	if e.Client != nil {
		if err := validateSnapshot(*e.Client); err != nil {
			return err
		}
	}
	if e.ValidUntil != nil && calendar.DateOf(*e.ValidUntil).Before(calendar.DateOf(now)) {
		return apperr.Validation("valid until must not be in the past")
	}

	if e.Pricing != nil {
		if err := q.applyPricing(*e.Pricing); err != nil {
			return err
		}
	}
	if e.Client != nil {
		q.Client = *e.Client
	}
	if e.ValidUntil != nil {
		q.ValidUntil = calendar.DateOf(*e.ValidUntil)
	}
	if e.Language != nil {
		q.Language = *e.Language
	}
	if e.Notes != nil {
		q.Notes = e.Notes
	}
	if e.RecurringBilling != nil {
		q.RecurringBilling = *e.RecurringBilling
	}
	q.UpdatedAt = now
	return nil
}

// Send moves a Draft quote to Sent. An expired draft cannot be sent.
func (q *Quote) Send(now time.Time) error {
	if q.Status != StatusDraft {
		return invalidState("send", q.Status, StatusDraft)
	}
	if q.IsExpired(now) {
		return invalidState("send", StatusExpired, StatusDraft)
	}
	q.Status = StatusSent
	q.SentAt = &now
	q.UpdatedAt = now
	return nil
}

// Accept moves a Sent quote to Accepted. Expired quotes cannot be accepted.
func (q *Quote) Accept(now time.Time) error {
	if err := q.ensureDecidable("accept", now); err != nil {
		return err
	}
	q.Status = StatusAccepted
	q.DecidedAt = &now
	q.UpdatedAt = now
	return nil
}

// Reject moves a Sent quote to Rejected.
func (q *Quote) Reject(now time.Time) error {
	if err := q.ensureDecidable("reject", now); err != nil {
		return err
	}
	q.Status = StatusRejected
	q.DecidedAt = &now
	q.UpdatedAt = now
	return nil
}

func (q *Quote) ensureDecidable(op string, now time.Time) error {
	if q.Status != StatusSent {
		return invalidState(op, q.Status, StatusSent)
	}
	if q.IsExpired(now) {
		return invalidState(op, StatusExpired, StatusSent)
	}
	return nil
}

func (q *Quote) applyPricing(p Pricing) error {
	if _, err := pricing.ParseCurrency(string(p.Currency)); err != nil {
		return err
	}
	for i, item := range p.Items {
		if item.Description == "" {
			return apperr.Validation(fmt.Sprintf("item %d: description is required", i+1))
		}
	}
	totals, err := pricing.ComputeTotals(p.Items, p.Discount, p.TaxRate)
	if err != nil {
		return err
	}
	q.Currency = p.Currency
	q.Items = p.Items
	q.Discount = p.Discount
	q.TaxRate = p.TaxRate
	q.Totals = totals
	return nil
}

func validateSnapshot(c ClientSnapshot) error {
	if c.Name == "" {
		return apperr.Validation("client name is required")
	}
	if c.Email == "" {
		return apperr.Validation("client email is required")
	}
	return nil
}

func invalidState(op string, current, required Status) *apperr.Error {
	return apperr.InvalidState(fmt.Sprintf("cannot %s a %s quote", op, current)).
		WithOp("quote." + op).
		WithDetails(map[string]string{"status": string(current), "required": string(required)})
}
