// Package domain holds the invoice aggregate, its state machine and the
// recurring-invoice rule.
//
// Persisted statuses are Pending, Paid and Cancelled. Overdue is derived
// from DueDate at read time.
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

// Status is an invoice lifecycle status.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
	// StatusOverdue is only ever returned by DisplayStatus.
	StatusOverdue Status = "overdue"
)

// Invoice is a billable document. Items and totals never change after
// creation.
type Invoice struct {
	ID                uuid.UUID
	Number            string
	Status            Status
	Currency          pricing.Currency
	Items             []pricing.LineItem
	TaxRate           decimal.Decimal
	Totals            pricing.Totals
	ClientID          uuid.UUID
	SourceQuoteID     *uuid.UUID
	PreviousInvoiceID *uuid.UUID
	Recurring         bool
	BillingDay        int
	DueDate           time.Time
	PaidAt            *time.Time
	CancelledAt       *time.Time
	PaymentMethod     *string
	Language          string
	Notes             *string
	DocumentURL       *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// QuoteSource is the accepted-quote data an invoice is issued from.
type QuoteSource struct {
	ID        uuid.UUID
	Currency  pricing.Currency
	Items     []pricing.LineItem
	TaxRate   decimal.Decimal
	Totals    pricing.Totals
	Recurring bool
	Language  string
	Notes     *string
}

// FromQuote issues a Pending invoice carrying the quote's items and totals
// verbatim. The due date is now plus netTermsDays.
func FromQuote(id uuid.UUID, number string, clientID uuid.UUID, q QuoteSource, netTermsDays int, now time.Time) *Invoice {
	due := calendar.AddDays(now, netTermsDays)
	quoteID := q.ID
	return &Invoice{
		ID:            id,
		Number:        number,
		Status:        StatusPending,
		Currency:      q.Currency,
		Items:         cloneItems(q.Items),
		TaxRate:       q.TaxRate,
		Totals:        q.Totals,
		ClientID:      clientID,
		SourceQuoteID: &quoteID,
		Recurring:     q.Recurring,
		BillingDay:    due.Day(),
		DueDate:       due,
		Language:      q.Language,
		Notes:         q.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// DisplayStatus returns Overdue for a Pending invoice past its due date.
func (inv *Invoice) DisplayStatus(now time.Time) Status {
	if inv.IsOverdue(now) {
		return StatusOverdue
	}
	return inv.Status
}

// IsOverdue reports whether a Pending invoice is past DueDate.
func (inv *Invoice) IsOverdue(now time.Time) bool {
	return inv.Status == StatusPending && calendar.IsAfterDate(now, inv.DueDate)
}

// CanPay returns an InvalidState error unless the invoice is Pending.
// Overdue invoices are Pending and can be paid.
func (inv *Invoice) CanPay() error {
	if inv.Status != StatusPending {
		return invalidState("pay", inv.Status)
	}
	return nil
}

// MarkPaid applies the Pending→Paid transition in memory. Callers persist it
// through a compare-and-swap on the stored status.
func (inv *Invoice) MarkPaid(paymentMethod *string, now time.Time) error {
	if err := inv.CanPay(); err != nil {
		return err
	}
	inv.Status = StatusPaid
	inv.PaidAt = &now
	inv.PaymentMethod = paymentMethod
	inv.UpdatedAt = now
	return nil
}

// Cancel applies the Pending→Cancelled transition in memory.
func (inv *Invoice) Cancel(now time.Time) error {
	if inv.Status != StatusPending {
		return invalidState("cancel", inv.Status)
	}
	inv.Status = StatusCancelled
	inv.CancelledAt = &now
	inv.UpdatedAt = now
	return nil
}

// NextRecurring builds the next-period invoice of a paid recurring invoice.
// The due date advances one month from the previous due date, keeping the
// billing day. It returns nil when the invoice is not recurring.
func NextRecurring(prev *Invoice, id uuid.UUID, number string, now time.Time) *Invoice {
	if prev == nil || !prev.Recurring {
		return nil
	}
	prevID := prev.ID
	return &Invoice{
		ID:                id,
		Number:            number,
		Status:            StatusPending,
		Currency:          prev.Currency,
		Items:             cloneItems(prev.Items),
		TaxRate:           prev.TaxRate,
		Totals:            prev.Totals,
		ClientID:          prev.ClientID,
		SourceQuoteID:     prev.SourceQuoteID,
		PreviousInvoiceID: &prevID,
		Recurring:         true,
		BillingDay:        prev.BillingDay,
		DueDate:           calendar.NextMonthly(prev.DueDate, prev.BillingDay),
		Language:          prev.Language,
		Notes:             prev.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func cloneItems(items []pricing.LineItem) []pricing.LineItem {
	out := make([]pricing.LineItem, len(items))
	copy(out, items)
	return out
}

func invalidState(op string, current Status) *apperr.Error {
	return apperr.InvalidState(fmt.Sprintf("cannot %s a %s invoice", op, current)).
		WithOp("invoice." + op).
		WithDetails(map[string]string{"status": string(current), "required": string(StatusPending)})
}

// ErrConcurrentPayment is returned to the loser of a simultaneous payment.
func ErrConcurrentPayment() *apperr.Error {
	return apperr.InvalidState("invoice was already settled by a concurrent request").
		WithOp("invoice.pay").
		WithDetails(map[string]string{"reason": "concurrent_transition"})
}
