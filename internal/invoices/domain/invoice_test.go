package domain

import (
	"testing"
	"time"

	"agency_crm_backend/internal/pricing"
	"agency_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func fromQuote(t *testing.T, recurring bool, now time.Time, netTerms int) *Invoice {
	t.Helper()
	totals, err := pricing.ComputeTotals(
		[]pricing.LineItem{{Description: "Retainer", Quantity: 2, UnitPrice: decimal.NewFromInt(500)}},
		pricing.Discount{Type: pricing.DiscountPercentage, Value: decimal.NewFromInt(10)},
		decimal.Zero,
	)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	return FromQuote(uuid.New(), "INV-001", uuid.New(), QuoteSource{
		ID:        uuid.New(),
		Currency:  pricing.CurrencyUSD,
		Items:     []pricing.LineItem{{Description: "Retainer", Quantity: 2, UnitPrice: decimal.NewFromInt(500)}},
		Totals:    totals,
		Recurring: recurring,
	}, netTerms, now)
}

func TestFromQuoteCopiesTotalsVerbatim(t *testing.T) {
	now := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	inv := fromQuote(t, false, now, 14)
	if inv.Status != StatusPending {
		t.Fatalf("expected pending, got %s", inv.Status)
	}
	if !inv.Totals.Total.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("expected total 900, got %s", inv.Totals.Total)
	}
	if want := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC); !inv.DueDate.Equal(want) {
		t.Fatalf("expected due %s, got %s", want, inv.DueDate)
	}
	if inv.SourceQuoteID == nil {
		t.Fatalf("expected source quote reference")
	}
}

func TestMarkPaidGuards(t *testing.T) {
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	inv := fromQuote(t, false, now, 30)
	method := "bank_transfer"
	if err := inv.MarkPaid(&method, now); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if inv.PaidAt == nil || inv.PaymentMethod == nil || *inv.PaymentMethod != method {
		t.Fatalf("expected paid timestamp and method")
	}
	if err := inv.MarkPaid(nil, now); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state paying twice, got %v", err)
	}
	if err := inv.Cancel(now); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state cancelling a paid invoice, got %v", err)
	}
}

func TestCancelledInvoiceCannotBePaid(t *testing.T) {
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	inv := fromQuote(t, false, now, 30)
	if err := inv.Cancel(now); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := inv.CanPay(); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestOverdueIsDerived(t *testing.T) {
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	inv := fromQuote(t, false, now, 14)
	if got := inv.DisplayStatus(time.Date(2024, time.January, 15, 18, 0, 0, 0, time.UTC)); got != StatusPending {
		t.Fatalf("expected pending on due date, got %s", got)
	}
	late := time.Date(2024, time.January, 16, 0, 0, 0, 0, time.UTC)
	if got := inv.DisplayStatus(late); got != StatusOverdue {
		t.Fatalf("expected overdue, got %s", got)
	}
	if err := inv.CanPay(); err != nil {
		t.Fatalf("overdue invoice must stay payable: %v", err)
	}
	_ = inv.MarkPaid(nil, late)
	if got := inv.DisplayStatus(late); got != StatusPaid {
		t.Fatalf("expected paid, got %s", got)
	}
}

func TestNextRecurringAdvancesFromPreviousDueDate(t *testing.T) {
	prev := fromQuote(t, true, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), 14)
	if want := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC); !prev.DueDate.Equal(want) {
		t.Fatalf("expected due %s, got %s", want, prev.DueDate)
	}
	paidAt := time.Date(2024, time.February, 3, 0, 0, 0, 0, time.UTC)
	_ = prev.MarkPaid(nil, paidAt)

	next := NextRecurring(prev, uuid.New(), "INV-002", paidAt)
	if next == nil {
		t.Fatalf("expected next invoice")
	}
	if want := time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC); !next.DueDate.Equal(want) {
		t.Fatalf("expected due %s, got %s", want, next.DueDate)
	}
	if next.Status != StatusPending || !next.Totals.Total.Equal(prev.Totals.Total) {
		t.Fatalf("expected pending invoice with same total")
	}
	if next.PreviousInvoiceID == nil || *next.PreviousInvoiceID != prev.ID {
		t.Fatalf("expected back reference to previous invoice")
	}
	next.Items[0].Quantity = 99
	if prev.Items[0].Quantity == 99 {
		t.Fatalf("items must be copied, not shared")
	}
}

func TestNextRecurringKeepsMonthEndAnchor(t *testing.T) {
	prev := &Invoice{ID: uuid.New(), Recurring: true, BillingDay: 31, DueDate: time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)}
	feb := NextRecurring(prev, uuid.New(), "INV-002", prev.DueDate)
	mar := NextRecurring(feb, uuid.New(), "INV-003", feb.DueDate)
	if feb.DueDate.Day() != 29 || mar.DueDate.Day() != 31 {
		t.Fatalf("expected Feb 29 then Mar 31, got %s and %s", feb.DueDate, mar.DueDate)
	}
}

func TestNextRecurringNilForOneOff(t *testing.T) {
	prev := fromQuote(t, false, time.Now(), 30)
	if NextRecurring(prev, uuid.New(), "INV-002", time.Now()) != nil {
		t.Fatalf("expected nil for non-recurring invoice")
	}
}
