package domain

import (
	"testing"
	"time"

	"agency_crm_backend/internal/pricing"
	"agency_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var created = time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

func newDraft(t *testing.T) *Quote {
	t.Helper()
	q, err := New(NewParams{
		ID:     uuid.New(),
		Number: "QT-001",
		Pricing: Pricing{
			Currency: pricing.CurrencyUSD,
			Items: []pricing.LineItem{
				{Description: "Landing page", Quantity: 2, UnitPrice: decimal.NewFromInt(500)},
			},
			Discount: pricing.Discount{Type: pricing.DiscountPercentage, Value: decimal.NewFromInt(10)},
			TaxRate:  decimal.Zero,
		},
		Client:       ClientSnapshot{Name: "Ana", Email: "ana@example.com"},
		ValidityDays: 15,
		Language:     LanguageEnglish,
		Now:          created,
	})
	if err != nil {
		t.Fatalf("new quote: %v", err)
	}
	return q
}

func TestNewComputesTotalsAndValidity(t *testing.T) {
	q := newDraft(t)
	if q.Status != StatusDraft {
		t.Fatalf("expected draft, got %s", q.Status)
	}
	if !q.Totals.Total.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("expected total 900, got %s", q.Totals.Total)
	}
	want := time.Date(2024, time.March, 16, 0, 0, 0, 0, time.UTC)
	if !q.ValidUntil.Equal(want) {
		t.Fatalf("expected valid until %s, got %s", want, q.ValidUntil)
	}
}

func TestNewRejectsInvalidInput(t *testing.T) {
	_, err := New(NewParams{
		Pricing:      Pricing{Currency: pricing.CurrencyUSD},
		Client:       ClientSnapshot{Name: "Ana", Email: "ana@example.com"},
		ValidityDays: 15,
		Now:          created,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for empty items, got %v", err)
	}
}

func TestSendTransitions(t *testing.T) {
	q := newDraft(t)
	if err := q.Send(created); err != nil {
		t.Fatalf("send draft: %v", err)
	}
	if q.Status != StatusSent || q.SentAt == nil {
		t.Fatalf("expected sent with timestamp, got %s", q.Status)
	}
	if err := q.Send(created); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state on resend, got %v", err)
	}
}

func TestAcceptRequiresSent(t *testing.T) {
	q := newDraft(t)
	if err := q.Accept(created); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state accepting a draft, got %v", err)
	}
	if err := q.Reject(created); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state rejecting a draft, got %v", err)
	}
	_ = q.Send(created)
	if err := q.Accept(created); err != nil {
		t.Fatalf("accept sent: %v", err)
	}
	if err := q.Reject(created); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected accepted quote to be final, got %v", err)
	}
}

func TestExpiryIsDerived(t *testing.T) {
	q := newDraft(t)
	_ = q.Send(created)

	onDeadline := time.Date(2024, time.March, 16, 23, 0, 0, 0, time.UTC)
	if got := q.DisplayStatus(onDeadline); got != StatusSent {
		t.Fatalf("expected sent on the last valid day, got %s", got)
	}
	after := time.Date(2024, time.March, 17, 0, 0, 1, 0, time.UTC)
	if got := q.DisplayStatus(after); got != StatusExpired {
		t.Fatalf("expected expired, got %s", got)
	}
	if q.Status != StatusSent {
		t.Fatalf("stored status must not change, got %s", q.Status)
	}
	if err := q.Accept(after); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected expired quote to be unacceptable, got %v", err)
	}
}

func TestDecidedQuotesNeverExpire(t *testing.T) {
	q := newDraft(t)
	_ = q.Send(created)
	_ = q.Accept(created)
	if got := q.DisplayStatus(created.AddDate(1, 0, 0)); got != StatusAccepted {
		t.Fatalf("expected accepted, got %s", got)
	}
}

func TestApplyEditOnlyInDraft(t *testing.T) {
	q := newDraft(t)
	newItems := Pricing{
		Currency: pricing.CurrencyTTD,
		Items:    []pricing.LineItem{{Description: "Logo", Quantity: 1, UnitPrice: decimal.NewFromInt(300)}},
		Discount: pricing.NoDiscount,
		TaxRate:  decimal.RequireFromString("0.125"),
	}
	if err := q.ApplyEdit(Edit{Pricing: &newItems}, created); err != nil {
		t.Fatalf("edit draft: %v", err)
	}
	if !q.Totals.Total.Equal(decimal.RequireFromString("337.5")) {
		t.Fatalf("expected recomputed total 337.50, got %s", q.Totals.Total)
	}
	if q.Currency != pricing.CurrencyTTD {
		t.Fatalf("expected TTD, got %s", q.Currency)
	}

	_ = q.Send(created)
	notes := "late change"
	if err := q.ApplyEdit(Edit{Notes: &notes}, created); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state editing a sent quote, got %v", err)
	}
}

func TestApplyEditKeepsQuoteOnValidationFailure(t *testing.T) {
	q := newDraft(t)
	bad := Pricing{Currency: pricing.CurrencyUSD, Items: []pricing.LineItem{{Description: "x", Quantity: 0}}}
	if err := q.ApplyEdit(Edit{Pricing: &bad}, created); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(q.Items) != 1 || !q.Totals.Total.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("quote must be unchanged after a failed edit")
	}
}
