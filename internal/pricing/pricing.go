// Package pricing computes document totals. All amounts are decimals rounded
// half up to cents exactly once per derived figure.
package pricing

import (
	"fmt"
	"strings"

	"agency_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is the ISO code of a document. A document carries exactly one.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyTTD Currency = "TTD"
	CurrencyEUR Currency = "EUR"
)

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(raw string) (Currency, error) {
	switch c := Currency(strings.ToUpper(strings.TrimSpace(raw))); c {
	case CurrencyUSD, CurrencyTTD, CurrencyEUR:
		return c, nil
	default:
		return "", apperr.Validation(fmt.Sprintf("unsupported currency %q", raw))
	}
}

// DiscountType selects how DiscountValue is interpreted.
type DiscountType string

const (
	DiscountNone       DiscountType = "none"
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// ParseDiscountType accepts the empty string as DiscountNone.
func ParseDiscountType(raw string) (DiscountType, error) {
	switch d := DiscountType(strings.ToLower(strings.TrimSpace(raw))); d {
	case "", DiscountNone:
		return DiscountNone, nil
	case DiscountPercentage, DiscountFixed:
		return d, nil
	default:
		return "", apperr.Validation(fmt.Sprintf("unsupported discount type %q", raw))
	}
}

// Discount is the document-level discount configuration.
type Discount struct {
	Type  DiscountType
	Value decimal.Decimal
}

// NoDiscount is the zero discount.
var NoDiscount = Discount{Type: DiscountNone, Value: decimal.Zero}

// LineItem is one priced row of a quote or invoice.
type LineItem struct {
	ServiceRef  *uuid.UUID      `json:"serviceRef,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	SortOrder   int             `json:"sortOrder"`
}

// Total returns quantity × unit price, unrounded.
func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Totals holds the derived monetary figures of a document.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
}

// AfterDiscount returns subtotal minus discount, never negative.
func (t Totals) AfterDiscount() decimal.Decimal {
	return t.Subtotal.Sub(t.DiscountAmount)
}

const centsPlaces = 2

var hundred = decimal.NewFromInt(100)

// ComputeTotals derives subtotal, discount, tax and total.
//
//	subtotal      = round(Σ qty × price)
//	discount      = round(clamp(percentage|fixed, 0, subtotal))
//	tax           = round((subtotal − discount) × taxRate)
//	total         = subtotal − discount + tax
//
// taxRate is a fraction (0.125 for 12.5%).
func ComputeTotals(items []LineItem, discount Discount, taxRate decimal.Decimal) (Totals, error) {
	if err := ValidateItems(items); err != nil {
		return Totals{}, err
	}
	if discount.Value.IsNegative() {
		return Totals{}, apperr.Validation("discount value must not be negative")
	}
	if taxRate.IsNegative() {
		return Totals{}, apperr.Validation("tax rate must not be negative")
	}

	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Total())
	}
	subtotal := sum.Round(centsPlaces)

	discountAmount := computeDiscount(subtotal, discount).Round(centsPlaces)
	afterDiscount := subtotal.Sub(discountAmount)
	tax := afterDiscount.Mul(taxRate).Round(centsPlaces)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		Tax:            tax,
		Total:          afterDiscount.Add(tax),
	}, nil
}

// computeDiscount returns the discount clamped to [0, subtotal].
func computeDiscount(subtotal decimal.Decimal, discount Discount) decimal.Decimal {
	var amount decimal.Decimal
	switch discount.Type {
	case DiscountPercentage:
		amount = subtotal.Mul(discount.Value).Div(hundred)
	case DiscountFixed:
		amount = discount.Value
	default:
		return decimal.Zero
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}

// ValidateItems checks the item rules shared by every document.
func ValidateItems(items []LineItem) error {
	if len(items) == 0 {
		return apperr.Validation("at least one line item is required")
	}
	for i, item := range items {
		if item.Quantity < 1 {
			return apperr.Validation(fmt.Sprintf("item %d: quantity must be at least 1", i+1)).
				WithDetails(map[string]any{"item": i, "field": "quantity"})
		}
		if item.UnitPrice.IsNegative() {
			return apperr.Validation(fmt.Sprintf("item %d: unit price must not be negative", i+1)).
				WithDetails(map[string]any{"item": i, "field": "unitPrice"})
		}
	}
	return nil
}
