package exports

import (
	"fmt"
	"time"

	"agency_crm_backend/internal/ports"
	"agency_crm_backend/internal/pricing"

	"github.com/shopspring/decimal"
)

// field is one label/value line of the details column.
type field struct {
	label string
	value string
}

// documentView is the locale-resolved content of one PDF.
type documentView struct {
	title       string
	number      string
	status      string
	statusKey   string
	lbl         labels
	locale      string
	billTo      []string
	details     []field
	items       []pricing.LineItem
	currency    pricing.Currency
	totals      pricing.Totals
	notes       string
	isReceipt   bool
	isRecurring bool
}

func newDocumentView(doc ports.Document, locale string, now time.Time) (documentView, error) {
	lbl, locale := labelsFor(locale)
	v := documentView{lbl: lbl, locale: locale}

	switch {
	case doc.Kind == ports.DocumentQuote && doc.Quote != nil:
		q := doc.Quote
		v.title = lbl.quoteTitle
		v.number = q.Number
		v.statusKey = string(q.DisplayStatus(now))
		v.billTo = compact(q.Client.Name, deref(q.Client.Company), q.Client.Email, deref(q.Client.Phone))
		v.details = []field{
			{lbl.issued, q.CreatedAt.Format(lbl.dateLayout)},
			{lbl.validUntil, q.ValidUntil.Format(lbl.dateLayout)},
		}
		v.items = q.Items
		v.currency = q.Currency
		v.totals = q.Totals
		v.notes = deref(q.Notes)
		v.isRecurring = q.RecurringBilling

	case (doc.Kind == ports.DocumentInvoice || doc.Kind == ports.DocumentReceipt) && doc.Invoice != nil:
		inv := doc.Invoice
		v.number = inv.Number
		v.statusKey = string(inv.DisplayStatus(now))
		if doc.Client != nil {
			v.billTo = compact(doc.Client.Name, deref(doc.Client.Company), doc.Client.Email, deref(doc.Client.Phone))
		}
		v.details = []field{{lbl.issued, inv.CreatedAt.Format(lbl.dateLayout)}}
		if doc.Kind == ports.DocumentReceipt {
			v.title = lbl.receiptTitle
			v.isReceipt = true
			if inv.PaidAt != nil {
				v.details = append(v.details, field{lbl.paidOn, inv.PaidAt.Format(lbl.dateLayout)})
			}
			if inv.PaymentMethod != nil && *inv.PaymentMethod != "" {
				v.details = append(v.details, field{lbl.paymentMethod, *inv.PaymentMethod})
			}
		} else {
			v.title = lbl.invoiceTitle
			v.details = append(v.details, field{lbl.dueDate, inv.DueDate.Format(lbl.dateLayout)})
		}
		v.items = inv.Items
		v.currency = inv.Currency
		v.totals = inv.Totals
		v.notes = deref(inv.Notes)
		v.isRecurring = inv.Recurring

	default:
		return documentView{}, fmt.Errorf("render %s: document has no matching aggregate", doc.Kind)
	}

	v.status = lbl.statusLabel(v.statusKey)
	v.details = append(v.details, field{lbl.status, v.status})
	return v, nil
}

func (v documentView) format(amount decimal.Decimal) string {
	return pricing.Format(amount, v.currency, v.locale)
}

func compact(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
