package service

import (
	"time"

	"agency_crm_backend/internal/invoices/domain"
	"agency_crm_backend/internal/invoices/transport"
	quoteservice "agency_crm_backend/internal/quotes/service"
)

// ToResponse maps an invoice to its API shape. Status is the display status at now.
func ToResponse(inv *domain.Invoice, now time.Time) transport.InvoiceResponse {
	return transport.InvoiceResponse{
		ID:                inv.ID,
		Number:            inv.Number,
		Status:            string(inv.DisplayStatus(now)),
		StoredStatus:      string(inv.Status),
		Currency:          string(inv.Currency),
		Items:             quoteservice.ItemResponses(inv.Items),
		TaxRate:           inv.TaxRate.String(),
		Subtotal:          inv.Totals.Subtotal.StringFixed(2),
		DiscountAmount:    inv.Totals.DiscountAmount.StringFixed(2),
		Tax:               inv.Totals.Tax.StringFixed(2),
		Total:             inv.Totals.Total.StringFixed(2),
		ClientID:          inv.ClientID,
		SourceQuoteID:     inv.SourceQuoteID,
		PreviousInvoiceID: inv.PreviousInvoiceID,
		Recurring:         inv.Recurring,
		DueDate:           inv.DueDate.Format("2006-01-02"),
		PaidAt:            inv.PaidAt,
		CancelledAt:       inv.CancelledAt,
		PaymentMethod:     inv.PaymentMethod,
		Language:          inv.Language,
		Notes:             inv.Notes,
		DocumentURL:       inv.DocumentURL,
		CreatedAt:         inv.CreatedAt,
		UpdatedAt:         inv.UpdatedAt,
	}
}
