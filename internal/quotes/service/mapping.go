package service

import (
	"time"

	"agency_crm_backend/internal/pricing"
	"agency_crm_backend/internal/quotes/domain"
	"agency_crm_backend/internal/quotes/transport"
)

const dateLayout = "2006-01-02"

// ToResponse maps a quote to its API shape. Status is the display status at now.
func ToResponse(q *domain.Quote, now time.Time) transport.QuoteResponse {
	return transport.QuoteResponse{
		ID:             q.ID,
		Number:         q.Number,
		Status:         string(q.DisplayStatus(now)),
		StoredStatus:   string(q.Status),
		Currency:       string(q.Currency),
		Items:          ItemResponses(q.Items),
		DiscountType:   string(q.Discount.Type),
		DiscountValue:  q.Discount.Value.String(),
		TaxRate:        q.TaxRate.String(),
		Subtotal:       q.Totals.Subtotal.StringFixed(2),
		DiscountAmount: q.Totals.DiscountAmount.StringFixed(2),
		Tax:            q.Totals.Tax.StringFixed(2),
		Total:          q.Totals.Total.StringFixed(2),
		Client: transport.ClientSnapshotResponse{
			Name:    q.Client.Name,
			Email:   q.Client.Email,
			Phone:   q.Client.Phone,
			Company: q.Client.Company,
		},
		LeadID:           q.LeadID,
		ValidUntil:       q.ValidUntil.Format(dateLayout),
		Language:         string(q.Language),
		Notes:            q.Notes,
		RecurringBilling: q.RecurringBilling,
		SentAt:           q.SentAt,
		DecidedAt:        q.DecidedAt,
		CreatedAt:        q.CreatedAt,
		UpdatedAt:        q.UpdatedAt,
	}
}

// ItemResponses maps line items, shared with invoice responses.
func ItemResponses(items []pricing.LineItem) []transport.LineItemResponse {
	out := make([]transport.LineItemResponse, len(items))
	for i, item := range items {
		out[i] = transport.LineItemResponse{
			ServiceRef:  item.ServiceRef,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Total:       item.Total().Round(2).StringFixed(2),
			SortOrder:   item.SortOrder,
		}
	}
	return out
}
