package service

import (
	"context"
	"fmt"
	"strings"

	leaddomain "agency_crm_backend/internal/leads/domain"
	"agency_crm_backend/internal/pricing"
	"agency_crm_backend/internal/quotes/domain"
	"agency_crm_backend/internal/quotes/transport"
	"agency_crm_backend/platform/apperr"
	"agency_crm_backend/platform/phone"
	"agency_crm_backend/platform/sanitize"

	"github.com/shopspring/decimal"
)

// buildPricing parses the request money fields and resolves catalog
// references into concrete line items.
func (s *Service) buildPricing(ctx context.Context, currencyRaw string, reqItems []transport.LineItemRequest, discountType, discountValue, taxRate string) (domain.Pricing, error) {
	currency, err := pricing.ParseCurrency(currencyRaw)
	if err != nil {
		return domain.Pricing{}, err
	}
	discount, err := parseDiscount(discountType, discountValue)
	if err != nil {
		return domain.Pricing{}, err
	}
	rate, err := parseDecimal("taxRate", taxRate)
	if err != nil {
		return domain.Pricing{}, err
	}
	items, err := s.resolveItems(ctx, currency, reqItems)
	if err != nil {
		return domain.Pricing{}, err
	}
	return domain.Pricing{Currency: currency, Items: items, Discount: discount, TaxRate: rate}, nil
}

// buildEdit merges the partial pricing fields of req with the current quote
// so totals are always recomputed from a complete input.
func (s *Service) buildEdit(ctx context.Context, q *domain.Quote, req transport.UpdateQuoteRequest) (domain.Edit, error) {
	var edit domain.Edit

	if req.Currency != nil || req.Items != nil || req.DiscountType != nil || req.DiscountValue != nil || req.TaxRate != nil {
		currency := string(q.Currency)
		if req.Currency != nil {
			currency = *req.Currency
		}
		discountType := string(q.Discount.Type)
		if req.DiscountType != nil {
			discountType = *req.DiscountType
		}
		discountValue := q.Discount.Value.String()
		if req.DiscountValue != nil {
			discountValue = *req.DiscountValue
		}
		taxRate := q.TaxRate.String()
		if req.TaxRate != nil {
			taxRate = *req.TaxRate
		}

		var p domain.Pricing
		var err error
		if req.Items != nil {
			p, err = s.buildPricing(ctx, currency, *req.Items, discountType, discountValue, taxRate)
		} else {
			p, err = s.buildPricing(ctx, currency, nil, discountType, discountValue, taxRate)
			if err == nil && p.Currency != q.Currency {
				err = s.recheckCatalogCurrency(ctx, p.Currency, q.Items)
			}
			p.Items = q.Items
		}
		if err != nil {
			return domain.Edit{}, err
		}
		edit.Pricing = &p
	}

	if req.Client != nil {
		snapshot := s.snapshotFromRequest(*req.Client)
		edit.Client = &snapshot
	}
	edit.ValidUntil = req.ValidUntil
	if req.Language != nil {
		lang := domain.ParseLanguage(*req.Language)
		edit.Language = &lang
	}
	edit.Notes = sanitizeNotes(req.Notes)
	edit.RecurringBilling = req.RecurringBilling
	return edit, nil
}

func (s *Service) resolveItems(ctx context.Context, currency pricing.Currency, reqItems []transport.LineItemRequest) ([]pricing.LineItem, error) {
	items := make([]pricing.LineItem, 0, len(reqItems))
	for i, r := range reqItems {
		item := pricing.LineItem{
			ServiceRef:  r.ServiceRef,
			Description: sanitize.Text(r.Description),
			Quantity:    r.Quantity,
			SortOrder:   i,
		}
		if r.SortOrder != nil {
			item.SortOrder = *r.SortOrder
		}
		if r.UnitPrice != nil {
			price, err := parseDecimal(fmt.Sprintf("items[%d].unitPrice", i), *r.UnitPrice)
			if err != nil {
				return nil, err
			}
			item.UnitPrice = price
		}

		if r.ServiceRef != nil {
			if err := s.fillFromCatalog(ctx, currency, &item, r.UnitPrice == nil); err != nil {
				return nil, err
			}
		} else if r.UnitPrice == nil {
			return nil, apperr.Validation(fmt.Sprintf("item %d: unit price is required", i+1))
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Service) fillFromCatalog(ctx context.Context, currency pricing.Currency, item *pricing.LineItem, usePrice bool) error {
	if s.catalog == nil {
		return apperr.Validation("service references are not supported")
	}
	svc, err := s.catalog.GetCatalogService(ctx, *item.ServiceRef)
	if err != nil {
		return err
	}
	if !svc.IsActive {
		return apperr.Validation(fmt.Sprintf("service %q is inactive", svc.Name))
	}
	if usePrice {
		if svc.Currency != currency {
			return apperr.Validation(fmt.Sprintf("service %q is priced in %s, quote is in %s", svc.Name, svc.Currency, currency))
		}
		item.UnitPrice = svc.DefaultPrice
	}
	if item.Description == "" {
		item.Description = svc.Name
	}
	return nil
}

// recheckCatalogCurrency rejects a currency change that would relabel
// catalog prices kept from the current items.
func (s *Service) recheckCatalogCurrency(ctx context.Context, currency pricing.Currency, items []pricing.LineItem) error {
	for _, item := range items {
		if item.ServiceRef == nil {
			continue
		}
		if s.catalog == nil {
			return apperr.Validation("service references are not supported")
		}
		svc, err := s.catalog.GetCatalogService(ctx, *item.ServiceRef)
		if err != nil {
			return err
		}
		if svc.Currency != currency {
			return apperr.Validation(fmt.Sprintf("service %q is priced in %s, quote is in %s; resend items to change currency", svc.Name, svc.Currency, currency))
		}
	}
	return nil
}

func parseDiscount(rawType, rawValue string) (pricing.Discount, error) {
	kind, err := pricing.ParseDiscountType(rawType)
	if err != nil {
		return pricing.Discount{}, err
	}
	if kind == pricing.DiscountNone {
		return pricing.NoDiscount, nil
	}
	value, err := parseDecimal("discountValue", rawValue)
	if err != nil {
		return pricing.Discount{}, err
	}
	return pricing.Discount{Type: kind, Value: value}, nil
}

// parseDecimal treats the empty string as zero.
func parseDecimal(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperr.Validation(fmt.Sprintf("%s must be a decimal number", field))
	}
	return d, nil
}

func (s *Service) snapshotFor(req *transport.ClientSnapshotRequest, lead *leaddomain.Lead) (domain.ClientSnapshot, error) {
	if req != nil {
		return s.snapshotFromRequest(*req), nil
	}
	if lead == nil {
		return domain.ClientSnapshot{}, apperr.Validation("client is required when no lead is given")
	}
	return domain.ClientSnapshot{
		Name:    lead.Name,
		Email:   lead.Email,
		Phone:   lead.Phone,
		Company: lead.Company,
	}, nil
}

func (s *Service) snapshotFromRequest(req transport.ClientSnapshotRequest) domain.ClientSnapshot {
	return domain.ClientSnapshot{
		Name:    sanitize.Text(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   phone.NormalizePtr(req.Phone, s.cfg.GetPhoneRegion()),
		Company: sanitize.TextPtr(req.Company),
	}
}

func sanitizeNotes(notes *string) *string {
	return sanitize.TextPtr(notes)
}
