package service

import (
	"context"
	"testing"

	"agency_crm_backend/internal/services/repository"
	"agency_crm_backend/internal/services/transport"
	"agency_crm_backend/platform/apperr"
	"agency_crm_backend/platform/logger"

	"github.com/google/uuid"
)

func newTestService() *Service {
	return New(repository.NewMemory(), logger.New("development"))
}

func TestCreateNormalizesPriceAndCurrency(t *testing.T) {
	svc := newTestService()

	resp, err := svc.Create(context.Background(), transport.CreateServiceRequest{
		Name:         "  Website build ",
		DefaultPrice: "1500",
		Currency:     "usd",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.Name != "Website build" || resp.DefaultPrice != "1500.00" || resp.Currency != "USD" || !resp.IsActive {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCreateRejectsNegativePrice(t *testing.T) {
	svc := newTestService()

	_, err := svc.Create(context.Background(), transport.CreateServiceRequest{
		Name:         "Audit",
		DefaultPrice: "-1",
		Currency:     "USD",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetCatalogServiceReflectsToggle(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, transport.CreateServiceRequest{Name: "SEO", DefaultPrice: "250.50", Currency: "TTD"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.ToggleActive(ctx, created.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	entry, err := svc.GetCatalogService(ctx, created.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if entry.IsActive || entry.Currency != "TTD" || entry.DefaultPrice.StringFixed(2) != "250.50" {
		t.Fatalf("unexpected catalog entry: %+v", entry)
	}
}

func TestListDefaultsToActive(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	a, _ := svc.Create(ctx, transport.CreateServiceRequest{Name: "Branding", DefaultPrice: "800", Currency: "USD"})
	_, _ = svc.Create(ctx, transport.CreateServiceRequest{Name: "Hosting", DefaultPrice: "20", Currency: "USD"})
	if _, err := svc.ToggleActive(ctx, a.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	list, err := svc.List(ctx, transport.ListServicesRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 1 || list.Items[0].Name != "Hosting" {
		t.Fatalf("expected only the active service, got %+v", list)
	}

	inactive := false
	list, err = svc.List(ctx, transport.ListServicesRequest{IsActive: &inactive})
	if err != nil {
		t.Fatalf("list inactive: %v", err)
	}
	if list.Total != 1 || list.Items[0].Name != "Branding" {
		t.Fatalf("expected only the inactive service, got %+v", list)
	}
}

func TestGetCatalogServiceNotFound(t *testing.T) {
	svc := newTestService()
	_, err := svc.GetCatalogService(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
