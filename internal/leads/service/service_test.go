package service

import (
	"context"
	"sync/atomic"
	"testing"

	"agency_crm_backend/internal/events"
	"agency_crm_backend/internal/leads/domain"
	"agency_crm_backend/internal/leads/transport"
	"agency_crm_backend/internal/memstore"
	"agency_crm_backend/platform/apperr"
	"agency_crm_backend/platform/config"
	platformevents "agency_crm_backend/platform/events"
	"agency_crm_backend/platform/logger"

	"github.com/google/uuid"
)

func newTestService() *Service {
	return New(memstore.New(), events.NewInMemoryBus(logger.Discard()), &config.Config{PhoneRegion: "US"}, logger.Discard())
}

func TestCreateAndGet(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	phone := "(212) 736-5000"

	created, err := svc.Create(ctx, createRequest("<b>Ana</b>", "ana@example.com", &phone))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Ana" || created.Status != string(domain.StatusNew) {
		t.Fatalf("unexpected lead %+v", created)
	}
	if created.Phone == nil || *created.Phone != "+12127365000" {
		t.Fatalf("expected normalized phone, got %v", created.Phone)
	}

	got, err := svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != "ana@example.com" {
		t.Fatalf("unexpected email %s", got.Email)
	}
}

func TestUpdateStatusRejectsReservedAndTerminal(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	created, err := svc.Create(ctx, createRequest("Ana", "ana@example.com", nil))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, created.ID, transport.UpdateLeadStatusRequest{Status: "converted"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for reserved status, got %v", err)
	}
	lost, err := svc.UpdateStatus(ctx, created.ID, transport.UpdateLeadStatusRequest{Status: "lost"})
	if err != nil || lost.Status != "lost" {
		t.Fatalf("expected lost lead, got %+v, %v", lost, err)
	}
	if _, err := svc.UpdateStatus(ctx, created.ID, transport.UpdateLeadStatusRequest{Status: "contacted"}); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state for lost lead, got %v", err)
	}
}

func createRequest(name, email string, phone *string) transport.CreateLeadRequest {
	return transport.CreateLeadRequest{Name: name, Email: email, Phone: phone}
}

func TestListFiltersByStatusAndSearch(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	ana, err := svc.Create(ctx, createRequest("Ana", "ana@example.com", nil))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, createRequest("Bob", "bob@example.com", nil)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, ana.ID, transport.UpdateLeadStatusRequest{Status: "contacted"}); err != nil {
		t.Fatalf("update status: %v", err)
	}

	all, err := svc.List(ctx, transport.ListLeadsRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if all.Total != 2 || all.Page != 1 || all.TotalPages != 1 {
		t.Fatalf("unexpected page %+v", all)
	}

	contacted, err := svc.List(ctx, transport.ListLeadsRequest{Status: "contacted"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if contacted.Total != 1 || contacted.Items[0].ID != ana.ID {
		t.Fatalf("expected only Ana, got %+v", contacted.Items)
	}

	bob, err := svc.List(ctx, transport.ListLeadsRequest{Search: "BOB@"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if bob.Total != 1 || bob.Items[0].Name != "Bob" {
		t.Fatalf("expected only Bob, got %+v", bob.Items)
	}
}

func TestCreatePublicStoresWebFormLead(t *testing.T) {
	bus := events.NewInMemoryBus(logger.Discard())
	var announced atomic.Int32
	bus.Subscribe(events.LeadCreated{}.EventName(), platformevents.HandlerFunc(func(context.Context, platformevents.Event) error {
		announced.Add(1)
		return nil
	}))
	svc := New(memstore.New(), bus, &config.Config{PhoneRegion: "US"}, logger.Discard())
	ctx := context.Background()
	message := "Need a new website"

	created, err := svc.CreatePublic(ctx, transport.PublicLeadRequest{Name: "Ana", Email: "ana@example.com", Message: &message})
	if err != nil {
		t.Fatalf("create public: %v", err)
	}
	bus.Wait()
	if created.ID == uuid.Nil || created.Source == nil || *created.Source != SourceWebForm {
		t.Fatalf("unexpected public lead %+v", created)
	}
	if created.Notes == nil || *created.Notes != message {
		t.Fatalf("expected message stored as notes, got %v", created.Notes)
	}
	if announced.Load() != 1 {
		t.Fatalf("expected one LeadCreated event, got %d", announced.Load())
	}
}

func TestCreatePublicHoneypotStoresNothing(t *testing.T) {
	bus := events.NewInMemoryBus(logger.Discard())
	var announced atomic.Int32
	bus.Subscribe(events.LeadCreated{}.EventName(), platformevents.HandlerFunc(func(context.Context, platformevents.Event) error {
		announced.Add(1)
		return nil
	}))
	svc := New(memstore.New(), bus, &config.Config{PhoneRegion: "US"}, logger.Discard())
	ctx := context.Background()

	resp, err := svc.CreatePublic(ctx, transport.PublicLeadRequest{Name: "Spam", Email: "spam@example.com", BotField: "http://spam.test"})
	if err != nil {
		t.Fatalf("honeypot should look successful, got %v", err)
	}
	bus.Wait()
	if resp.ID != uuid.Nil {
		t.Fatalf("expected placeholder id, got %s", resp.ID)
	}
	list, err := svc.List(ctx, transport.ListLeadsRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 0 || announced.Load() != 0 {
		t.Fatalf("honeypot stored or announced a lead: total=%d events=%d", list.Total, announced.Load())
	}
}
