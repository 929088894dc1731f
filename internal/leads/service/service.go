// Package service holds the lead use cases the lifecycle engine needs: leads
// are created here and read back, while quotes and conversion advance their
// status.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agency_crm_backend/internal/events"
	"agency_crm_backend/internal/leads/domain"
	"agency_crm_backend/internal/leads/transport"
	"agency_crm_backend/internal/ports"
	"agency_crm_backend/internal/shared/paging"
	"agency_crm_backend/platform/apperr"
	"agency_crm_backend/platform/config"
	"agency_crm_backend/platform/logger"
	"agency_crm_backend/platform/phone"
	"agency_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Service provides lead operations.
type Service struct {
	store ports.Store
	bus   events.Bus
	cfg   config.ContactConfig
	log   *logger.Logger
	now   func() time.Time
}

// New creates a new leads service.
func New(store ports.Store, bus events.Bus, cfg config.ContactConfig, log *logger.Logger) *Service {
	return &Service{store: store, bus: bus, cfg: cfg, log: log, now: time.Now}
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SourceWebForm marks leads captured by the public contact form.
const SourceWebForm = "web_form"

// CreatePublic captures a lead from the website form. A filled honeypot gets
// a normal looking response but nothing is stored or announced.
func (s *Service) CreatePublic(ctx context.Context, req transport.PublicLeadRequest) (*transport.LeadResponse, error) {
	if strings.TrimSpace(req.BotField) != "" {
		s.log.WithContext(ctx).Warn("public lead dropped by honeypot")
		now := s.now()
		return &transport.LeadResponse{
			ID:        uuid.Nil,
			Name:      sanitize.Text(req.Name),
			Email:     strings.TrimSpace(req.Email),
			Status:    string(domain.StatusNew),
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}

	source := SourceWebForm
	return s.Create(ctx, transport.CreateLeadRequest{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Source:  &source,
		Notes:   req.Message,
	})
}

// Create stores a new lead in status new.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (*transport.LeadResponse, error) {
	now := s.now()
	lead := &domain.Lead{
		ID:        uuid.New(),
		Name:      sanitize.Text(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     phone.NormalizePtr(req.Phone, s.cfg.GetPhoneRegion()),
		Company:   sanitize.TextPtr(req.Company),
		Source:    sanitize.TextPtr(req.Source),
		Notes:     sanitize.TextPtr(req.Notes),
		Status:    domain.StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if lead.Name == "" {
		return nil, apperr.Validation("name is required")
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		return repo.SaveLead(ctx, lead)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("lead created", "id", lead.ID)
	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Name:      lead.Name,
		Email:     lead.Email,
	})
	resp := toResponse(lead)
	return &resp, nil
}

// GetByID returns a lead.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.LeadResponse, error) {
	lead, err := s.store.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(lead)
	return &resp, nil
}

// List returns a page of leads, newest first.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (*transport.LeadListResponse, error) {
	page, pageSize, window := paging.Normalize(req.Page, req.PageSize)
	filter := ports.LeadFilter{Search: req.Search, Page: window}
	if req.Status != "" {
		status := domain.Status(req.Status)
		filter.Status = &status
	}

	items, total, err := s.store.ListLeads(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]transport.LeadResponse, len(items))
	for i, l := range items {
		out[i] = toResponse(l)
	}
	return &transport.LeadListResponse{
		Items:      out,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: paging.TotalPages(total, pageSize),
	}, nil
}

// UpdateStatus applies a manual pipeline move. Drafting, quoted and
// converted are reserved for quote operations, and terminal leads stay put.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req transport.UpdateLeadStatusRequest) (*transport.LeadResponse, error) {
	next := domain.Status(req.Status)
	switch next {
	case domain.StatusNew, domain.StatusContacted, domain.StatusQualified, domain.StatusLost:
	default:
		return nil, apperr.Validation(fmt.Sprintf("status %q cannot be set by hand", req.Status))
	}

	now := s.now()
	var updated *domain.Lead
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		lead, err := repo.LoadLead(ctx, id)
		if err != nil {
			return err
		}
		if lead.Status.IsTerminal() {
			return apperr.InvalidState(fmt.Sprintf("lead is already %s", lead.Status)).
				WithDetails(map[string]string{"status": string(lead.Status)})
		}
		if lead.Advance(next, now) {
			if err := repo.SaveLead(ctx, lead); err != nil {
				return err
			}
		}
		updated = lead
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toResponse(updated)
	return &resp, nil
}

func toResponse(l *domain.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:        l.ID,
		Name:      l.Name,
		Email:     l.Email,
		Phone:     l.Phone,
		Company:   l.Company,
		Source:    l.Source,
		Notes:     l.Notes,
		Status:    string(l.Status),
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
