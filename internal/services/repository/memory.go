package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"agency_crm_backend/platform/apperr"
)

// Memory is an in-memory Repository used with STORE_DRIVER=memory and in tests.
type Memory struct {
	mu    sync.RWMutex
	items map[uuid.UUID]CatalogService
	now   func() time.Time
}

// NewMemory creates an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{items: make(map[uuid.UUID]CatalogService), now: time.Now}
}

var _ Repository = (*Memory)(nil)

// GetByID implements Reader.
func (m *Memory) GetByID(_ context.Context, id uuid.UUID) (CatalogService, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.items[id]
	if !ok {
		return CatalogService{}, apperr.NotFound(catalogServiceNotFoundMessage)
	}
	return st, nil
}

// List implements Reader. Ordered by name.
func (m *Memory) List(_ context.Context, params ListParams) ([]CatalogService, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	search := strings.ToLower(params.Search)
	var matched []CatalogService
	for _, st := range m.items {
		if search != "" && !strings.Contains(strings.ToLower(st.Name), search) {
			continue
		}
		if params.Category != "" && (st.Category == nil || *st.Category != params.Category) {
			continue
		}
		if params.IsActive != nil && st.IsActive != *params.IsActive {
			continue
		}
		matched = append(matched, st)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := len(matched)
	start := min(params.Offset, total)
	end := total
	if params.Limit > 0 {
		end = min(start+params.Limit, total)
	}
	return matched[start:end], total, nil
}

// Create implements Writer.
func (m *Memory) Create(_ context.Context, params CreateParams) (CatalogService, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	st := CatalogService{
		ID:           uuid.New(),
		Name:         params.Name,
		Description:  params.Description,
		DefaultPrice: params.DefaultPrice,
		Currency:     params.Currency,
		Category:     params.Category,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.items[st.ID] = st
	return st, nil
}

// Update implements Writer.
func (m *Memory) Update(_ context.Context, params UpdateParams) (CatalogService, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.items[params.ID]
	if !ok {
		return CatalogService{}, apperr.NotFound(catalogServiceNotFoundMessage)
	}
	if params.Name != nil {
		st.Name = *params.Name
	}
	if params.Description != nil {
		st.Description = params.Description
	}
	if params.DefaultPrice != nil {
		st.DefaultPrice = *params.DefaultPrice
	}
	if params.Currency != nil {
		st.Currency = *params.Currency
	}
	if params.Category != nil {
		st.Category = params.Category
	}
	st.UpdatedAt = m.now()
	m.items[st.ID] = st
	return st, nil
}

// SetActive implements Writer.
func (m *Memory) SetActive(_ context.Context, id uuid.UUID, isActive bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.items[id]
	if !ok {
		return apperr.NotFound(catalogServiceNotFoundMessage)
	}
	st.IsActive = isActive
	st.UpdatedAt = m.now()
	m.items[id] = st
	return nil
}
