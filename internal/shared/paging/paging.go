// Package paging normalizes page/pageSize query parameters.
package paging

import "agency_crm_backend/internal/ports"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Normalize clamps page and pageSize and returns the offset window.
func Normalize(page, pageSize int) (int, int, ports.Page) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, ports.Page{Offset: (page - 1) * pageSize, Limit: pageSize}
}

// TotalPages returns the number of pages needed for total items.
func TotalPages(total, pageSize int) int {
	if total == 0 || pageSize < 1 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
