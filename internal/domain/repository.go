// Package domain provides types shared by all domain packages.
package domain

import (
	"time"
)

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// DateFrom / DateTo bound the business date (inclusive)
	DateFrom *time.Time
	DateTo   *time.Time

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{Limit: 50}
}

// InRange reports whether t falls within the filter's date bounds.
func (f ListFilter) InRange(t time.Time) bool {
	if f.DateFrom != nil && t.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && t.After(*f.DateTo) {
		return false
	}
	return true
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// Paginate slices items according to limit/offset and wraps them into a ListResult.
func Paginate[T any](items []T, limit, offset int) ListResult[T] {
	res := ListResult[T]{TotalCount: int64(len(items)), Limit: limit, Offset: offset}
	if offset > len(items) {
		offset = len(items)
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	res.Items = items[offset:end]
	return res
}
