// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/id"
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain"
)

// Date is a calendar date encoded as "2006-01-02".
type Date struct {
	time.Time
}

// NewDate wraps t truncated to its calendar day.
func NewDate(t time.Time) Date {
	return Date{types.Date(t)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.DateOnly))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return fmt.Errorf("date %q: expected YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

// Ptr returns the date as an optional time.
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// --- Pagination ---

// ListQuery contains pagination and date range parameters.
type ListQuery struct {
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
	DateFrom string `form:"dateFrom"`
	DateTo   string `form:"dateTo"`
}

// ToFilter converts the query into a domain filter, defaulting the limit.
func (q ListQuery) ToFilter() (domain.ListFilter, error) {
	f := domain.DefaultListFilter()
	if q.Limit > 0 {
		f.Limit = q.Limit
	}
	f.Offset = q.Offset

	var err error
	if f.DateFrom, err = parseQueryDate("dateFrom", q.DateFrom); err != nil {
		return f, err
	}
	if f.DateTo, err = parseQueryDate("dateTo", q.DateTo); err != nil {
		return f, err
	}
	return f, nil
}

func parseQueryDate(key, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, apperror.NewValidation(apperror.CodeValidation, "invalid date").
			WithDetail("param", key).
			WithDetail("value", raw)
	}
	return &t, nil
}

// ParseIDs parses a list of identifiers, reporting the first bad one.
func ParseIDs(raw []string) ([]id.ID, error) {
	out := make([]id.ID, 0, len(raw))
	for _, s := range raw {
		v, err := id.Parse(s)
		if err != nil {
			return nil, apperror.NewValidation(apperror.CodeValidation, "invalid id").WithDetail("value", s)
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseOptionalID parses an optional identifier.
func ParseOptionalID(field, raw string) (*id.ID, error) {
	v, err := id.ParseOptional(raw)
	if err != nil {
		return nil, apperror.NewValidation(apperror.CodeValidation, "invalid id").
			WithDetail("field", field).
			WithDetail("value", raw)
	}
	return v, nil
}

// --- Responses ---

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// NewListResponse converts a domain page with conv.
func NewListResponse[E, T any](res domain.ListResult[E], conv func(E) T) ListResponse[T] {
	items := make([]T, 0, len(res.Items))
	for _, e := range res.Items {
		items = append(items, conv(e))
	}
	return ListResponse[T]{Items: items, TotalCount: res.TotalCount, Limit: res.Limit, Offset: res.Offset}
}

// ItemErrorResponse reports one rejected element of a batch.
type ItemErrorResponse struct {
	Index  int            `json:"index"`
	Number string         `json:"number,omitempty"`
	Code   string         `json:"code"`
	Args   map[string]any `json:"args,omitempty"`
}

// FromItemErrors converts batch failures.
func FromItemErrors(items []apperror.ItemError) []ItemErrorResponse {
	out := make([]ItemErrorResponse, 0, len(items))
	for _, it := range items {
		out = append(out, ItemErrorResponse(it))
	}
	return out
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// optionalString formats an optional ID.
func optionalString(v *id.ID) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}
