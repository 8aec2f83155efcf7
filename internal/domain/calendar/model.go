// Package calendar holds the holiday calendar and the buyer settings that
// constrain planned payment dates.
package calendar

import (
	"context"
	"time"

	"supplyfin/internal/core/entity"
	"supplyfin/internal/core/id"
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain"
)

// FreeDay is a holiday. Entries are deactivated, never deleted.
type FreeDay struct {
	entity.BaseEntity

	Date     time.Time `db:"date" json:"date"`
	IsActive bool      `db:"is_active" json:"isActive"`
}

// DaysType selects how MinimumDaysToShift is counted.
type DaysType string

const (
	DaysTypeCalendar DaysType = "calendar"
	DaysTypeWorking  DaysType = "working"
)

// Valid reports whether t is a known days type.
func (t DaysType) Valid() bool {
	return t == DaysTypeCalendar || t == DaysTypeWorking
}

// WeekdayMask is a bit set of weekdays, Monday in the lowest bit.
type WeekdayMask uint8

const (
	Monday WeekdayMask = 1 << iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday

	AllWeekdays = Monday | Tuesday | Wednesday | Thursday | Friday | Saturday | Sunday
)

// MaskOf returns the bit for d.
func MaskOf(d time.Weekday) WeekdayMask {
	// time.Sunday is 0; shift so Monday lands on bit 0.
	return 1 << ((int(d) + 6) % 7)
}

// Allows reports whether d is in the mask.
func (m WeekdayMask) Allows(d time.Weekday) bool {
	return m&MaskOf(d) != 0
}

// DiscountSettings are per-buyer rules for planned payment dates.
type DiscountSettings struct {
	CompanyID          id.ID       `db:"company_id" json:"companyId"`
	PaymentWeekDays    WeekdayMask `db:"payment_week_days" json:"paymentWeekDays"`
	DaysType           DaysType    `db:"days_type" json:"daysType"`
	MinimumDaysToShift int         `db:"minimum_days_to_shift" json:"minimumDaysToShift"`
	UpdateDate         time.Time   `db:"update_date" json:"updateDate"`
}

// DefaultSettings allows every weekday with no shift.
func DefaultSettings(companyID id.ID) *DiscountSettings {
	return &DiscountSettings{
		CompanyID:       companyID,
		PaymentWeekDays: AllWeekdays,
		DaysType:        DaysTypeCalendar,
	}
}

// FreeDaySet is a lookup of active holiday dates.
type FreeDaySet map[time.Time]struct{}

// NewFreeDaySet collects the active entries of days.
func NewFreeDaySet(days []*FreeDay) FreeDaySet {
	set := make(FreeDaySet, len(days))
	for _, d := range days {
		if d.IsActive {
			set[types.Date(d.Date)] = struct{}{}
		}
	}
	return set
}

// Has reports whether the calendar day of t is a holiday.
func (s FreeDaySet) Has(t time.Time) bool {
	_, ok := s[types.Date(t)]
	return ok
}

// FreeDayRepository persists holidays.
type FreeDayRepository interface {
	Create(ctx context.Context, day *FreeDay) error
	Update(ctx context.Context, day *FreeDay) error
	GetByID(ctx context.Context, dayID id.ID) (*FreeDay, error)
	// FindByDate returns NotFound when no entry exists for date.
	FindByDate(ctx context.Context, date time.Time) (*FreeDay, error)
	ListActive(ctx context.Context) ([]*FreeDay, error)
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*FreeDay], error)
}

// SettingsRepository persists DiscountSettings.
type SettingsRepository interface {
	// Get returns NotFound when the company has no settings.
	Get(ctx context.Context, companyID id.ID) (*DiscountSettings, error)
	Save(ctx context.Context, settings *DiscountSettings) error
}
