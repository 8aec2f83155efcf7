package dto

import (
	"supplyfin/internal/core/id"
	"supplyfin/internal/domain/calendar"
)

// AddFreeDayRequest marks a date as a holiday.
type AddFreeDayRequest struct {
	Date *Date `json:"date" binding:"required"`
}

// FreeDayResponse is one calendar entry.
type FreeDayResponse struct {
	ID       string `json:"id"`
	Date     Date   `json:"date"`
	IsActive bool   `json:"isActive"`
}

// FromFreeDay converts a calendar entry.
func FromFreeDay(d *calendar.FreeDay) FreeDayResponse {
	return FreeDayResponse{ID: d.ID.String(), Date: NewDate(d.Date), IsActive: d.IsActive}
}

// DiscountSettingsBody is both the request and the response of the settings endpoints.
type DiscountSettingsBody struct {
	PaymentWeekDays    []string `json:"paymentWeekDays" binding:"required,min=1,dive,oneof=mon tue wed thu fri sat sun"`
	DaysType           string   `json:"daysType" binding:"required"`
	MinimumDaysToShift int      `json:"minimumDaysToShift"`
}

var weekdayNames = []struct {
	name string
	mask calendar.WeekdayMask
}{
	{"mon", calendar.Monday},
	{"tue", calendar.Tuesday},
	{"wed", calendar.Wednesday},
	{"thu", calendar.Thursday},
	{"fri", calendar.Friday},
	{"sat", calendar.Saturday},
	{"sun", calendar.Sunday},
}

// ToDomain converts the body for companyID.
func (b *DiscountSettingsBody) ToDomain(companyID id.ID) *calendar.DiscountSettings {
	var mask calendar.WeekdayMask
	for _, day := range b.PaymentWeekDays {
		for _, w := range weekdayNames {
			if w.name == day {
				mask |= w.mask
			}
		}
	}
	return &calendar.DiscountSettings{
		CompanyID:          companyID,
		PaymentWeekDays:    mask,
		DaysType:           calendar.DaysType(b.DaysType),
		MinimumDaysToShift: b.MinimumDaysToShift,
	}
}

// FromDiscountSettings converts stored settings.
func FromDiscountSettings(s *calendar.DiscountSettings) DiscountSettingsBody {
	body := DiscountSettingsBody{
		PaymentWeekDays:    []string{},
		DaysType:           string(s.DaysType),
		MinimumDaysToShift: s.MinimumDaysToShift,
	}
	for _, w := range weekdayNames {
		if s.PaymentWeekDays&w.mask != 0 {
			body.PaymentWeekDays = append(body.PaymentWeekDays, w.name)
		}
	}
	return body
}
