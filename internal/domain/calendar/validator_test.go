package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/id"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestMaskOf(t *testing.T) {
	assert.Equal(t, Monday, MaskOf(time.Monday))
	assert.Equal(t, Sunday, MaskOf(time.Sunday))
	assert.Equal(t, WeekdayMask(0x7F), AllWeekdays)
	assert.True(t, (Monday | Friday).Allows(time.Friday))
	assert.False(t, (Monday | Friday).Allows(time.Saturday))
}

func TestPlanValidator_Validate(t *testing.T) {
	v := NewPlanValidator(0)
	mondays := &DiscountSettings{PaymentWeekDays: Monday, DaysType: DaysTypeCalendar, MinimumDaysToShift: 2}
	working := &DiscountSettings{PaymentWeekDays: Monday | Tuesday, DaysType: DaysTypeWorking, MinimumDaysToShift: 2}
	holidays := NewFreeDaySet([]*FreeDay{
		{Date: date("2026-10-11"), IsActive: true},
		{Date: date("2026-10-13"), IsActive: false},
	})

	tests := []struct {
		name     string
		today    string
		plan     string
		settings *DiscountSettings
		free     FreeDaySet
		wantErr  string
	}{
		{
			name:     "calendar shift too small",
			today:    "2026-10-11",
			plan:     "2026-10-12",
			settings: mondays,
			wantErr:  ReasonTooEarly,
		},
		{
			name:     "calendar shift satisfied",
			today:    "2026-10-10",
			plan:     "2026-10-12",
			settings: mondays,
		},
		{
			name:     "weekday not allowed",
			today:    "2026-10-01",
			plan:     "2026-10-13",
			settings: mondays,
			wantErr:  ReasonWeekdayNotAllowed,
		},
		{
			name:     "working days skip holiday",
			today:    "2026-10-10",
			plan:     "2026-10-12",
			settings: working,
			free:     holidays,
			wantErr:  ReasonTooEarly,
		},
		{
			name:     "working days reach next day after holiday",
			today:    "2026-10-10",
			plan:     "2026-10-13",
			settings: working,
			free:     holidays,
		},
		{
			name:     "inactive holiday counts as working day",
			today:    "2026-10-11",
			plan:     "2026-10-13",
			settings: working,
			free:     holidays,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(date(tt.plan), date(tt.today), tt.settings, tt.free)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
			assert.True(t, apperror.HasCode(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestPlanValidator_HorizonExceeded(t *testing.T) {
	v := NewPlanValidator(5)
	settings := &DiscountSettings{PaymentWeekDays: AllWeekdays, DaysType: DaysTypeWorking, MinimumDaysToShift: 10}

	_, err := v.EarliestDate(date("2026-10-10"), settings, nil)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, ReasonHorizonExceeded))

	settings.MinimumDaysToShift = 5
	earliest, err := v.EarliestDate(date("2026-10-10"), settings, nil)
	require.NoError(t, err)
	assert.Equal(t, date("2026-10-15"), earliest)
}

func TestValidateNotAfterDelayEnd(t *testing.T) {
	ends := []time.Time{date("2026-11-01"), date("2026-12-01"), date("2026-11-15")}

	assert.NoError(t, ValidateNotAfterDelayEnd(date("2026-12-01"), ends))
	assert.NoError(t, ValidateNotAfterDelayEnd(date("2026-12-02"), nil))

	err := ValidateNotAfterDelayEnd(date("2026-12-02"), ends)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, ReasonAfterDelayEndDate))
}

func TestValidateSettings(t *testing.T) {
	assert.NoError(t, ValidateSettings(DefaultSettings(id.New())))
	assert.True(t, apperror.HasCode(
		ValidateSettings(&DiscountSettings{DaysType: DaysTypeCalendar}), ReasonSettingsWeekdaysEmpty))
	assert.True(t, apperror.HasCode(
		ValidateSettings(&DiscountSettings{PaymentWeekDays: Monday, DaysType: DaysTypeCalendar, MinimumDaysToShift: -1}),
		ReasonSettingsShiftNegative))
	assert.True(t, apperror.HasCode(
		ValidateSettings(&DiscountSettings{PaymentWeekDays: Monday, DaysType: "lunar"}), ReasonSettingsDaysTypeUnknown))
}
