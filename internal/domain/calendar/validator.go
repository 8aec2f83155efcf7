package calendar

import (
	"time"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/types"
)

// DefaultHorizon bounds the working-day walk.
const DefaultHorizon = 366

// Validation reasons.
const (
	ReasonWeekdayNotAllowed       = "payment-date-weekday-not-allowed"
	ReasonTooEarly                = "payment-date-too-early"
	ReasonHorizonExceeded         = "payment-date-search-horizon-exceeded"
	ReasonAfterDelayEndDate       = "payment-date-after-delay-end-date"
	ReasonSettingsWeekdaysEmpty   = "discount-settings-weekdays-empty"
	ReasonSettingsShiftNegative   = "discount-settings-shift-negative"
	ReasonSettingsDaysTypeUnknown = "discount-settings-days-type-unknown"
)

// PlanValidator checks planned payment dates against buyer settings.
type PlanValidator struct {
	// Horizon is the maximum number of days walked when counting working
	// days. A quota not consumed within it rejects the plan.
	Horizon int
}

// NewPlanValidator returns a validator; a non-positive horizon selects DefaultHorizon.
func NewPlanValidator(horizon int) PlanValidator {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	return PlanValidator{Horizon: horizon}
}

// EarliestDate returns the first date a payment may be planned for.
func (v PlanValidator) EarliestDate(today time.Time, settings *DiscountSettings, free FreeDaySet) (time.Time, error) {
	today = types.Date(today)
	if settings.DaysType != DaysTypeWorking {
		return types.AddDays(today, settings.MinimumDaysToShift), nil
	}

	date := today
	for counted, walked := 0, 0; counted < settings.MinimumDaysToShift; walked++ {
		if walked >= v.Horizon {
			return time.Time{}, apperror.NewValidation(ReasonHorizonExceeded, "minimum shift not reachable within search horizon").
				WithDetail("horizon", v.Horizon).
				WithDetail("minimumDaysToShift", settings.MinimumDaysToShift)
		}
		date = types.AddDays(date, 1)
		if !free.Has(date) {
			counted++
		}
	}
	return date, nil
}

// Validate rejects plan when its weekday is not allowed or it falls before
// the earliest permitted date.
func (v PlanValidator) Validate(plan, today time.Time, settings *DiscountSettings, free FreeDaySet) error {
	plan = types.Date(plan)
	if !settings.PaymentWeekDays.Allows(plan.Weekday()) {
		return apperror.NewValidation(ReasonWeekdayNotAllowed, "payment is not allowed on this weekday").
			WithDetail("plannedPaymentDate", plan.Format(time.DateOnly)).
			WithDetail("weekday", plan.Weekday().String())
	}

	earliest, err := v.EarliestDate(today, settings, free)
	if err != nil {
		return err
	}
	if plan.Before(earliest) {
		return apperror.NewValidation(ReasonTooEarly, "planned payment date is earlier than allowed").
			WithDetail("plannedPaymentDate", plan.Format(time.DateOnly)).
			WithDetail("earliestDate", earliest.Format(time.DateOnly))
	}
	return nil
}

// ValidateNotAfterDelayEnd rejects plan when it is later than the latest of delayEnds.
func ValidateNotAfterDelayEnd(plan time.Time, delayEnds []time.Time) error {
	if len(delayEnds) == 0 {
		return nil
	}
	latest := types.Date(delayEnds[0])
	for _, d := range delayEnds[1:] {
		if d = types.Date(d); d.After(latest) {
			latest = d
		}
	}
	if types.Date(plan).After(latest) {
		return apperror.NewValidation(ReasonAfterDelayEndDate, "planned payment date is later than the latest delay end date").
			WithDetail("plannedPaymentDate", types.Date(plan).Format(time.DateOnly)).
			WithDetail("delayEndDate", latest.Format(time.DateOnly))
	}
	return nil
}

// ValidateSettings checks settings before they are saved.
func ValidateSettings(s *DiscountSettings) error {
	if s.PaymentWeekDays&AllWeekdays == 0 {
		return apperror.NewValidation(ReasonSettingsWeekdaysEmpty, "at least one payment weekday is required")
	}
	if s.MinimumDaysToShift < 0 {
		return apperror.NewValidation(ReasonSettingsShiftNegative, "minimum days to shift must not be negative")
	}
	if !s.DaysType.Valid() {
		return apperror.NewValidation(ReasonSettingsDaysTypeUnknown, "unknown days type").
			WithDetail("daysType", string(s.DaysType))
	}
	return nil
}
