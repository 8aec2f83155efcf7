package calendar

import (
	"context"
	"time"

	"supplyfin/internal/core/apperror"
	appctx "supplyfin/internal/core/context"
	"supplyfin/internal/core/entity"
	"supplyfin/internal/core/id"
	"supplyfin/internal/core/tx"
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain"
	"supplyfin/pkg/logger"
)

// Rejection reasons.
const (
	ReasonAdminRequired    = "calendar-admin-required"
	ReasonSettingsForeign  = "discount-settings-belong-to-another-company"
	ReasonFreeDayDuplicate = "free-day-already-active"
)

// Service administers the holiday calendar and discount settings and
// validates planned payment dates for a buyer.
type Service struct {
	freeDays  FreeDayRepository
	settings  SettingsRepository
	txManager tx.Manager
	validator PlanValidator
	now       func() time.Time
}

// NewService creates a calendar service.
func NewService(freeDays FreeDayRepository, settings SettingsRepository, txManager tx.Manager, validator PlanValidator) *Service {
	return &Service{
		freeDays:  freeDays,
		settings:  settings,
		txManager: txManager,
		validator: validator,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Today returns the current calendar date.
func (s *Service) Today() time.Time {
	return types.Date(s.now())
}

// AddFreeDay marks date as a holiday, reactivating a deactivated entry.
func (s *Service) AddFreeDay(ctx context.Context, date time.Time) (*FreeDay, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	date = types.Date(date)

	var day *FreeDay
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.freeDays.FindByDate(ctx, date)
		switch {
		case err == nil && existing.IsActive:
			return apperror.NewValidation(ReasonFreeDayDuplicate, "free day already exists").
				WithDetail("date", date.Format(time.DateOnly))
		case err == nil:
			existing.IsActive = true
			existing.Touch(s.now())
			day = existing
			return s.freeDays.Update(ctx, existing)
		case !apperror.IsNotFound(err):
			return err
		}

		day = &FreeDay{BaseEntity: entity.NewBaseEntity(s.now()), Date: date, IsActive: true}
		return s.freeDays.Create(ctx, day)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "free day added", "date", date.Format(time.DateOnly))
	return day, nil
}

// DeactivateFreeDay turns a holiday back into a regular day.
func (s *Service) DeactivateFreeDay(ctx context.Context, dayID id.ID) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		day, err := s.freeDays.GetByID(ctx, dayID)
		if err != nil {
			return err
		}
		if !day.IsActive {
			return nil
		}
		day.IsActive = false
		day.Touch(s.now())
		return s.freeDays.Update(ctx, day)
	})
}

// ListFreeDays returns entries, active or not, within filter's date range.
func (s *Service) ListFreeDays(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*FreeDay], error) {
	return s.freeDays.List(ctx, filter)
}

// GetDiscountSettings returns the company's settings or the defaults.
func (s *Service) GetDiscountSettings(ctx context.Context, companyID id.ID) (*DiscountSettings, error) {
	settings, err := s.settings.Get(ctx, companyID)
	if apperror.IsNotFound(err) {
		return DefaultSettings(companyID), nil
	}
	return settings, err
}

// SaveDiscountSettings validates and stores settings for the acting company.
func (s *Service) SaveDiscountSettings(ctx context.Context, settings *DiscountSettings) error {
	session, err := appctx.RequireSession(ctx)
	if err != nil {
		return err
	}
	if !session.IsAdmin() && session.CompanyID != settings.CompanyID {
		return apperror.NewForbidden(ReasonSettingsForeign, "discount settings belong to another company")
	}
	if err := ValidateSettings(settings); err != nil {
		return err
	}
	settings.UpdateDate = s.now().UTC()

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.settings.Save(ctx, settings)
	})
}

// ValidatePlan checks plan against the buyer's settings and the active holidays.
func (s *Service) ValidatePlan(ctx context.Context, buyerID id.ID, plan time.Time) error {
	settings, err := s.GetDiscountSettings(ctx, buyerID)
	if err != nil {
		return err
	}
	days, err := s.freeDays.ListActive(ctx)
	if err != nil {
		return err
	}
	return s.validator.Validate(plan, s.Today(), settings, NewFreeDaySet(days))
}

func requireAdmin(ctx context.Context) error {
	session, err := appctx.RequireSession(ctx)
	if err != nil {
		return err
	}
	if !session.IsAdmin() {
		return apperror.NewForbidden(ReasonAdminRequired, "only administrators manage the calendar")
	}
	return nil
}
