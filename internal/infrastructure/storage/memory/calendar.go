package memory

import (
	"context"
	"slices"
	"time"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/id"
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain"
	"supplyfin/internal/domain/calendar"
)

// FreeDays returns the holiday repository.
func (s *Store) FreeDays() calendar.FreeDayRepository { return freeDayRepo{s} }

// DiscountSettings returns the discount settings repository.
func (s *Store) DiscountSettings() calendar.SettingsRepository { return settingsRepo{s} }

type freeDayRepo struct{ s *Store }

func (r freeDayRepo) Create(ctx context.Context, day *calendar.FreeDay) error {
	return r.s.do(ctx, func(st *state) error {
		st.freeDays[day.ID] = *day
		return nil
	})
}

func (r freeDayRepo) Update(ctx context.Context, day *calendar.FreeDay) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.freeDays[day.ID]; !ok {
			return apperror.NewNotFound("free day", day.ID)
		}
		st.freeDays[day.ID] = *day
		return nil
	})
}

func (r freeDayRepo) GetByID(ctx context.Context, dayID id.ID) (*calendar.FreeDay, error) {
	var out *calendar.FreeDay
	err := r.s.do(ctx, func(st *state) error {
		d, ok := st.freeDays[dayID]
		if !ok {
			return apperror.NewNotFound("free day", dayID)
		}
		out = &d
		return nil
	})
	return out, err
}

func (r freeDayRepo) FindByDate(ctx context.Context, date time.Time) (*calendar.FreeDay, error) {
	days, err := r.collect(ctx, func(d *calendar.FreeDay) bool {
		return types.Date(d.Date).Equal(types.Date(date))
	})
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, apperror.NewNotFound("free day", date.Format(time.DateOnly))
	}
	return days[0], nil
}

func (r freeDayRepo) ListActive(ctx context.Context) ([]*calendar.FreeDay, error) {
	return r.collect(ctx, func(d *calendar.FreeDay) bool { return d.IsActive })
}

func (r freeDayRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*calendar.FreeDay], error) {
	days, err := r.collect(ctx, func(d *calendar.FreeDay) bool { return filter.InRange(d.Date) })
	if err != nil {
		return domain.ListResult[*calendar.FreeDay]{}, err
	}
	return domain.Paginate(days, filter.Limit, filter.Offset), nil
}

func (r freeDayRepo) collect(ctx context.Context, match func(*calendar.FreeDay) bool) ([]*calendar.FreeDay, error) {
	var out []*calendar.FreeDay
	err := r.s.do(ctx, func(st *state) error {
		for _, d := range st.freeDays {
			if match(&d) {
				out = append(out, &d)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *calendar.FreeDay) int { return a.Date.Compare(b.Date) })
	return out, err
}

type settingsRepo struct{ s *Store }

func (r settingsRepo) Get(ctx context.Context, companyID id.ID) (*calendar.DiscountSettings, error) {
	var out *calendar.DiscountSettings
	err := r.s.do(ctx, func(st *state) error {
		v, ok := st.settings[companyID]
		if !ok {
			return apperror.NewNotFound("discount settings", companyID)
		}
		out = &v
		return nil
	})
	return out, err
}

func (r settingsRepo) Save(ctx context.Context, settings *calendar.DiscountSettings) error {
	return r.s.do(ctx, func(st *state) error {
		st.settings[settings.CompanyID] = *settings
		return nil
	})
}
