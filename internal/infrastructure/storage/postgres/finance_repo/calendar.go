package finance_repo

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"supplyfin/internal/core/id"
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain"
	"supplyfin/internal/domain/calendar"
	"supplyfin/internal/infrastructure/storage/postgres"
)

// FreeDayRepo stores the holiday calendar.
type FreeDayRepo struct {
	t table[calendar.FreeDay]
}

// NewFreeDayRepo creates a free day repository.
func NewFreeDayRepo(txm *postgres.TxManager) *FreeDayRepo {
	return &FreeDayRepo{t: newTable[calendar.FreeDay](txm, "free_days", "free day")}
}

var _ calendar.FreeDayRepository = (*FreeDayRepo)(nil)

func (r *FreeDayRepo) Create(ctx context.Context, day *calendar.FreeDay) error {
	return r.t.insert(ctx, day)
}

func (r *FreeDayRepo) Update(ctx context.Context, day *calendar.FreeDay) error {
	return r.t.update(ctx, day, day)
}

func (r *FreeDayRepo) GetByID(ctx context.Context, dayID id.ID) (*calendar.FreeDay, error) {
	return r.t.get(ctx, squirrel.Eq{"id": dayID}, dayID)
}

func (r *FreeDayRepo) FindByDate(ctx context.Context, date time.Time) (*calendar.FreeDay, error) {
	date = types.Date(date)
	return r.t.get(ctx, squirrel.Eq{"date": date}, date.Format(time.DateOnly))
}

func (r *FreeDayRepo) ListActive(ctx context.Context) ([]*calendar.FreeDay, error) {
	return r.t.selectRows(ctx, r.t.selectAll().
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("date"))
}

func (r *FreeDayRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*calendar.FreeDay], error) {
	return r.t.page(ctx, dateRange(squirrel.And{}, "date", filter), "date", filter)
}

// SettingsRepo stores per-buyer discount settings.
type SettingsRepo struct {
	t table[calendar.DiscountSettings]
}

// NewSettingsRepo creates a discount settings repository.
func NewSettingsRepo(txm *postgres.TxManager) *SettingsRepo {
	return &SettingsRepo{t: newTable[calendar.DiscountSettings](txm, "discount_settings", "discount settings")}
}

var _ calendar.SettingsRepository = (*SettingsRepo)(nil)

func (r *SettingsRepo) Get(ctx context.Context, companyID id.ID) (*calendar.DiscountSettings, error) {
	return r.t.get(ctx, squirrel.Eq{"company_id": companyID}, companyID)
}

func (r *SettingsRepo) Save(ctx context.Context, settings *calendar.DiscountSettings) error {
	return r.t.upsert(ctx, settings, "company_id")
}
