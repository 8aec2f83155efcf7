package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/entity"
	"supplyfin/internal/core/id"
	"supplyfin/internal/core/numerator"
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain/supply"
	"supplyfin/internal/infrastructure/storage/memory"
)

func newSupply(number string) *supply.Supply {
	return &supply.Supply{
		BaseEntity: entity.BaseEntity{ID: id.New()},
		Number:     number,
		Date:       types.Date(time.Now()),
		Type:       supply.TypeAct,
		Amount:     types.NewMoneyFromInt(1000),
		Status:     supply.StatusInProcess,
	}
}

func TestRunInTransaction_RollsBackOnError(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	sup := newSupply("A-1")
	boom := errors.New("boom")

	err := store.RunInTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, store.Supplies().Create(ctx, sup))
		require.NoError(t, store.RemoveSignatures(ctx, "registry", sup.ID))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Supplies().GetByID(ctx, sup.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, store.RemovedSignatures())
}

func TestRunInTransaction_CommitsAndNests(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	outer, inner := newSupply("A-1"), newSupply("A-2")

	err := store.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := store.Supplies().Create(ctx, outer); err != nil {
			return err
		}
		// joins the outer transaction instead of deadlocking on the store lock
		return store.RunInTransaction(ctx, func(ctx context.Context) error {
			return store.Supplies().Create(ctx, inner)
		})
	})
	require.NoError(t, err)

	for _, s := range []*supply.Supply{outer, inner} {
		got, err := store.Supplies().GetByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.Number, got.Number)
	}
}

func TestSupplyUpdate_VersionCheck(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	sup := newSupply("A-1")
	require.NoError(t, store.Supplies().Create(ctx, sup))

	stale := *sup
	sup.Status = supply.StatusInFinance
	require.NoError(t, store.Supplies().Update(ctx, sup))
	assert.Equal(t, 1, sup.Version)

	stale.Status = supply.StatusNotAvailable
	err := store.Supplies().Update(ctx, &stale)
	assert.True(t, apperror.IsConcurrentModification(err))

	got, err := store.Supplies().GetByID(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, supply.StatusInFinance, got.Status)
}

func TestGetNextNumber(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	period := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sv := numerator.Config{Prefix: "SV", Scope: "seller-1"}

	first, err := store.GetNextNumber(ctx, sv, period)
	require.NoError(t, err)
	second, err := store.GetNextNumber(ctx, sv, period)
	require.NoError(t, err)
	assert.Equal(t, "SV-2026-00001", first)
	assert.Equal(t, "SV-2026-00002", second)

	other, err := store.GetNextNumber(ctx, numerator.Config{Prefix: "SV", Scope: "seller-2"}, period)
	require.NoError(t, err)
	assert.Equal(t, "SV-2026-00001", other, "scopes keep separate sequences")

	nextYear, err := store.GetNextNumber(ctx, sv, period.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "SV-2027-00001", nextYear)

	// a rolled back transaction gives its number back
	_ = store.RunInTransaction(ctx, func(ctx context.Context) error {
		_, _ = store.GetNextNumber(ctx, sv, period)
		return errors.New("abort")
	})
	third, err := store.GetNextNumber(ctx, sv, period)
	require.NoError(t, err)
	assert.Equal(t, "SV-2026-00003", third)
}
