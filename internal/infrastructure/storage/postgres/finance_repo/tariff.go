package finance_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"supplyfin/internal/core/id"
	"supplyfin/internal/domain/tariff"
	"supplyfin/internal/infrastructure/storage/postgres"
)

// TariffRepo stores tariff bands.
type TariffRepo struct {
	t     table[tariff.Tariff]
	batch *postgres.BatchExecutor
}

// NewTariffRepo creates a tariff repository.
func NewTariffRepo(txm *postgres.TxManager) *TariffRepo {
	return &TariffRepo{
		t:     newTable[tariff.Tariff](txm, "tariffs", "tariff"),
		batch: postgres.NewBatchExecutor(txm),
	}
}

var _ tariff.Repository = (*TariffRepo)(nil)

func (r *TariffRepo) ListByOwner(ctx context.Context, ownerID id.ID) ([]*tariff.Tariff, error) {
	return r.t.selectRows(ctx, r.t.selectAll().
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("from_amount", "from_day"))
}

// ReplaceForOwner must run inside a transaction.
func (r *TariffRepo) ReplaceForOwner(ctx context.Context, ownerID id.ID, bands []*tariff.Tariff) error {
	sql, args, err := builder.Delete(r.t.name).Where(squirrel.Eq{"owner_id": ownerID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	queries := make([]postgres.BatchQuery, 0, len(bands)+1)
	queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})

	for _, b := range bands {
		sql, args, err := builder.Insert(r.t.name).SetMap(r.t.values(b, r.t.cols)).ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
	}
	return r.batch.ExecuteBatch(ctx, queries)
}
