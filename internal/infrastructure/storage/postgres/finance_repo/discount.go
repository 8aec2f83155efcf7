package finance_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"supplyfin/internal/core/id"
	"supplyfin/internal/domain/registry"
	"supplyfin/internal/infrastructure/storage/postgres"
)

// DiscountRepo stores registry discounts and their per-supply allocations.
type DiscountRepo struct {
	discounts   table[registry.Discount]
	allocations table[registry.SupplyDiscount]
	batch       *postgres.BatchExecutor
}

// NewDiscountRepo creates a discount repository.
func NewDiscountRepo(txm *postgres.TxManager) *DiscountRepo {
	return &DiscountRepo{
		discounts:   newTable[registry.Discount](txm, "discounts", "discount"),
		allocations: newTable[registry.SupplyDiscount](txm, "supply_discounts", "supply discount"),
		batch:       postgres.NewBatchExecutor(txm),
	}
}

var _ registry.DiscountRepository = (*DiscountRepo)(nil)

func (r *DiscountRepo) Get(ctx context.Context, registryID id.ID) (*registry.Discount, error) {
	d, err := r.discounts.get(ctx, squirrel.Eq{"registry_id": registryID}, registryID)
	if err != nil {
		return nil, err
	}
	rows, err := r.allocations.selectRows(ctx, r.allocations.selectAll().
		Where(squirrel.Eq{"registry_id": registryID}).
		OrderBy("supply_id"))
	if err != nil {
		return nil, err
	}
	d.Allocations = make([]registry.SupplyDiscount, 0, len(rows))
	for _, a := range rows {
		d.Allocations = append(d.Allocations, *a)
	}
	return d, nil
}

// Save must run inside a transaction: the allocation set is replaced in one batch.
func (r *DiscountRepo) Save(ctx context.Context, d *registry.Discount) error {
	if err := r.discounts.upsert(ctx, d, "registry_id"); err != nil {
		return err
	}

	sql, args, err := builder.Delete(r.allocations.name).Where(squirrel.Eq{"registry_id": d.RegistryID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	queries := []postgres.BatchQuery{{SQL: sql, Args: args}}

	for i := range d.Allocations {
		a := d.Allocations[i]
		a.RegistryID = d.RegistryID
		sql, args, err := builder.Insert(r.allocations.name).
			SetMap(r.allocations.values(&a, r.allocations.cols)).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
	}
	return r.batch.ExecuteBatch(ctx, queries)
}

// Delete removes the discount; allocations cascade.
func (r *DiscountRepo) Delete(ctx context.Context, registryID id.ID) error {
	return r.discounts.delete(ctx, squirrel.Eq{"registry_id": registryID}, registryID)
}
