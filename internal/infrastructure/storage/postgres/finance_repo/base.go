// Package finance_repo provides PostgreSQL implementations of the domain repositories.
package finance_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/entity"
	"supplyfin/internal/domain"
	"supplyfin/internal/infrastructure/storage/postgres"
)

// builder uses PostgreSQL placeholders.
var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// table provides CRUD over one table whose columns follow the "db" tags of T.
type table[T any] struct {
	txm    *postgres.TxManager
	name   string
	entity string
	cols   []string
}

func newTable[T any](txm *postgres.TxManager, name, entity string) table[T] {
	return table[T]{txm: txm, name: name, entity: entity, cols: postgres.ExtractDBColumns[T]()}
}

func (t table[T]) querier(ctx context.Context) postgres.Querier {
	return t.txm.GetQuerier(ctx)
}

func (t table[T]) values(v *T, cols []string) map[string]any {
	data := postgres.StructToMap(v)
	out := make(map[string]any, len(cols))
	for _, c := range cols {
		out[c] = data[c]
	}
	return out
}

func (t table[T]) insert(ctx context.Context, v *T) error {
	sql, args, err := builder.Insert(t.name).SetMap(t.values(v, t.cols)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := t.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", t.name, err)
	}
	return nil
}

// update saves v with optimistic locking and bumps its version.
func (t table[T]) update(ctx context.Context, v *T, e entity.Versioned) error {
	q := builder.Update(t.name).
		SetMap(t.values(v, postgres.Without(t.cols, "id", "version", "creation_date"))).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": e.GetID()}).
		Where(squirrel.Eq{"version": e.GetVersion()})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	res, err := t.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", t.name, err)
	}
	if res.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(t.entity, e.GetID())
	}
	e.SetVersion(e.GetVersion() + 1)
	return nil
}

// upsert writes v, replacing the row with the same conflict key.
func (t table[T]) upsert(ctx context.Context, v *T, conflict string, keep ...string) error {
	set := postgres.Without(t.cols, append([]string{conflict}, keep...)...)
	suffix := "ON CONFLICT (" + conflict + ") DO UPDATE SET "
	for i, c := range set {
		if i > 0 {
			suffix += ", "
		}
		suffix += c + " = EXCLUDED." + c
	}
	sql, args, err := builder.Insert(t.name).SetMap(t.values(v, t.cols)).Suffix(suffix).ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := t.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", t.name, err)
	}
	return nil
}

func (t table[T]) delete(ctx context.Context, where squirrel.Sqlizer, key any) error {
	sql, args, err := builder.Delete(t.name).Where(where).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	res, err := t.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.name, err)
	}
	if res.RowsAffected() == 0 {
		return apperror.NewNotFound(t.entity, key)
	}
	return nil
}

func (t table[T]) selectAll() squirrel.SelectBuilder {
	return builder.Select(t.cols...).From(t.name)
}

// get returns the single row matching where, or NotFound for key.
func (t table[T]) get(ctx context.Context, where squirrel.Sqlizer, key any) (*T, error) {
	sql, args, err := t.selectAll().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	out := new(T)
	if err := pgxscan.Get(ctx, t.querier(ctx), out, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(t.entity, key)
		}
		return nil, fmt.Errorf("get %s: %w", t.name, err)
	}
	return out, nil
}

func (t table[T]) selectRows(ctx context.Context, q squirrel.SelectBuilder) ([]*T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var out []*T
	if err := pgxscan.Select(ctx, t.querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", t.name, err)
	}
	return out, nil
}

// page runs q with the filter's limit and offset plus a total count.
func (t table[T]) page(ctx context.Context, where squirrel.And, orderBy string, f domain.ListFilter) (domain.ListResult[*T], error) {
	res := domain.ListResult[*T]{Limit: f.Limit, Offset: f.Offset}

	sql, args, err := builder.Select("count(*)").From(t.name).Where(where).ToSql()
	if err != nil {
		return res, fmt.Errorf("build count: %w", err)
	}
	if err := t.querier(ctx).QueryRow(ctx, sql, args...).Scan(&res.TotalCount); err != nil {
		return res, fmt.Errorf("count %s: %w", t.name, err)
	}

	q := t.selectAll().Where(where).OrderBy(orderBy)
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	if res.Items, err = t.selectRows(ctx, q); err != nil {
		return res, err
	}
	return res, nil
}

// dateRange adds the filter's inclusive bounds on column.
func dateRange(where squirrel.And, column string, f domain.ListFilter) squirrel.And {
	if f.DateFrom != nil {
		where = append(where, squirrel.GtOrEq{column: *f.DateFrom})
	}
	if f.DateTo != nil {
		where = append(where, squirrel.LtOrEq{column: *f.DateTo})
	}
	return where
}
