package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"supplyfin/internal/core/entity"
	"supplyfin/internal/core/id"
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain/registry"
)

type sample struct {
	entity.BaseEntity
	Code    string `db:"code"`
	Skipped string `db:"-"`
	Plain   string
	Ref     *id.ID `db:"ref_id"`
}

func TestExtractDBColumns(t *testing.T) {
	assert.Equal(t,
		[]string{"id", "version", "creation_date", "update_date", "code", "ref_id"},
		ExtractDBColumns[sample]())

	cols := ExtractDBColumns[registry.Registry]()
	assert.Contains(t, cols, "sign_status")
	assert.Contains(t, cols, "finance_type")
	assert.NotContains(t, cols, "supplies")
	assert.NotContains(t, cols, "discount")
}

func TestStructToMap(t *testing.T) {
	now := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	s := sample{BaseEntity: entity.NewBaseEntity(now), Code: "A", Skipped: "x", Plain: "y"}
	s.Version = 5

	m := StructToMap(&s)

	assert.Len(t, m, 6)
	assert.Equal(t, s.ID, m["id"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, now, m["creation_date"])
	assert.Equal(t, "A", m["code"])
	assert.Nil(t, m["ref_id"])
	assert.Nil(t, StructToMap(42))

	r := registry.Registry{Amount: types.MustMoney("12.50")}
	assert.True(t, types.MustMoney("12.5").Equal(StructToMap(r)["amount"].(types.Money)))
}

func TestWithout(t *testing.T) {
	assert.Equal(t, []string{"b", "d"}, Without([]string{"a", "b", "c", "d"}, "a", "c"))
}
