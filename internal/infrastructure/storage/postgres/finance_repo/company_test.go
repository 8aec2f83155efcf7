package finance_repo

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplyfin/internal/core/entity"
	"supplyfin/internal/core/id"
	"supplyfin/internal/domain/contract"
)

func TestContractRepo_InsertReturnsConflictingRow(t *testing.T) {
	repo := NewContractRepo(nil, nil)
	c := &contract.Contract{
		BaseEntity: entity.NewBaseEntity(time.Now()),
		SellerID:   id.New(),
		BuyerID:    id.New(),
		Status:     contract.StatusActive,
	}

	sql, args, err := repo.insertOrReturn(c).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sql, "INSERT INTO contracts "))
	assert.Contains(t, sql, "ON CONFLICT (seller_id, buyer_id) DO UPDATE SET seller_id = EXCLUDED.seller_id")
	assert.NotContains(t, sql, "DO NOTHING")
	assert.True(t, strings.HasSuffix(sql, "RETURNING "+strings.Join(repo.t.cols, ", ")))
	assert.Contains(t, args, c.SellerID)
	assert.Contains(t, args, c.BuyerID)
	assert.Len(t, args, len(repo.t.cols))
}
