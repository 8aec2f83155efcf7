package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"supplyfin/internal/core/id"
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain/supply"
)

func TestReconcileMembership(t *testing.T) {
	a, b, c, d := id.New(), id.New(), id.New(), id.New()

	tests := []struct {
		name      string
		old, want []id.ID
		expected  Membership
		changed   bool
	}{
		{
			name:     "unchanged",
			old:      []id.ID{a, b},
			want:     []id.ID{b, a},
			expected: Membership{Kept: []id.ID{a, b}},
		},
		{
			name:     "release and add",
			old:      []id.ID{a, b, c},
			want:     []id.ID{a, d},
			expected: Membership{Kept: []id.ID{a}, Released: []id.ID{b, c}, Added: []id.ID{d}},
			changed:  true,
		},
		{
			name:     "release everything",
			old:      []id.ID{a},
			expected: Membership{Released: []id.ID{a}},
			changed:  true,
		},
		{
			name:     "duplicates collapse",
			want:     []id.ID{c, c, d},
			expected: Membership{Added: []id.ID{c, d}},
			changed:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ReconcileMembership(tt.old, tt.want)
			assert.Equal(t, tt.expected, m)
			assert.Equal(t, tt.changed, m.Changed())
		})
	}
}

func TestMembershipFinal(t *testing.T) {
	a, b := id.New(), id.New()
	m := Membership{Kept: []id.ID{a}, Released: []id.ID{id.New()}, Added: []id.ID{b}}
	assert.Equal(t, []id.ID{a, b}, m.Final())
}

func TestAmountOfSkipsInvoices(t *testing.T) {
	supplies := []*supply.Supply{
		{Type: supply.TypeAct, Amount: types.MustMoney("1000")},
		{Type: supply.TypeInvoice, Amount: types.MustMoney("1000")},
		{Type: supply.TypeCorrectionNote, Amount: types.MustMoney("-150.50")},
		{Type: supply.TypeUPD, Amount: types.MustMoney("20")},
	}
	assert.True(t, types.MustMoney("869.50").Equal(AmountOf(supplies)))
	assert.True(t, AmountOf(nil).IsZero())
}
