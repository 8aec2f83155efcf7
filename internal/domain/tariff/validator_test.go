package tariff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/types"
)

func intPtr(v int) *int { return &v }

func moneyPtr(s string) *types.Money {
	m := types.MustMoney(s)
	return &m
}

func band(fromDay int, untilDay *int, fromAmount string, untilAmount *types.Money) *Tariff {
	return &Tariff{
		FromDay:     fromDay,
		UntilDay:    untilDay,
		FromAmount:  types.MustMoney(fromAmount),
		UntilAmount: untilAmount,
		Rate:        types.MustMoney("5"),
		Type:        TypeDiscounting,
	}
}

func TestValidateBands(t *testing.T) {
	tests := []struct {
		name    string
		bands   []*Tariff
		wantErr string
	}{
		{
			name:  "empty set",
			bands: nil,
		},
		{
			name:  "single open band",
			bands: []*Tariff{band(0, nil, "0", nil)},
		},
		{
			name: "grid of two day ranges by two amount ranges",
			bands: []*Tariff{
				band(1, intPtr(10), "0", moneyPtr("999.99")),
				band(11, nil, "0", moneyPtr("999.99")),
				band(1, intPtr(10), "1000", nil),
				band(11, nil, "1000", nil),
			},
		},
		{
			name: "day gap",
			bands: []*Tariff{
				band(1, intPtr(10), "0", nil),
				band(12, nil, "0", nil),
			},
			wantErr: ReasonRangeGap,
		},
		{
			name: "day overlap",
			bands: []*Tariff{
				band(1, intPtr(10), "0", nil),
				band(10, nil, "0", nil),
			},
			wantErr: ReasonRangeOverlap,
		},
		{
			name: "amount gap of two minor units",
			bands: []*Tariff{
				band(0, nil, "0", moneyPtr("100")),
				band(0, nil, "100.02", nil),
			},
			wantErr: ReasonRangeGap,
		},
		{
			name: "open band below a bounded one",
			bands: []*Tariff{
				band(1, nil, "0", nil),
				band(5, intPtr(10), "0", nil),
			},
			wantErr: ReasonOpenBandNotLast,
		},
		{
			name: "top band bounded",
			bands: []*Tariff{
				band(1, intPtr(10), "0", nil),
				band(11, intPtr(20), "0", nil),
			},
			wantErr: ReasonLastBandNotOpen,
		},
		{
			name:    "inverted day range",
			bands:   []*Tariff{band(10, intPtr(5), "0", nil)},
			wantErr: ReasonRangeInverted,
		},
		{
			name: "negative rate",
			bands: []*Tariff{{
				Rate: types.MustMoney("-1"),
				Type: TypeAnnual,
			}},
			wantErr: ReasonRateNegative,
		},
		{
			name:    "unknown type",
			bands:   []*Tariff{{Type: "weekly"}},
			wantErr: ReasonTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBands(tt.bands)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
			assert.True(t, apperror.HasCode(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestTariffContains(t *testing.T) {
	b := band(1, intPtr(10), "100", moneyPtr("500"))

	assert.True(t, b.ContainsDays(1))
	assert.True(t, b.ContainsDays(10))
	assert.False(t, b.ContainsDays(11))
	assert.False(t, b.ContainsDays(0))

	assert.True(t, b.ContainsAmount(types.MustMoney("100")))
	assert.True(t, b.ContainsAmount(types.MustMoney("500")))
	assert.False(t, b.ContainsAmount(types.MustMoney("500.01")))

	open := band(11, nil, "0", nil)
	assert.True(t, open.ContainsDays(10_000))
	assert.True(t, open.ContainsAmount(types.MustMoney("1000000000")))
}
