package numerator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Format(t *testing.T) {
	cfg := DefaultConfig("DD", "seller-1")
	period := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "DD-2026-00042", cfg.Format(period, 42))

	cfg.PadWidth = 2
	assert.Equal(t, "DD-2026-123", cfg.Format(period, 123))
}

func TestMockGenerator_ResetsPerScopeAndYear(t *testing.T) {
	gen := &MockGenerator{}
	ctx := context.Background()
	y2026 := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	y2027 := time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC)

	a := DefaultConfig("SV", "seller-a")
	b := DefaultConfig("SV", "seller-b")

	n, err := gen.GetNextNumber(ctx, a, y2026)
	require.NoError(t, err)
	assert.Equal(t, "SV-2026-00001", n)

	n, _ = gen.GetNextNumber(ctx, a, y2026)
	assert.Equal(t, "SV-2026-00002", n)

	n, _ = gen.GetNextNumber(ctx, b, y2026)
	assert.Equal(t, "SV-2026-00001", n)

	n, _ = gen.GetNextNumber(ctx, a, y2027)
	assert.Equal(t, "SV-2027-00001", n)
}
