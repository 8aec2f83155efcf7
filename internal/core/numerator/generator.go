package numerator

import (
	"context"
	"time"
)

// Generator generates sequential numbers.
// Implementations live in the infrastructure layer and must be safe to call
// inside the caller's transaction.
type Generator interface {
	// GetNextNumber generates the next number for cfg in the year of period.
	// Pattern: PREFIX-YEAR-XXXXX (e.g., DD-2026-00001)
	GetNextNumber(ctx context.Context, cfg Config, period time.Time) (string, error)
}
