package memory

import (
	"context"
	"time"

	"supplyfin/internal/core/numerator"
)

// GetNextNumber implements numerator.Generator. Sequences are part of the
// store state and roll back with the surrounding transaction.
func (s *Store) GetNextNumber(ctx context.Context, cfg numerator.Config, period time.Time) (string, error) {
	var value int64
	err := s.do(ctx, func(st *state) error {
		key := cfg.SequenceKey() + ":" + period.Format("2006")
		st.sequences[key]++
		value = st.sequences[key]
		return nil
	})
	if err != nil {
		return "", err
	}
	return cfg.Format(period, value), nil
}

var _ numerator.Generator = (*Store)(nil)
