// Package numerator provides the PostgreSQL implementation of document numbering.
package numerator

import (
	"context"
	"fmt"
	"time"

	corenumerator "supplyfin/internal/core/numerator"
	"supplyfin/internal/infrastructure/storage/postgres"
)

// Service allocates numbers from sys_sequences with UPSERT + RETURNING. It runs
// on the caller's transaction, so a rolled back registry also gives back its
// number and the sequence stays gapless.
type Service struct {
	txManager *postgres.TxManager
}

// Ensure compile-time interface compliance.
var _ corenumerator.Generator = (*Service)(nil)

// New creates a numerator service.
func New(txManager *postgres.TxManager) *Service {
	return &Service{txManager: txManager}
}

// GetNextNumber generates the next document number.
// Pattern: PREFIX-YEAR-XXXXX (e.g., DD-2026-00001)
func (s *Service) GetNextNumber(ctx context.Context, cfg corenumerator.Config, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	var num int64
	err := s.txManager.GetQuerier(ctx).QueryRow(ctx, `
        INSERT INTO sys_sequences (key, year, current_val)
        VALUES ($1, $2, 1)
        ON CONFLICT (key, year) DO UPDATE SET current_val = sys_sequences.current_val + 1
        RETURNING current_val
	`, cfg.SequenceKey(), period.Year()).Scan(&num)
	if err != nil {
		return "", fmt.Errorf("next number %s: %w", cfg.SequenceKey(), err)
	}
	return cfg.Format(period, num), nil
}
