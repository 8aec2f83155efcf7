// Package tx provides transaction management abstractions.
// Domain services depend on this interface, not on a concrete database.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
// Each request-scoped state transition runs inside exactly one unit of work:
// all reads, validation and writes commit together or not at all.
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
