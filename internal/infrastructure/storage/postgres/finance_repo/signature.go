package finance_repo

import (
	"context"
	"fmt"

	"supplyfin/internal/core/id"
	"supplyfin/internal/domain/registry"
	"supplyfin/internal/infrastructure/storage/postgres"
)

// SignatureRepo records signature invalidations for the signing service to pick up.
type SignatureRepo struct {
	txm *postgres.TxManager
}

// NewSignatureRepo creates a signature repository.
func NewSignatureRepo(txm *postgres.TxManager) *SignatureRepo {
	return &SignatureRepo{txm: txm}
}

var _ registry.SignatureRemover = (*SignatureRepo)(nil)

func (r *SignatureRepo) RemoveSignatures(ctx context.Context, subjectType string, subjectID id.ID) error {
	sql, args, err := builder.Insert("removed_signatures").
		Columns("subject_type", "subject_id").
		Values(subjectType, subjectID).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert removed_signatures: %w", err)
	}
	return nil
}
