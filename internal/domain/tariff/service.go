package tariff

import (
	"context"
	"time"

	"supplyfin/internal/core/apperror"
	appctx "supplyfin/internal/core/context"
	"supplyfin/internal/core/entity"
	"supplyfin/internal/core/id"
	"supplyfin/internal/core/tx"
	"supplyfin/pkg/logger"
)

// ReasonOwnerMismatch is returned when a company edits another company's bands.
const ReasonOwnerMismatch = "tariff-owner-mismatch"

// Service manages a company's tariff grid.
type Service struct {
	repo      Repository
	txManager tx.Manager
	now       func() time.Time
}

// NewService creates a tariff service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager, now: time.Now}
}

// Replace validates bands as one set and swaps them in for the owner.
// Either every band is stored or none.
func (s *Service) Replace(ctx context.Context, ownerID id.ID, bands []*Tariff) ([]*Tariff, error) {
	session, err := s.authorize(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := ValidateBands(bands); err != nil {
		return nil, err
	}

	now := s.now()
	for _, b := range bands {
		b.BaseEntity = entity.NewBaseEntity(now)
		b.OwnerID = ownerID
		b.UserID = session.UserID
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.ReplaceForOwner(ctx, ownerID, bands)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "tariffs replaced", "owner_id", ownerID, "bands", len(bands))
	return bands, nil
}

// List returns the owner's bands.
func (s *Service) List(ctx context.Context, ownerID id.ID) ([]*Tariff, error) {
	if _, err := s.authorize(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) authorize(ctx context.Context, ownerID id.ID) (*appctx.Session, error) {
	session, err := appctx.RequireSession(ctx)
	if err != nil {
		return nil, err
	}
	if !session.IsAdmin() && session.CompanyID != ownerID {
		return nil, apperror.NewForbidden(ReasonOwnerMismatch, "tariffs belong to another company")
	}
	return session, nil
}
