package supply

import (
	"context"
	"time"

	"supplyfin/internal/core/id"
	"supplyfin/internal/domain"
)

// ListFilter narrows supply listings.
type ListFilter struct {
	domain.ListFilter

	// CompanyID matches the seller, the buyer or the bank.
	CompanyID  *id.ID
	Status     *Status
	ContractID *id.ID
	RegistryID *id.ID
}

// Repository persists supplies.
type Repository interface {
	Create(ctx context.Context, s *Supply) error
	// Update saves s with optimistic locking on Version.
	Update(ctx context.Context, s *Supply) error
	GetByID(ctx context.Context, supplyID id.ID) (*Supply, error)
	// GetByIDs returns supplies in the order of ids; a missing id is NotFound.
	GetByIDs(ctx context.Context, ids []id.ID) ([]*Supply, error)
	// FindByDocument returns NotFound when no supply matches the document key.
	FindByDocument(ctx context.Context, contractID id.ID, number string, date time.Time, typ DocumentType) (*Supply, error)
	ListByRegistry(ctx context.Context, registryID id.ID) ([]*Supply, error)
	// ListExpired returns in-process supplies whose delay end date is before today.
	ListExpired(ctx context.Context, today time.Time) ([]*Supply, error)
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Supply], error)
}
