package company

import (
	"context"

	"supplyfin/internal/core/id"
)

// Repository provides read access to companies.
type Repository interface {
	GetByID(ctx context.Context, companyID id.ID) (*Company, error)
	GetByTIN(ctx context.Context, tin string) (*Company, error)
}

// AgreementRepository provides read-only access to factoring agreements.
type AgreementRepository interface {
	GetByID(ctx context.Context, agreementID id.ID) (*FactoringAgreement, error)
	// ListActive returns the company's active agreements.
	ListActive(ctx context.Context, companyID id.ID) ([]*FactoringAgreement, error)
}
