package supply

import (
	"time"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/types"
)

// Per-item validation reasons.
const (
	ReasonNumberRequired         = "supply-number-required"
	ReasonDateRequired           = "supply-date-required"
	ReasonTypeUnknown            = "supply-type-unknown"
	ReasonAmountNotPositive      = "supply-amount-not-positive"
	ReasonAmountZero             = "supply-amount-zero"
	ReasonDelayEndDateRequired   = "supply-delay-end-date-required"
	ReasonDelayEndDateBeforeDate = "supply-delay-end-date-before-date"
	ReasonDelayEndDatePassed     = "supply-delay-end-date-passed"
	ReasonTINMismatch            = "supply-tin-mismatch"
	ReasonSellerEqualsBuyer      = "supply-seller-equals-buyer"
	ReasonDuplicate              = "supply-duplicate"
	ReasonBaseDocumentRequired   = "supply-base-document-required"
	ReasonBaseDocumentNotFound   = "supply-base-document-not-found"
	ReasonBaseTypeInvalid        = "supply-base-type-invalid"
	ReasonContractNumberRequired = "supply-contract-number-required"
)

// CreateItem is one receivable submitted for registration.
type CreateItem struct {
	Number         string
	Date           time.Time
	Type           DocumentType
	Amount         types.Money
	SellerTIN      string
	BuyerTIN       string
	ContractNumber string
	DelayEndDate   time.Time

	BaseDocumentNumber string
	BaseDocumentDate   *time.Time
	BaseDocumentType   DocumentType
}

func itemError(code, message string, item *CreateItem) *apperror.AppError {
	err := apperror.NewValidation(code, message).WithDetail("number", item.Number)
	if item.Type != "" {
		err = err.WithDetail("type", string(item.Type))
	}
	if !item.Date.IsZero() {
		err = err.WithDetail("date", item.Date.Format(time.DateOnly))
	}
	return err
}

// validateFields checks what can be decided from the item alone.
func validateFields(item *CreateItem, today time.Time) error {
	switch {
	case item.Number == "":
		return itemError(ReasonNumberRequired, "document number is required", item)
	case item.Date.IsZero():
		return itemError(ReasonDateRequired, "document date is required", item)
	case !item.Type.Valid():
		return itemError(ReasonTypeUnknown, "unknown document type", item)
	case item.ContractNumber == "":
		return itemError(ReasonContractNumberRequired, "supply contract number is required", item)
	case item.SellerTIN == item.BuyerTIN:
		return itemError(ReasonSellerEqualsBuyer, "seller and buyer must differ", item)
	}

	// Correction notes may decrease the original amount.
	if item.Type == TypeCorrectionNote {
		if item.Amount.IsZero() {
			return itemError(ReasonAmountZero, "correction amount must not be zero", item)
		}
	} else if !item.Amount.IsPositive() {
		return itemError(ReasonAmountNotPositive, "amount must be positive", item)
	}

	switch {
	case item.DelayEndDate.IsZero():
		return itemError(ReasonDelayEndDateRequired, "delay end date is required", item)
	case types.Date(item.DelayEndDate).Before(types.Date(item.Date)):
		return itemError(ReasonDelayEndDateBeforeDate, "delay end date is before document date", item)
	case types.Date(item.DelayEndDate).Before(types.Date(today)):
		return itemError(ReasonDelayEndDatePassed, "delay end date has passed", item).
			WithDetail("delayEndDate", item.DelayEndDate.Format(time.DateOnly))
	}

	if item.Type.IsDependent() {
		if item.BaseDocumentNumber == "" || item.BaseDocumentDate == nil || item.BaseDocumentType == "" {
			return itemError(ReasonBaseDocumentRequired, "base document is required", item)
		}
		if !item.Type.AcceptsBase(item.BaseDocumentType) {
			return itemError(ReasonBaseTypeInvalid, "document type cannot reference this base type", item).
				WithDetail("baseType", string(item.BaseDocumentType))
		}
	}
	return nil
}
