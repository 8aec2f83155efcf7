package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/id"
	"supplyfin/internal/domain/supply"
	"supplyfin/internal/infrastructure/http/v1/dto"
)

// SupplyHandler serves /supplies.
type SupplyHandler struct {
	*BaseHandler
	service *supply.Service
}

// NewSupplyHandler creates a supply handler.
func NewSupplyHandler(base *BaseHandler, service *supply.Service) *SupplyHandler {
	return &SupplyHandler{BaseHandler: base, service: service}
}

// Create handles POST /supplies.
// Rejected items are reported next to the accepted ones with 201.
func (h *SupplyHandler) Create(c *gin.Context) {
	var req dto.CreateSuppliesRequest
	if !h.BindJSON(c, &req) {
		return
	}
	res, err := h.service.Create(c.Request.Context(), req.ToItems(), req.Provider)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.NewSupplyBatchResponse(res.Accepted, dto.FromItemErrors(res.Errors)))
}

// VerifyBySeller handles POST /supplies/verify/seller.
func (h *SupplyHandler) VerifyBySeller(c *gin.Context) {
	var req dto.VerifyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ids, err := dto.ParseIDs(req.IDs)
	if err != nil {
		h.Error(c, err)
		return
	}
	bankID, err := dto.ParseOptionalID("bankId", req.BankID)
	if err != nil {
		h.Error(c, err)
		return
	}
	agreementID, err := dto.ParseOptionalID("agreementId", req.AgreementID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if bankID == nil || agreementID == nil {
		h.Error(c, apperror.NewValidation(apperror.CodeValidation, "bankId and agreementId are required"))
		return
	}
	h.verifyResult(c)(h.service.VerifyBySeller(c.Request.Context(), ids, *bankID, *agreementID))
}

// VerifyByBuyer handles POST /supplies/verify/buyer.
func (h *SupplyHandler) VerifyByBuyer(c *gin.Context) {
	h.verifyIDs(c, h.service.VerifyByBuyer)
}

// VerifyAutomatically handles POST /supplies/verify/auto.
func (h *SupplyHandler) VerifyAutomatically(c *gin.Context) {
	h.verifyIDs(c, h.service.VerifyAutomatically)
}

// Get handles GET /supplies/:id.
func (h *SupplyHandler) Get(c *gin.Context) {
	supplyID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	sup, err := h.service.Get(c.Request.Context(), supplyID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSupply(sup))
}

// List handles GET /supplies.
func (h *SupplyHandler) List(c *gin.Context) {
	var q dto.SupplyListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	res, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(res, dto.FromSupply))
}

func (h *SupplyHandler) verifyIDs(c *gin.Context, verify func(ctx context.Context, ids []id.ID) (*supply.VerifyResult, error)) {
	var req dto.VerifyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ids, err := dto.ParseIDs(req.IDs)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.verifyResult(c)(verify(c.Request.Context(), ids))
}

func (h *SupplyHandler) verifyResult(c *gin.Context) func(*supply.VerifyResult, error) {
	return func(res *supply.VerifyResult, err error) {
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, dto.NewSupplyBatchResponse(res.Verified, dto.FromItemErrors(res.Errors)))
	}
}
