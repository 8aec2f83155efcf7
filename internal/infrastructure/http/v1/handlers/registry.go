package handlers

import (
	"github.com/gin-gonic/gin"

	"supplyfin/internal/domain/registry"
	"supplyfin/internal/infrastructure/http/v1/dto"
)

// RegistryHandler serves /registries.
type RegistryHandler struct {
	*BaseHandler
	service *registry.Service
}

// NewRegistryHandler creates a registry handler.
func NewRegistryHandler(base *BaseHandler, service *registry.Service) *RegistryHandler {
	return &RegistryHandler{BaseHandler: base, service: service}
}

// Create handles POST /registries.
func (h *RegistryHandler) Create(c *gin.Context) {
	var body dto.CreateRegistryRequest
	if !h.BindJSON(c, &body) {
		return
	}
	req, err := body.ToDomain()
	if err != nil {
		h.Error(c, err)
		return
	}
	r, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromRegistry(r))
}

// Get handles GET /registries/:id.
func (h *RegistryHandler) Get(c *gin.Context) {
	registryID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	r, err := h.service.Get(c.Request.Context(), registryID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRegistry(r))
}

// List handles GET /registries.
func (h *RegistryHandler) List(c *gin.Context) {
	var q dto.RegistryListQuery
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
	h.OK(c, dto.NewListResponse(res, dto.FromRegistry))
}

// SetSupplies handles PUT /registries/:id/supplies.
func (h *RegistryHandler) SetSupplies(c *gin.Context) {
	registryID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var body dto.SetSuppliesRequest
	if !h.BindJSON(c, &body) {
		return
	}
	ids, err := dto.ParseIDs(body.SupplyIDs)
	if err != nil {
		h.Error(c, err)
		return
	}
	r, err := h.service.SetSupplies(c.Request.Context(), registryID, ids)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRegistry(r))
}

// Update handles PATCH /registries/:id.
func (h *RegistryHandler) Update(c *gin.Context) {
	registryID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var body dto.UpdateRegistryRequest
	if !h.BindJSON(c, &body) {
		return
	}
	req, err := body.ToDomain()
	if err != nil {
		h.Error(c, err)
		return
	}
	r, err := h.service.Update(c.Request.Context(), registryID, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRegistry(r))
}

// Decline handles POST /registries/:id/decline.
func (h *RegistryHandler) Decline(c *gin.Context) {
	registryID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	r, err := h.service.Decline(c.Request.Context(), registryID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRegistry(r))
}

// Remove handles DELETE /registries/:id.
func (h *RegistryHandler) Remove(c *gin.Context) {
	registryID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Remove(c.Request.Context(), registryID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// UpdateDiscount handles PUT /registries/:id/discount.
func (h *RegistryHandler) UpdateDiscount(c *gin.Context) {
	registryID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var body dto.UpdateDiscountRequest
	if !h.BindJSON(c, &body) {
		return
	}
	allocations, err := body.ToAllocations()
	if err != nil {
		h.Error(c, err)
		return
	}
	d, err := h.service.UpdateDiscount(c.Request.Context(), registryID, body.PlannedPaymentDate.Time, allocations)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDiscount(d))
}
