package handlers

import (
	"github.com/gin-gonic/gin"

	"supplyfin/internal/domain/tariff"
	"supplyfin/internal/infrastructure/http/v1/dto"
)

// TariffHandler serves /companies/:id/tariffs.
type TariffHandler struct {
	*BaseHandler
	service *tariff.Service
}

// NewTariffHandler creates a tariff handler.
func NewTariffHandler(base *BaseHandler, service *tariff.Service) *TariffHandler {
	return &TariffHandler{BaseHandler: base, service: service}
}

// List handles GET /companies/:id/tariffs.
func (h *TariffHandler) List(c *gin.Context) {
	ownerID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	bands, err := h.service.List(c.Request.Context(), ownerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromTariffs(bands))
}

// Replace handles PUT /companies/:id/tariffs.
func (h *TariffHandler) Replace(c *gin.Context) {
	ownerID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var body dto.ReplaceTariffsRequest
	if !h.BindJSON(c, &body) {
		return
	}
	bands, err := h.service.Replace(c.Request.Context(), ownerID, body.ToDomain())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromTariffs(bands))
}
