package handlers

import (
	"github.com/gin-gonic/gin"

	"supplyfin/internal/domain/calendar"
	"supplyfin/internal/infrastructure/http/v1/dto"
)

// CalendarHandler serves the holiday calendar and discount settings.
type CalendarHandler struct {
	*BaseHandler
	service *calendar.Service
}

// NewCalendarHandler creates a calendar handler.
func NewCalendarHandler(base *BaseHandler, service *calendar.Service) *CalendarHandler {
	return &CalendarHandler{BaseHandler: base, service: service}
}

// ListFreeDays handles GET /calendar/free-days.
func (h *CalendarHandler) ListFreeDays(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	res, err := h.service.ListFreeDays(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(res, dto.FromFreeDay))
}

// AddFreeDay handles POST /calendar/free-days.
func (h *CalendarHandler) AddFreeDay(c *gin.Context) {
	var body dto.AddFreeDayRequest
	if !h.BindJSON(c, &body) {
		return
	}
	day, err := h.service.AddFreeDay(c.Request.Context(), body.Date.Time)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromFreeDay(day))
}

// DeactivateFreeDay handles DELETE /calendar/free-days/:id.
func (h *CalendarHandler) DeactivateFreeDay(c *gin.Context) {
	dayID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeactivateFreeDay(c.Request.Context(), dayID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// GetSettings handles GET /companies/:id/discount-settings.
func (h *CalendarHandler) GetSettings(c *gin.Context) {
	companyID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	s, err := h.service.GetDiscountSettings(c.Request.Context(), companyID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDiscountSettings(s))
}

// SaveSettings handles PUT /companies/:id/discount-settings.
func (h *CalendarHandler) SaveSettings(c *gin.Context) {
	companyID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var body dto.DiscountSettingsBody
	if !h.BindJSON(c, &body) {
		return
	}
	settings := body.ToDomain(companyID)
	if err := h.service.SaveDiscountSettings(c.Request.Context(), settings); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDiscountSettings(settings))
}
