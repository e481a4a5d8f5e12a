package handlers

import (
	"strconv"

	"github.com/simha10/survey-ops-backend/internal/core/services"
	"github.com/simha10/survey-ops-backend/internal/pkg/response"
	"github.com/simha10/survey-ops-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// WardStatusHandler exposes ward progress endpoints
type WardStatusHandler struct {
	wardStatusService *services.WardStatusService
}

// NewWardStatusHandler creates a new ward status handler
func NewWardStatusHandler(wardStatusService *services.WardStatusService) *WardStatusHandler {
	return &WardStatusHandler{wardStatusService: wardStatusService}
}

// SetStatus godoc
// @Summary Change a ward's survey status
// @Tags ward-status
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.SetStatusInput true "Status change"
// @Success 200 {object} response.Response
// @Router /api/v1/wards/status [post]
func (h *WardStatusHandler) SetStatus(c *fiber.Ctx) error {
	var input services.SetStatusInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	actorID := c.Locals("userID").(uint)
	view, err := h.wardStatusService.SetStatus(c.Context(), &input, actorID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Ward status updated", view)
}

// GetStatus godoc
// @Summary Get a ward's current status
// @Tags ward-status
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ward ID"
// @Success 200 {object} response.Response
// @Router /api/v1/wards/{id}/status [get]
func (h *WardStatusHandler) GetStatus(c *fiber.Ctx) error {
	wardID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ward ID")
	}

	view, err := h.wardStatusService.GetStatus(c.Context(), uint(wardID))
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Ward status fetched", view)
}

// GetMohallaStatus godoc
// @Summary Get a mohalla's status via its owning ward
// @Tags ward-status
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mohalla ID"
// @Success 200 {object} response.Response
// @Router /api/v1/mohallas/{id}/status [get]
func (h *WardStatusHandler) GetMohallaStatus(c *fiber.Ctx) error {
	mohallaID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid mohalla ID")
	}

	view, err := h.wardStatusService.GetMohallaStatus(c.Context(), uint(mohallaID))
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Mohalla status fetched", view)
}

// ListStatuses godoc
// @Summary List the ward status master values
// @Tags ward-status
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/wards/statuses [get]
func (h *WardStatusHandler) ListStatuses(c *fiber.Ctx) error {
	statuses, err := h.wardStatusService.ListStatuses(c.Context())
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Statuses fetched", statuses)
}
