package handlers

import (
	"github.com/simha10/survey-ops-backend/internal/core/services"
	"github.com/simha10/survey-ops-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler exposes the admin overview endpoint
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Stats godoc
// @Summary Aggregated counts for the admin dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.dashboardService.GetStats(c.Context())
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Dashboard stats fetched", stats)
}
