package handlers

import (
	"strconv"

	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/repositories"
	"github.com/simha10/survey-ops-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MasterHandler serves the geographic master tables
type MasterHandler struct {
	geoRepo *repositories.GeoRepository
}

// NewMasterHandler creates a new master data handler
func NewMasterHandler(geoRepo *repositories.GeoRepository) *MasterHandler {
	return &MasterHandler{geoRepo: geoRepo}
}

// ListUlbs godoc
// @Summary List urban local bodies
// @Tags masters
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/masters/ulbs [get]
func (h *MasterHandler) ListUlbs(c *fiber.Ctx) error {
	ulbs, err := h.geoRepo.ListUlbs(c.Context())
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "ULBs fetched", ulbs)
}

// ListZones godoc
// @Summary List zones
// @Tags masters
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/masters/zones [get]
func (h *MasterHandler) ListZones(c *fiber.Ctx) error {
	zones, err := h.geoRepo.ListZones(c.Context())
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Zones fetched", zones)
}

// ListWards godoc
// @Summary List wards
// @Tags masters
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/masters/wards [get]
func (h *MasterHandler) ListWards(c *fiber.Ctx) error {
	wards, err := h.geoRepo.ListWards(c.Context())
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Wards fetched", wards)
}

// ListMohallas godoc
// @Summary List mohallas under a ward
// @Tags masters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ward ID"
// @Success 200 {object} response.Response
// @Router /api/v1/masters/wards/{id}/mohallas [get]
func (h *MasterHandler) ListMohallas(c *fiber.Ctx) error {
	wardID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ward ID")
	}

	mohallas, err := h.geoRepo.ListMohallasByWard(c.Context(), uint(wardID))
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Mohallas fetched", mohallas)
}
