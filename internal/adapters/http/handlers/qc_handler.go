package handlers

import (
	"strconv"

	"github.com/simha10/survey-ops-backend/internal/core/services"
	"github.com/simha10/survey-ops-backend/internal/pkg/pagination"
	"github.com/simha10/survey-ops-backend/internal/pkg/response"
	"github.com/simha10/survey-ops-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// QCHandler exposes the review pipeline endpoints
type QCHandler struct {
	qcService *services.QCService
}

// NewQCHandler creates a new QC handler
func NewQCHandler(qcService *services.QCService) *QCHandler {
	return &QCHandler{qcService: qcService}
}

// RegisterSurvey godoc
// @Summary Register a submitted survey for review
// @Tags qc
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.RegisterSurveyInput true "Survey"
// @Success 201 {object} response.Response
// @Router /api/v1/qc/surveys [post]
func (h *QCHandler) RegisterSurvey(c *fiber.Ctx) error {
	var input services.RegisterSurveyInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	survey, err := h.qcService.RegisterSurvey(c.Context(), &input)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Created(c, "Survey registered", survey)
}

// Decide godoc
// @Summary Record a QC decision at the survey's current level
// @Tags qc
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.DecisionInput true "Decision"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/qc/decisions [post]
func (h *QCHandler) Decide(c *fiber.Ctx) error {
	var input services.DecisionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	reviewerID := c.Locals("userID").(uint)
	record, err := h.qcService.RecordDecision(c.Context(), &input, reviewerID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Decision recorded", record)
}

// DecideSection godoc
// @Summary Record a per-section QC decision
// @Tags qc
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.SectionDecisionInput true "Section decision"
// @Success 200 {object} response.Response
// @Router /api/v1/qc/sections [post]
func (h *QCHandler) DecideSection(c *fiber.Ctx) error {
	var input services.SectionDecisionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	reviewerID := c.Locals("userID").(uint)
	section, err := h.qcService.RecordSectionDecision(c.Context(), &input, reviewerID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Section decision recorded", section)
}

// GetState godoc
// @Summary Get a survey's full review state
// @Tags qc
// @Produce json
// @Security BearerAuth
// @Param code path string true "Survey unique code"
// @Success 200 {object} response.Response
// @Router /api/v1/qc/surveys/{code} [get]
func (h *QCHandler) GetState(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return response.BadRequest(c, "Missing survey code")
	}

	state, err := h.qcService.GetState(c.Context(), code)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Survey state fetched", state)
}

// ListPending godoc
// @Summary List surveys pending at a review level
// @Tags qc
// @Produce json
// @Security BearerAuth
// @Param level path int true "Review level"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /api/v1/qc/pending/{level} [get]
func (h *QCHandler) ListPending(c *fiber.Ctx) error {
	level, err := strconv.Atoi(c.Params("level"))
	if err != nil {
		return response.BadRequest(c, "Invalid level")
	}

	params := pagination.GetParams(c)
	records, total, err := h.qcService.ListPending(c.Context(), level, params.Offset, params.Limit)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Pending surveys fetched", fiber.Map{
		"records": records,
		"meta":    pagination.GetMeta(params, total),
	})
}

// Counts godoc
// @Summary Count QC records grouped by level and status
// @Tags qc
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/qc/counts [get]
func (h *QCHandler) Counts(c *fiber.Ctx) error {
	counts, err := h.qcService.LevelCounts(c.Context())
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "QC counts fetched", counts)
}
