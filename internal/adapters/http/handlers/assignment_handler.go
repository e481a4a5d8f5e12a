package handlers

import (
	"strconv"

	"github.com/simha10/survey-ops-backend/internal/core/domain"
	"github.com/simha10/survey-ops-backend/internal/core/services"
	"github.com/simha10/survey-ops-backend/internal/pkg/pagination"
	"github.com/simha10/survey-ops-backend/internal/pkg/response"
	"github.com/simha10/survey-ops-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// AssignmentHandler exposes surveyor and supervisor assignment endpoints
type AssignmentHandler struct {
	assignmentService *services.AssignmentService
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignmentService *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// AssignSurveyor godoc
// @Summary Assign a surveyor to a ward-mohalla unit
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.AssignSurveyorInput true "Assignment"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/assignments/surveyor [post]
func (h *AssignmentHandler) AssignSurveyor(c *fiber.Ctx) error {
	var input services.AssignSurveyorInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	actorID := c.Locals("userID").(uint)
	assignment, err := h.assignmentService.AssignSurveyor(c.Context(), &input, actorID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Created(c, "Surveyor assigned", assignment.ToResponse())
}

// AssignSupervisor godoc
// @Summary Bind a supervisor to wards
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.AssignSupervisorInput true "Supervisor assignment"
// @Success 200 {object} response.Response
// @Router /api/v1/assignments/supervisor [post]
func (h *AssignmentHandler) AssignSupervisor(c *fiber.Ctx) error {
	var input services.AssignSupervisorInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	actorID := c.Locals("userID").(uint)
	results, err := h.assignmentService.AssignSupervisor(c.Context(), &input, actorID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Supervisor assigned", results)
}

// BulkAssign godoc
// @Summary Assign a surveyor to multiple units in one request
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.BulkAssignInput true "Bulk assignment"
// @Success 200 {object} response.Response
// @Router /api/v1/assignments/surveyor/bulk [post]
func (h *AssignmentHandler) BulkAssign(c *fiber.Ctx) error {
	var input services.BulkAssignInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	actorID := c.Locals("userID").(uint)
	result, err := h.assignmentService.BulkAssign(c.Context(), &input, actorID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Bulk assignment processed", result)
}

type updateStatusRequest struct {
	IsActive bool   `json:"is_active"`
	Reason   string `json:"reason"`
}

// UpdateStatus godoc
// @Summary Activate or deactivate one assignment
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Param request body updateStatusRequest true "Status"
// @Success 200 {object} response.Response
// @Router /api/v1/assignments/{id}/status [patch]
func (h *AssignmentHandler) UpdateStatus(c *fiber.Ctx) error {
	assignmentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid assignment ID")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	actorID := c.Locals("userID").(uint)
	assignment, err := h.assignmentService.UpdateAssignmentStatus(c.Context(),
		uint(assignmentID), req.IsActive, req.Reason, actorID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Assignment status updated", assignment.ToResponse())
}

// ToggleAccess godoc
// @Summary Enable or disable a surveyor's assignments
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.ToggleAccessInput true "Toggle"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/assignments/access [post]
func (h *AssignmentHandler) ToggleAccess(c *fiber.Ctx) error {
	var input services.ToggleAccessInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	actorID := c.Locals("userID").(uint)
	role := domain.Role(c.Locals("role").(string))
	result, err := h.assignmentService.ToggleAccess(c.Context(), &input, actorID, role)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, result.Outcome, result)
}

type removeSupervisorRequest struct {
	WardID uint   `json:"ward_id" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

// RemoveSupervisor godoc
// @Summary Unbind a supervisor from a ward
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Supervisor user ID"
// @Param request body removeSupervisorRequest true "Removal"
// @Success 200 {object} response.Response
// @Router /api/v1/assignments/supervisor/{id} [delete]
func (h *AssignmentHandler) RemoveSupervisor(c *fiber.Ctx) error {
	supervisorID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid supervisor ID")
	}

	var req removeSupervisorRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	actorID := c.Locals("userID").(uint)
	if err := h.assignmentService.RemoveSupervisorFromWard(c.Context(),
		uint(supervisorID), req.WardID, req.Reason, actorID); err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Supervisor removed from ward", nil)
}

// List godoc
// @Summary List assignments with optional filters
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param ward_id query int false "Ward ID"
// @Param surveyor_user_id query int false "Surveyor user ID"
// @Param supervisor_user_id query int false "Supervisor user ID"
// @Param is_active query bool false "Active flag"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /api/v1/assignments [get]
func (h *AssignmentHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	input := &services.ListAssignmentsInput{
		Offset: params.Offset,
		Limit:  params.Limit,
	}

	if v := c.Query("ward_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid ward_id")
		}
		wardID := uint(id)
		input.WardID = &wardID
	}
	if v := c.Query("surveyor_user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid surveyor_user_id")
		}
		surveyorID := uint(id)
		input.SurveyorUserID = &surveyorID
	}
	if v := c.Query("supervisor_user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid supervisor_user_id")
		}
		supervisorID := uint(id)
		input.SupervisorUserID = &supervisorID
	}
	if v := c.Query("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return response.BadRequest(c, "Invalid is_active")
		}
		input.IsActive = &active
	}

	out, err := h.assignmentService.ListAssignments(c.Context(), input)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Assignments fetched", fiber.Map{
		"assignments": out.Assignments,
		"meta":        pagination.GetMeta(params, out.Total),
	})
}
