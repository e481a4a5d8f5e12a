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

// UserHandler exposes user and role management endpoints
type UserHandler struct {
	roleService *services.RoleService
}

// NewUserHandler creates a new user handler
func NewUserHandler(roleService *services.RoleService) *UserHandler {
	return &UserHandler{roleService: roleService}
}

// Create godoc
// @Summary Create a user with an initial role
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateUserInput true "User"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var input services.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	actorID := c.Locals("userID").(uint)
	user, err := h.roleService.CreateUser(c.Context(), &input, actorID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Created(c, "User created", user.ToResponse())
}

type assignRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=SURVEYOR SUPERVISOR ADMIN SUPERADMIN"`
}

// AssignRole godoc
// @Summary Assign or replace a user's active role
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body assignRoleRequest true "Role"
// @Success 200 {object} response.Response
// @Router /api/v1/users/{id}/role [put]
func (h *UserHandler) AssignRole(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req assignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	actorID := c.Locals("userID").(uint)
	mapping, err := h.roleService.AssignRole(c.Context(), uint(userID), domain.Role(req.Role), actorID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Role assigned", mapping)
}

// RemoveRole godoc
// @Summary Remove a user's role and its profile artifacts
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Router /api/v1/users/{id}/role [delete]
func (h *UserHandler) RemoveRole(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	actorID := c.Locals("userID").(uint)
	if err := h.roleService.RemoveRole(c.Context(), uint(userID), actorID); err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Role removed", nil)
}

// List godoc
// @Summary List users with their active roles
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /api/v1/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	users, total, err := h.roleService.ListUsers(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Users fetched", fiber.Map{
		"users": users,
		"meta":  pagination.GetMeta(params, total),
	})
}
