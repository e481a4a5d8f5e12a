package handlers

import (
	"github.com/simha10/survey-ops-backend/internal/core/services"
	"github.com/simha10/survey-ops-backend/internal/pkg/response"
	"github.com/simha10/survey-ops-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler exposes login and token lifecycle endpoints
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// @Summary Authenticate with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.LoginInput true "Credentials"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	pair, err := h.authService.Login(c.Context(), &input)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Login successful", pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body refreshRequest true "Refresh token"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	pair, err := h.authService.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Token refreshed", pair)
}

// Logout godoc
// @Summary Revoke the presented refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body refreshRequest true "Refresh token"
// @Success 200 {object} response.Response
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.authService.Logout(c.Context(), req.RefreshToken); err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Logged out", nil)
}

// LogoutAll godoc
// @Summary Revoke every refresh token of the caller
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	if err := h.authService.LogoutAll(c.Context(), userID); err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "All sessions revoked", nil)
}

// Me godoc
// @Summary Get the authenticated user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	user, err := h.authService.Me(c.Context(), userID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Profile fetched", user)
}
