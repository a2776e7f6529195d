package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/resolveit/helpdesk/internal/api/dto"
	"github.com/resolveit/helpdesk/internal/service"
	apperrors "github.com/resolveit/helpdesk/pkg/util"
)

// AuthHandler exposes authentication and credential endpoints.
type AuthHandler struct {
	authService   *service.AuthService
	inviteService *service.InviteService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, inviteService *service.InviteService) *AuthHandler {
	return &AuthHandler{authService: authService, inviteService: inviteService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.authService.Login(c.Context(), req.Email, req.Password, clientIP(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.FromUser(result.User),
			"auth": dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
		},
	})
}

// ForgotPassword handles POST /auth/password/forgot. The response is the
// same whether or not the email is registered.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.authService.ForgotPassword(c.Context(), req.Email, clientIP(c)); err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{
			"message": "if the email is registered, a reset link has been sent",
		},
	})
}

// ResetPassword handles POST /auth/password/reset.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.authService.ResetPassword(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "password updated"}})
}

// ChangePassword handles POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.authService.ChangePassword(c.Context(), actor, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "password updated"}})
}

// AcceptInvite handles POST /auth/invites/accept.
func (h *AuthHandler) AcceptInvite(c *fiber.Ctx) error {
	var req dto.AcceptInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		return err
	}
	user, err := h.inviteService.Accept(c.Context(), service.InviteAcceptInput{
		Token:        req.Token,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromUser(user)})
}
