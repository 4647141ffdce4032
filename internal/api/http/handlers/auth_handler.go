package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clubhouse-ops/membership-admin/internal/api/dto"
	"github.com/clubhouse-ops/membership-admin/internal/service"
)

// AuthHandler exposes operator login.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	operator, token, exp, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"operator": dto.NewOperatorResponse(operator),
			"auth":     dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}
