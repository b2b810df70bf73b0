package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-routing/internal/api/dto"
	"github.com/spec-kit/ticket-routing/internal/service"
	apperrors "github.com/spec-kit/ticket-routing/pkg/util/errorutil"
)

// AuthHandler manages agent authentication.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		AgentName: result.Agent.DisplayName,
	}})
}

// Register POST /api/auth/register. Only an authenticated agent may
// create further agent logins.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	agent, err := h.service.RegisterAgent(c.UserContext(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.AgentResponse{
		ID:          agent.ID,
		Email:       agent.Email,
		DisplayName: agent.DisplayName,
		Active:      agent.Active,
	}})
}
