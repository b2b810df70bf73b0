package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-routing/internal/domain"
	"github.com/spec-kit/ticket-routing/internal/repository"
	apperrors "github.com/spec-kit/ticket-routing/pkg/util/errorutil"
)

const agentKey = "auth_agent"

// AuthMiddleware validates bearer tokens and loads the calling agent.
type AuthMiddleware struct {
	tokens *TokenManager
	agents repository.AgentRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, agents repository.AgentRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, agents: agents}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	agent, err := m.agents.GetByID(c.Context(), claims.AgentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("agent not found")
		}
		return apperrors.MapError(err)
	}
	if !agent.Active {
		return apperrors.NewUnauthorized("account disabled")
	}

	c.Locals(agentKey, agent)
	return c.Next()
}

// AgentFromContext retrieves the authenticated agent.
func AgentFromContext(c *fiber.Ctx) (*domain.Agent, bool) {
	val := c.Locals(agentKey)
	if val == nil {
		return nil, false
	}
	agent, ok := val.(*domain.Agent)
	return agent, ok
}
