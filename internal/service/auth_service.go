package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-routing/internal/auth"
	"github.com/spec-kit/ticket-routing/internal/config"
	"github.com/spec-kit/ticket-routing/internal/domain"
	"github.com/spec-kit/ticket-routing/internal/repository"
	apperrors "github.com/spec-kit/ticket-routing/pkg/util/errorutil"
)

// AuthService authenticates agents.
type AuthService struct {
	agents     repository.AgentRepository
	tokens     *auth.TokenManager
	bcryptCost int
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig, agents repository.AgentRepository) *AuthService {
	return &AuthService{
		agents:     agents,
		tokens:     auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// LoginResult carries the issued token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Agent     *domain.Agent
}

// Login verifies credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password required", nil)
	}

	agent, err := s.agents.GetByEmailIgnoreCase(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !agent.Active {
		return nil, apperrors.NewUnauthorized("account disabled")
	}
	if err := auth.ComparePassword(agent.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(agent.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Agent: agent}, nil
}

// RegisterAgent creates an agent login with a hashed password.
func (s *AuthService) RegisterAgent(ctx context.Context, email, password, displayName string) (*domain.Agent, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password required", nil)
	}
	if _, err := s.agents.GetByEmailIgnoreCase(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	agent := &domain.Agent{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(displayName),
		Active:       true,
	}
	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, apperrors.MapError(err)
	}
	return agent, nil
}
