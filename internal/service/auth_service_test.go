package service

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-routing/internal/auth"
	"github.com/spec-kit/ticket-routing/internal/config"
	"github.com/spec-kit/ticket-routing/internal/domain"
)

type fakeAgentRepo struct {
	agents map[int64]*domain.Agent
	nextID int64
}

func newFakeAgentRepo() *fakeAgentRepo {
	return &fakeAgentRepo{agents: make(map[int64]*domain.Agent), nextID: 1}
}

func (r *fakeAgentRepo) Create(_ context.Context, agent *domain.Agent) error {
	agent.ID = r.nextID
	r.nextID++
	copied := *agent
	r.agents[agent.ID] = &copied
	return nil
}

func (r *fakeAgentRepo) GetByID(_ context.Context, id int64) (*domain.Agent, error) {
	agent, ok := r.agents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *agent
	return &copied, nil
}

func (r *fakeAgentRepo) GetByEmailIgnoreCase(_ context.Context, email string) (*domain.Agent, error) {
	for _, agent := range r.agents {
		if strings.EqualFold(agent.Email, email) {
			copied := *agent
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeAgentRepo) {
	t.Helper()
	repo := newFakeAgentRepo()
	// Minimum bcrypt cost keeps the tests fast.
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
	}, repo)
	return svc, repo
}

func seedAgent(t *testing.T, repo *fakeAgentRepo, email, password string, active bool) *domain.Agent {
	t.Helper()
	hash, err := auth.HashPassword(password, 4)
	require.NoError(t, err)
	agent := &domain.Agent{Email: email, PasswordHash: hash, DisplayName: "Sam Agent", Active: active}
	require.NoError(t, repo.Create(context.Background(), agent))
	return agent
}

func TestLogin(t *testing.T) {
	t.Run("issues a token for valid credentials", func(t *testing.T) {
		svc, repo := newAuthFixture(t)
		seedAgent(t, repo, "sam@example.com", "hunter2", true)

		result, err := svc.Login(context.Background(), "SAM@example.com", "hunter2")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "Sam Agent", result.Agent.DisplayName)

		claims, err := svc.TokenManager().ParseToken(result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.Agent.ID, claims.AgentID)
	})

	t.Run("rejects wrong password and unknown email alike", func(t *testing.T) {
		svc, repo := newAuthFixture(t)
		seedAgent(t, repo, "sam@example.com", "hunter2", true)

		_, err := svc.Login(context.Background(), "sam@example.com", "wrong")
		assert.Error(t, err)
		_, err = svc.Login(context.Background(), "nobody@example.com", "hunter2")
		assert.Error(t, err)
	})

	t.Run("rejects disabled accounts", func(t *testing.T) {
		svc, repo := newAuthFixture(t)
		seedAgent(t, repo, "sam@example.com", "hunter2", false)

		_, err := svc.Login(context.Background(), "sam@example.com", "hunter2")
		assert.Error(t, err)
	})
}

func TestRegisterAgent(t *testing.T) {
	t.Run("creates an active agent with a verifiable hash", func(t *testing.T) {
		svc, _ := newAuthFixture(t)

		agent, err := svc.RegisterAgent(context.Background(), "new@example.com", "s3cret", "New Agent")
		require.NoError(t, err)
		assert.True(t, agent.Active)
		assert.NoError(t, auth.ComparePassword(agent.PasswordHash, "s3cret"))
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc, repo := newAuthFixture(t)
		seedAgent(t, repo, "sam@example.com", "hunter2", true)

		_, err := svc.RegisterAgent(context.Background(), "SAM@example.com", "other", "Dup")
		assert.Error(t, err)
	})
}
