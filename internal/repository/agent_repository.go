package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-routing/internal/domain"
)

// AgentRepository manages staff logins.
type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) error
	GetByID(ctx context.Context, id int64) (*domain.Agent, error)
	GetByEmailIgnoreCase(ctx context.Context, email string) (*domain.Agent, error)
}

type agentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository constructs repository.
func NewAgentRepository(pool *pgxpool.Pool) AgentRepository {
	return &agentRepository{pool: pool}
}

const agentSelect = `
        SELECT id, email, password_hash, display_name, active, created_at
        FROM agents`

func (r *agentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	const query = `
        INSERT INTO agents (email, password_hash, display_name, active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		agent.Email,
		agent.PasswordHash,
		agent.DisplayName,
		agent.Active,
	).Scan(&agent.ID, &agent.CreatedAt)
}

func (r *agentRepository) GetByID(ctx context.Context, id int64) (*domain.Agent, error) {
	return r.fetchSingle(ctx, agentSelect+` WHERE id=$1`, id)
}

func (r *agentRepository) GetByEmailIgnoreCase(ctx context.Context, email string) (*domain.Agent, error) {
	return r.fetchSingle(ctx, agentSelect+` WHERE LOWER(email)=LOWER($1)`, email)
}

func (r *agentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Agent, error) {
	var agent domain.Agent
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&agent.ID,
		&agent.Email,
		&agent.PasswordHash,
		&agent.DisplayName,
		&agent.Active,
		&agent.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &agent, nil
}
