package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-routing/internal/domain"
)

// TeamRepository manages persistence for teams.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	Update(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id int64) (*domain.Team, error)
	// GetByNameIgnoreCase resolves a scorer-suggested team name.
	GetByNameIgnoreCase(ctx context.Context, name string) (*domain.Team, error)
	List(ctx context.Context) ([]domain.Team, error)
	Delete(ctx context.Context, id int64) error
}

type teamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository constructs repository.
func NewTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &teamRepository{pool: pool}
}

const teamSelect = `
        SELECT id, name, description, active, created_at, updated_at
        FROM teams`

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	const query = `
        INSERT INTO teams (name, description, active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		team.Name,
		team.Description,
		team.Active,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
}

func (r *teamRepository) Update(ctx context.Context, team *domain.Team) error {
	const query = `
        UPDATE teams SET name=$1, description=$2, active=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		team.Name,
		team.Description,
		team.Active,
		team.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *teamRepository) GetByID(ctx context.Context, id int64) (*domain.Team, error) {
	return r.fetchSingle(ctx, teamSelect+` WHERE id=$1`, id)
}

func (r *teamRepository) GetByNameIgnoreCase(ctx context.Context, name string) (*domain.Team, error) {
	return r.fetchSingle(ctx, teamSelect+` WHERE LOWER(name)=LOWER($1)`, name)
}

func (r *teamRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Team, error) {
	var team domain.Team
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&team.ID,
		&team.Name,
		&team.Description,
		&team.Active,
		&team.CreatedAt,
		&team.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) List(ctx context.Context) ([]domain.Team, error) {
	rows, err := r.pool.Query(ctx, teamSelect+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.Description, &team.Active, &team.CreatedAt, &team.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, team)
	}
	return result, rows.Err()
}

func (r *teamRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
