package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-routing/internal/domain"
)

// TicketActivityRepository stores human reassignment records.
type TicketActivityRepository interface {
	Create(ctx context.Context, activity *domain.TicketActivity) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketActivity, error)
}

type ticketActivityRepository struct {
	pool *pgxpool.Pool
}

// NewTicketActivityRepository constructs repository.
func NewTicketActivityRepository(pool *pgxpool.Pool) TicketActivityRepository {
	return &ticketActivityRepository{pool: pool}
}

func (r *ticketActivityRepository) Create(ctx context.Context, activity *domain.TicketActivity) error {
	const query = `
        INSERT INTO ticket_activities (ticket_id, ai_assigned_team, human_assigned_team, ai_suggested_wrong, team_review)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		activity.TicketID,
		activity.AIAssignedTeam,
		activity.HumanAssignedTeam,
		activity.AISuggestedWrong,
		activity.TeamReview,
	).Scan(&activity.ID, &activity.CreatedAt)
}

func (r *ticketActivityRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketActivity, error) {
	const query = `
        SELECT id, ticket_id, ai_assigned_team, human_assigned_team, ai_suggested_wrong, team_review, created_at
        FROM ticket_activities
        WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketActivity
	for rows.Next() {
		var activity domain.TicketActivity
		if err := rows.Scan(
			&activity.ID,
			&activity.TicketID,
			&activity.AIAssignedTeam,
			&activity.HumanAssignedTeam,
			&activity.AISuggestedWrong,
			&activity.TeamReview,
			&activity.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, activity)
	}
	return result, rows.Err()
}
