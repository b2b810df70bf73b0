package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-routing/internal/domain"
)

// TicketDetailRepository manages the one-to-one AI summary row.
type TicketDetailRepository interface {
	GetByTicketID(ctx context.Context, ticketID int64) (*domain.TicketDetail, error)
	// Update overwrites the AI summary fields; the write is idempotent.
	Update(ctx context.Context, detail *domain.TicketDetail) error
	Upsert(ctx context.Context, detail *domain.TicketDetail) error
	DeleteByTicketID(ctx context.Context, ticketID int64) error
}

type ticketDetailRepository struct {
	pool *pgxpool.Pool
}

// NewTicketDetailRepository constructs repository.
func NewTicketDetailRepository(pool *pgxpool.Pool) TicketDetailRepository {
	return &ticketDetailRepository{pool: pool}
}

func (r *ticketDetailRepository) GetByTicketID(ctx context.Context, ticketID int64) (*domain.TicketDetail, error) {
	const query = `
        SELECT id, ticket_id, description, ai_suggested_team, ai_confidence, created_at
        FROM ticket_details WHERE ticket_id=$1`
	var detail domain.TicketDetail
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&detail.ID,
		&detail.TicketID,
		&detail.Description,
		&detail.AISuggestedTeam,
		&detail.AIConfidence,
		&detail.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *ticketDetailRepository) Update(ctx context.Context, detail *domain.TicketDetail) error {
	const query = `
        UPDATE ticket_details SET description=$1, ai_suggested_team=$2, ai_confidence=$3
        WHERE ticket_id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		detail.Description,
		detail.AISuggestedTeam,
		detail.AIConfidence,
		detail.TicketID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketDetailRepository) Upsert(ctx context.Context, detail *domain.TicketDetail) error {
	const query = `
        INSERT INTO ticket_details (ticket_id, description, ai_suggested_team, ai_confidence)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (ticket_id) DO UPDATE SET
            description=EXCLUDED.description,
            ai_suggested_team=EXCLUDED.ai_suggested_team,
            ai_confidence=EXCLUDED.ai_confidence
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		detail.TicketID,
		detail.Description,
		detail.AISuggestedTeam,
		detail.AIConfidence,
	).Scan(&detail.ID, &detail.CreatedAt)
}

func (r *ticketDetailRepository) DeleteByTicketID(ctx context.Context, ticketID int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM ticket_details WHERE ticket_id=$1`, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
