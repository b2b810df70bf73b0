package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-routing/internal/domain"
)

// TeamConfidenceRepository persists the ranked candidates of a scoring
// pass.
type TeamConfidenceRepository interface {
	// ReplaceForTicket upserts rows keyed on (ticket_id, rank_order)
	// and removes ranks beyond the new set, so rerunning a pass with
	// the same response leaves the row count unchanged.
	ReplaceForTicket(ctx context.Context, ticketID int64, rows []domain.TicketTeamConfidence) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketTeamConfidence, error)
}

type teamConfidenceRepository struct {
	pool *pgxpool.Pool
}

// NewTeamConfidenceRepository constructs repository.
func NewTeamConfidenceRepository(pool *pgxpool.Pool) TeamConfidenceRepository {
	return &teamConfidenceRepository{pool: pool}
}

func (r *teamConfidenceRepository) ReplaceForTicket(ctx context.Context, ticketID int64, rows []domain.TicketTeamConfidence) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const upsert = `
        INSERT INTO ticket_team_confidences (ticket_id, team_name, confidence, rank_order)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (ticket_id, rank_order) DO UPDATE SET
            team_name=EXCLUDED.team_name,
            confidence=EXCLUDED.confidence,
            created_at=NOW()`
	for _, row := range rows {
		if _, err := tx.Exec(ctx, upsert, ticketID, row.TeamName, row.Confidence, row.RankOrder); err != nil {
			return err
		}
	}

	const trim = `DELETE FROM ticket_team_confidences WHERE ticket_id=$1 AND rank_order > $2`
	if _, err := tx.Exec(ctx, trim, ticketID, len(rows)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *teamConfidenceRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketTeamConfidence, error) {
	const query = `
        SELECT id, ticket_id, team_name, confidence, rank_order, created_at
        FROM ticket_team_confidences
        WHERE ticket_id=$1 ORDER BY rank_order ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketTeamConfidence
	for rows.Next() {
		var row domain.TicketTeamConfidence
		if err := rows.Scan(&row.ID, &row.TicketID, &row.TeamName, &row.Confidence, &row.RankOrder, &row.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
