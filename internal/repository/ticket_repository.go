package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-routing/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	TeamID     *int64
	TeamName   *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	// CreateWithDetail inserts the ticket and its empty detail row in
	// one transaction; the routing trigger must only fire after this
	// returns.
	CreateWithDetail(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	UpdateAssignedTeam(ctx context.Context, ticketID int64, teamID *int64) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Delete(ctx context.Context, id int64) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) CreateWithDetail(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertTicket = `
        INSERT INTO tickets (ticket_number, subject, status, priority, category, archived, requester_id, assigned_team_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertTicket,
		ticket.TicketNumber,
		ticket.Subject,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.Archived,
		ticket.RequesterID,
		ticket.AssignedTeamID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}

	const insertDetail = `INSERT INTO ticket_details (ticket_id) VALUES ($1)`
	if _, err := tx.Exec(ctx, insertDetail, ticket.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET subject=$1, status=$2, priority=$3, category=$4, archived=$5,
            requester_id=$6, assigned_team_id=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Subject,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.Archived,
		ticket.RequesterID,
		ticket.AssignedTeamID,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateAssignedTeam writes only the assignment column so a scoring
// pass cannot clobber concurrent edits to other ticket fields.
func (r *ticketRepository) UpdateAssignedTeam(ctx context.Context, ticketID int64, teamID *int64) error {
	const query = `UPDATE tickets SET assigned_team_id=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, teamID, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = ticketSelect + ` WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	const query = ticketSelect + ` WHERE ticket_number=$1`
	return r.fetchSingle(ctx, query, number)
}

const ticketSelect = `
        SELECT id, ticket_number, subject, status, priority, category, archived,
               requester_id, assigned_team_id, created_at, updated_at
        FROM tickets`

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.Subject,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Category,
		&ticket.Archived,
		&ticket.RequesterID,
		&ticket.AssignedTeamID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.TeamID != nil {
		args = append(args, *filter.TeamID)
		clauses = append(clauses, fmt.Sprintf("assigned_team_id=$%d", len(args)))
	}
	if filter.TeamName != nil && strings.TrimSpace(*filter.TeamName) != "" {
		args = append(args, strings.TrimSpace(*filter.TeamName))
		clauses = append(clauses, fmt.Sprintf(
			"assigned_team_id IN (SELECT id FROM teams WHERE LOWER(name)=LOWER($%d))", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			`(LOWER(ticket_number) LIKE %s OR LOWER(subject) LIKE %s
              OR requester_id IN (SELECT id FROM customers WHERE LOWER(full_name) LIKE %s OR LOWER(email) LIKE %s))`,
			placeholder, placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketSelect, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketNumber,
			&ticket.Subject,
			&ticket.Status,
			&ticket.Priority,
			&ticket.Category,
			&ticket.Archived,
			&ticket.RequesterID,
			&ticket.AssignedTeamID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
