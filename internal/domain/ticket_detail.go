package domain

import "time"

// TicketDetail holds the single most-recent AI summary for a ticket:
// the suggested team, its confidence and a representative evidence
// excerpt. Created empty alongside the ticket, overwritten on each
// scoring pass. At most one row exists per ticket.
type TicketDetail struct {
	ID              int64
	TicketID        int64
	Description     *string
	AISuggestedTeam *string
	AIConfidence    *float64
	CreatedAt       time.Time
}
