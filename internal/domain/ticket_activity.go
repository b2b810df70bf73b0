package domain

import "time"

// TicketActivity records a human reassignment against the AI suggestion.
type TicketActivity struct {
	ID                int64
	TicketID          int64
	AIAssignedTeam    *string
	HumanAssignedTeam string
	AISuggestedWrong  bool
	TeamReview        *string
	CreatedAt         time.Time
}
