package domain

import "time"

// TicketTeamConfidence is one ranked candidate from a scoring pass.
// Rank order is 1-based and contiguous per ticket, ascending as
// confidence descends; rows are keyed on (ticket, rank) so a rerun
// replaces rather than duplicates.
type TicketTeamConfidence struct {
	ID         int64
	TicketID   int64
	TeamName   string
	Confidence float64
	RankOrder  int
	CreatedAt  time.Time
}
