package dto

import "time"

// ReassignRequest records a human override of the AI routing.
type ReassignRequest struct {
	AIAssignedTeam    *string `json:"ai_assigned_team"`
	HumanAssignedTeam string  `json:"human_assigned_team"`
	AISuggestedWrong  bool    `json:"ai_suggested_wrong"`
	TeamReview        *string `json:"team_review"`
}

// ActivityResponse payload.
type ActivityResponse struct {
	ID                int64     `json:"id"`
	TicketID          int64     `json:"ticket_id"`
	AIAssignedTeam    *string   `json:"ai_assigned_team,omitempty"`
	HumanAssignedTeam string    `json:"human_assigned_team"`
	AISuggestedWrong  bool      `json:"ai_suggested_wrong"`
	TeamReview        *string   `json:"team_review,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
