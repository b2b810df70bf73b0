package dto

import (
	"time"

	"github.com/spec-kit/ticket-routing/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject        string `json:"subject"`
	RequesterEmail string `json:"requester_email"`
	RequesterName  string `json:"requester_name"`
}

// UpdateTicketRequest payload.
type UpdateTicketRequest struct {
	Subject        string                `json:"subject"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	Category       string                `json:"category"`
	Archived       bool                  `json:"archived"`
	AssignedTeamID *int64                `json:"assigned_team_id"`
}

// TicketResponse is a ticket with its AI summary and ranked teams.
type TicketResponse struct {
	ID               int64                    `json:"id"`
	TicketNumber     string                   `json:"ticket_number"`
	Subject          string                   `json:"subject"`
	Status           domain.TicketStatus      `json:"status"`
	Priority         domain.TicketPriority    `json:"priority"`
	Category         string                   `json:"category"`
	Archived         bool                     `json:"archived"`
	RequesterName    string                   `json:"requester_name,omitempty"`
	RequesterEmail   string                   `json:"requester_email,omitempty"`
	AssignedTeamID   *int64                   `json:"assigned_team_id,omitempty"`
	AssignedTeamName *string                  `json:"assigned_team_name,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
	TicketDetail     *TicketDetailResponse    `json:"ticket_detail,omitempty"`
	Teams            []TeamConfidenceResponse `json:"teams,omitempty"`
}

// TicketDetailResponse is the AI summary row.
type TicketDetailResponse struct {
	TicketID        int64    `json:"ticket_id"`
	Description     *string  `json:"description,omitempty"`
	AISuggestedTeam *string  `json:"ai_suggested_team,omitempty"`
	AIConfidence    *float64 `json:"ai_confidence,omitempty"`
}

// UpsertTicketDetailRequest payload.
type UpsertTicketDetailRequest struct {
	Description     *string  `json:"description"`
	AISuggestedTeam *string  `json:"ai_suggested_team"`
	AIConfidence    *float64 `json:"ai_confidence"`
}

// TeamConfidenceResponse is one ranked candidate from a scoring pass.
type TeamConfidenceResponse struct {
	TeamName   string  `json:"team"`
	Confidence float64 `json:"confidence"`
	RankOrder  int     `json:"rank_order"`
}
