package events

import (
	"time"

	"github.com/spec-kit/ticket-routing/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated    EventType = "ticket_created"
	EventTicketAssigned   EventType = "ticket_assigned"
	EventTicketReassigned EventType = "ticket_reassigned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload is the routing trigger: emitted once per ticket,
// after the creation transaction has committed, carrying the subject by
// value.
type TicketCreatedPayload struct {
	TicketNumber string                `json:"ticket_number"`
	Subject      string                `json:"subject"`
	Priority     domain.TicketPriority `json:"priority"`
}

// TicketAssignedPayload describes a routing pass decision. TeamID is
// nil when the pass cleared the assignment.
type TicketAssignedPayload struct {
	TeamID        *int64  `json:"team_id,omitempty"`
	SuggestedTeam string  `json:"suggested_team"`
	Confidence    float64 `json:"confidence"`
}

// TicketReassignedPayload describes a human override of the AI routing.
type TicketReassignedPayload struct {
	AIAssignedTeam    *string `json:"ai_assigned_team,omitempty"`
	HumanAssignedTeam string  `json:"human_assigned_team"`
}
