package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// Ticket is the aggregate for support requests. AssignedTeamID is either
// nil or references an existing team; a scoring pass mutates it only
// through the assignment policy outcome.
type Ticket struct {
	ID             int64
	TicketNumber   string
	Subject        string
	Status         TicketStatus
	Priority       TicketPriority
	Category       string
	Archived       bool
	RequesterID    int64
	AssignedTeamID *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
