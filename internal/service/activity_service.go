package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-routing/internal/domain"
	"github.com/spec-kit/ticket-routing/internal/events"
	"github.com/spec-kit/ticket-routing/internal/repository"
	apperrors "github.com/spec-kit/ticket-routing/pkg/util/errorutil"
)

// ActivityService records human reassignments against AI suggestions.
type ActivityService struct {
	tickets    repository.TicketRepository
	teams      repository.TeamRepository
	activities repository.TicketActivityRepository
	dispatcher events.Dispatcher
}

// ActivityDependencies bundles repositories for the activity service.
type ActivityDependencies struct {
	TicketRepo   repository.TicketRepository
	TeamRepo     repository.TeamRepository
	ActivityRepo repository.TicketActivityRepository
	Dispatcher   events.Dispatcher
}

// NewActivityService constructs the service.
func NewActivityService(deps ActivityDependencies) *ActivityService {
	return &ActivityService{
		tickets:    deps.TicketRepo,
		teams:      deps.TeamRepo,
		activities: deps.ActivityRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ReassignInput describes a human override.
type ReassignInput struct {
	AIAssignedTeam    *string
	HumanAssignedTeam string
	AISuggestedWrong  bool
	TeamReview        *string
}

// ListByTicketNumber returns the activity trail for a ticket.
func (s *ActivityService) ListByTicketNumber(ctx context.Context, ticketNumber string) ([]domain.TicketActivity, error) {
	ticket, err := s.getTicket(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}
	activities, err := s.activities.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return activities, nil
}

// RecordReassignment moves the ticket to the named team and stores the
// bookkeeping record of the override.
func (s *ActivityService) RecordReassignment(ctx context.Context, ticketNumber string, input ReassignInput) (*domain.TicketActivity, error) {
	teamName := strings.TrimSpace(input.HumanAssignedTeam)
	if teamName == "" {
		return nil, apperrors.NewValidationError("human_assigned_team required", nil)
	}

	ticket, err := s.getTicket(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}

	team, err := s.teams.GetByNameIgnoreCase(ctx, teamName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("team", map[string]any{"team_name": teamName})
		}
		return nil, apperrors.MapError(err)
	}

	if err := s.tickets.UpdateAssignedTeam(ctx, ticket.ID, &team.ID); err != nil {
		return nil, apperrors.MapError(err)
	}

	activity := &domain.TicketActivity{
		TicketID:          ticket.ID,
		AIAssignedTeam:    input.AIAssignedTeam,
		HumanAssignedTeam: team.Name,
		AISuggestedWrong:  input.AISuggestedWrong,
		TeamReview:        input.TeamReview,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        newEventID(),
			Type:      events.EventTicketReassigned,
			TicketID:  ticket.ID,
			Timestamp: time.Now(),
			Payload: events.TicketReassignedPayload{
				AIAssignedTeam:    input.AIAssignedTeam,
				HumanAssignedTeam: team.Name,
			},
		})
	}
	return activity, nil
}

func (s *ActivityService) getTicket(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByNumber(ctx, ticketNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_number": ticketNumber})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}
