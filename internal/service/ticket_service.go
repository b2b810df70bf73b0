package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-routing/internal/domain"
	"github.com/spec-kit/ticket-routing/internal/events"
	"github.com/spec-kit/ticket-routing/internal/repository"
	apperrors "github.com/spec-kit/ticket-routing/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	details     repository.TicketDetailRepository
	customers   repository.CustomerRepository
	teams       repository.TeamRepository
	confidences repository.TeamConfidenceRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	DetailRepo     repository.TicketDetailRepository
	CustomerRepo   repository.CustomerRepository
	TeamRepo       repository.TeamRepository
	ConfidenceRepo repository.TeamConfidenceRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject        string
	RequesterEmail string
	RequesterName  string
}

// TicketUpdateInput describes mutable ticket fields.
type TicketUpdateInput struct {
	Subject        string
	Status         domain.TicketStatus
	Priority       domain.TicketPriority
	Category       string
	Archived       bool
	AssignedTeamID *int64
}

// TicketView is a ticket joined with its AI summary and ranked teams.
type TicketView struct {
	Ticket           domain.Ticket
	Requester        *domain.Customer
	AssignedTeamName *string
	Detail           *domain.TicketDetail
	TeamConfidences  []domain.TicketTeamConfidence
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		details:     deps.DetailRepo,
		customers:   deps.CustomerRepo,
		teams:       deps.TeamRepo,
		confidences: deps.ConfidenceRepo,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
	}
}

// CreateTicket registers a new ticket with its empty detail row and
// fires the routing trigger once the transaction has committed.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject required", nil)
	}
	email := strings.TrimSpace(input.RequesterEmail)
	if email == "" {
		return nil, apperrors.NewValidationError("requester_email required", nil)
	}

	customer, err := s.resolveCustomer(ctx, email, input.RequesterName)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		TicketNumber: generateTicketNumber(),
		Subject:      subject,
		Status:       domain.TicketStatusOpen,
		Priority:     domain.TicketPriorityLow,
		RequesterID:  customer.ID,
	}
	if err := s.tickets.CreateWithDetail(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	// The trigger is published only after CreateWithDetail returned,
	// i.e. after the enclosing transaction committed. The payload
	// carries the subject by value so the pass never reads mutable
	// request state.
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			Subject:      ticket.Subject,
			Priority:     ticket.Priority,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket with its AI summary and ranked teams.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*TicketView, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	view, err := s.buildView(ctx, ticket)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return view, nil
}

// ListTickets returns tickets matching the filter, each joined with
// detail and confidence rows.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]TicketView, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	views := make([]TicketView, 0, len(tickets))
	for i := range tickets {
		view, err := s.buildView(ctx, &tickets[i])
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		views = append(views, *view)
	}
	return views, nil
}

// UpdateTicket applies field updates supplied by staff.
func (s *TicketService) UpdateTicket(ctx context.Context, id int64, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	if input.AssignedTeamID != nil {
		if _, err := s.teams.GetByID(ctx, *input.AssignedTeamID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("team", map[string]any{"team_id": *input.AssignedTeamID})
			}
			return nil, apperrors.MapError(err)
		}
	}

	ticket.Subject = strings.TrimSpace(input.Subject)
	ticket.Status = input.Status
	ticket.Priority = input.Priority
	ticket.Category = input.Category
	ticket.Archived = input.Archived
	ticket.AssignedTeamID = input.AssignedTeamID

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// DeleteTicket removes a ticket and its dependent rows.
func (s *TicketService) DeleteTicket(ctx context.Context, id int64) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// GetDetail returns the AI summary row for a ticket.
func (s *TicketService) GetDetail(ctx context.Context, ticketID int64) (*domain.TicketDetail, error) {
	detail, err := s.details.GetByTicketID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket detail", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return detail, nil
}

// UpsertDetail writes the AI summary row for a ticket.
func (s *TicketService) UpsertDetail(ctx context.Context, detail *domain.TicketDetail) (*domain.TicketDetail, error) {
	if _, err := s.tickets.GetByID(ctx, detail.TicketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": detail.TicketID})
		}
		return nil, apperrors.MapError(err)
	}
	if err := s.details.Upsert(ctx, detail); err != nil {
		return nil, apperrors.MapError(err)
	}
	return detail, nil
}

// DeleteDetail removes the AI summary row for a ticket.
func (s *TicketService) DeleteDetail(ctx context.Context, ticketID int64) error {
	if err := s.details.DeleteByTicketID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket detail", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TicketService) resolveCustomer(ctx context.Context, email, name string) (*domain.Customer, error) {
	customer, err := s.customers.GetByEmailIgnoreCase(ctx, email)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	fullName := strings.TrimSpace(name)
	if fullName == "" {
		fullName = "Unknown"
	}
	customer = &domain.Customer{Email: email, FullName: fullName, Active: true}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *TicketService) buildView(ctx context.Context, ticket *domain.Ticket) (*TicketView, error) {
	view := &TicketView{Ticket: *ticket}

	requester, err := s.customers.GetByID(ctx, ticket.RequesterID)
	if err == nil {
		view.Requester = requester
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if ticket.AssignedTeamID != nil {
		team, err := s.teams.GetByID(ctx, *ticket.AssignedTeamID)
		if err == nil {
			view.AssignedTeamName = &team.Name
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}

	detail, err := s.details.GetByTicketID(ctx, ticket.ID)
	if err == nil {
		view.Detail = detail
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	confidences, err := s.confidences.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	view.TeamConfidences = confidences

	return view, nil
}

func generateTicketNumber() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func newEventID() string {
	return uuid.NewString()
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = newEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
