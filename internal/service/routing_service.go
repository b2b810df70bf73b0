package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-routing/internal/config"
	"github.com/spec-kit/ticket-routing/internal/domain"
	"github.com/spec-kit/ticket-routing/internal/events"
	"github.com/spec-kit/ticket-routing/internal/observability"
	"github.com/spec-kit/ticket-routing/internal/repository"
	"github.com/spec-kit/ticket-routing/internal/routing"
)

// Trigger is one queued routing pass, captured by value at publish time.
type Trigger struct {
	TicketID int64
	Subject  string
}

// RoutingService drives the asynchronous AI routing pipeline: on each
// trigger it consults the scorer, persists the ranked confidences,
// refreshes the ticket's AI summary and applies the assignment policy.
type RoutingService struct {
	tickets     repository.TicketRepository
	details     repository.TicketDetailRepository
	teams       repository.TeamRepository
	confidences repository.TeamConfidenceRepository
	scorer      routing.Scorer
	locker      routing.TicketLocker
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	cfg         config.RoutingConfig

	queue chan Trigger
}

// RoutingDependencies bundles collaborators for the routing service.
type RoutingDependencies struct {
	TicketRepo     repository.TicketRepository
	DetailRepo     repository.TicketDetailRepository
	TeamRepo       repository.TeamRepository
	ConfidenceRepo repository.TeamConfidenceRepository
	Scorer         routing.Scorer
	Locker         routing.TicketLocker
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
}

// NewRoutingService constructs the service with a bounded trigger queue.
func NewRoutingService(cfg config.RoutingConfig, deps RoutingDependencies) *RoutingService {
	capacity := cfg.QueueCapacity
	if capacity <= 0 {
		capacity = 256
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 3
	}
	locker := deps.Locker
	if locker == nil {
		locker = routing.NewMemoryLocker()
	}
	return &RoutingService{
		tickets:     deps.TicketRepo,
		details:     deps.DetailRepo,
		teams:       deps.TeamRepo,
		confidences: deps.ConfidenceRepo,
		scorer:      deps.Scorer,
		locker:      locker,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		cfg:         cfg,
		queue:       make(chan Trigger, capacity),
	}
}

// RegisterHandlers subscribes the service to ticket creation events.
func (s *RoutingService) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventTicketCreated, s.handleTicketCreated)
}

// handleTicketCreated runs on the publisher's goroutine after the
// creation transaction committed; it only enqueues, never blocks the
// request path.
func (s *RoutingService) handleTicketCreated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	trigger := Trigger{TicketID: event.TicketID, Subject: payload.Subject}
	select {
	case s.queue <- trigger:
	default:
		s.logger.Warn("routing queue full, dropping trigger", zap.Int64("ticket_id", event.TicketID))
		s.metrics.RecordRoutingPass(observability.RoutingOutcomeDropped)
	}
	return nil
}

// Run drains the trigger queue until ctx is cancelled. One goroutine
// per worker; passes for different tickets may run concurrently while
// the per-ticket lock serializes passes for the same ticket.
func (s *RoutingService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case trigger := <-s.queue:
			s.RunScoringPass(ctx, trigger)
		}
	}
}

// RunScoringPass executes one pass of the routing state machine. All
// failures are local: nothing here ever surfaces to the end user.
func (s *RoutingService) RunScoringPass(ctx context.Context, trigger Trigger) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.TicketLockTTL())
	defer cancel()

	release, acquired := s.locker.Lock(ctx, trigger.TicketID)
	if !acquired {
		s.logger.Warn("could not acquire routing lock", zap.Int64("ticket_id", trigger.TicketID))
		s.metrics.RecordRoutingPass(observability.RoutingOutcomeLockTimeout)
		return
	}
	defer release()

	ticket, err := s.tickets.GetByID(ctx, trigger.TicketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Deleted between commit and async execution.
			s.logger.Info("ticket gone before scoring", zap.Int64("ticket_id", trigger.TicketID))
		} else {
			s.logger.Error("fetch ticket for scoring", zap.Int64("ticket_id", trigger.TicketID), zap.Error(err))
		}
		s.metrics.RecordRoutingPass(observability.RoutingOutcomeAborted)
		return
	}

	response := s.scorer.Search(ctx, ticket.Subject)
	if response.Empty() {
		// Existing detail and confidence rows stay untouched.
		s.logger.Info("empty scorer response", zap.Int64("ticket_id", ticket.ID))
		s.metrics.RecordRoutingPass(observability.RoutingOutcomeEmpty)
		return
	}

	ranked := routing.RankTeams(response.Teams, s.cfg.TopN)
	s.persistConfidences(ctx, ticket.ID, ranked)

	top := ranked[0]
	if !s.updateDetail(ctx, ticket.ID, top, response.EvidenceExcerpt()) {
		s.metrics.RecordRoutingPass(observability.RoutingOutcomeAborted)
		return
	}

	s.applyAssignment(ctx, ticket, top)
}

func (s *RoutingService) persistConfidences(ctx context.Context, ticketID int64, ranked []routing.RankedTeam) {
	rows := make([]domain.TicketTeamConfidence, 0, len(ranked))
	for _, candidate := range ranked {
		rows = append(rows, domain.TicketTeamConfidence{
			TicketID:   ticketID,
			TeamName:   candidate.Name,
			Confidence: candidate.Confidence,
			RankOrder:  candidate.Rank,
		})
	}
	// Best-effort: a failure here must not block the detail update or
	// the assignment step.
	if err := s.confidences.ReplaceForTicket(ctx, ticketID, rows); err != nil {
		s.logger.Error("persist team confidences", zap.Int64("ticket_id", ticketID), zap.Error(err))
	}
}

func (s *RoutingService) updateDetail(ctx context.Context, ticketID int64, top routing.RankedTeam, excerpt *string) bool {
	detail, err := s.details.GetByTicketID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Every ticket is created with its detail row; a missing
			// one is a data integrity problem, not a transient state.
			s.logger.Error("ticket detail missing", zap.Int64("ticket_id", ticketID))
		} else {
			s.logger.Error("fetch ticket detail", zap.Int64("ticket_id", ticketID), zap.Error(err))
		}
		return false
	}

	detail.AISuggestedTeam = &top.Name
	detail.AIConfidence = &top.Confidence
	detail.Description = excerpt
	if err := s.details.Update(ctx, detail); err != nil {
		// Overwrite semantics make a retry on the next pass safe.
		s.logger.Error("update ticket detail", zap.Int64("ticket_id", ticketID), zap.Error(err))
	}
	return true
}

func (s *RoutingService) applyAssignment(ctx context.Context, ticket *domain.Ticket, top routing.RankedTeam) {
	team, err := s.teams.GetByNameIgnoreCase(ctx, top.Name)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		s.logger.Error("resolve suggested team", zap.String("team", top.Name), zap.Error(err))
	}

	outcome := routing.Decide(top.Confidence, s.cfg.AssignThreshold, team)
	if err := s.tickets.UpdateAssignedTeam(ctx, ticket.ID, outcome.TeamID); err != nil {
		s.logger.Error("write assignment", zap.Int64("ticket_id", ticket.ID), zap.Error(err))
		s.metrics.RecordRoutingPass(observability.RoutingOutcomeAborted)
		return
	}

	if outcome.Assigned() {
		s.logger.Info("auto-assigned ticket",
			zap.Int64("ticket_id", ticket.ID),
			zap.String("team", top.Name),
			zap.Float64("confidence", top.Confidence))
		s.metrics.RecordRoutingPass(observability.RoutingOutcomeAssigned)
	} else {
		s.logger.Info("assignment cleared",
			zap.Int64("ticket_id", ticket.ID),
			zap.String("suggested_team", top.Name),
			zap.Float64("confidence", top.Confidence))
		s.metrics.RecordRoutingPass(observability.RoutingOutcomeCleared)
	}

	s.publishAssigned(ctx, ticket.ID, events.TicketAssignedPayload{
		TeamID:        outcome.TeamID,
		SuggestedTeam: top.Name,
		Confidence:    top.Confidence,
	})
}

func (s *RoutingService) publishAssigned(ctx context.Context, ticketID int64, payload events.TicketAssignedPayload) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        newEventID(),
		Type:      events.EventTicketAssigned,
		TicketID:  ticketID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
