package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-routing/internal/config"
	"github.com/spec-kit/ticket-routing/internal/domain"
	"github.com/spec-kit/ticket-routing/internal/observability"
	"github.com/spec-kit/ticket-routing/internal/repository"
	"github.com/spec-kit/ticket-routing/internal/routing"
)

type fakeTicketRepo struct {
	tickets     map[int64]*domain.Ticket
	assignments []*int64
	updateErr   error
}

func (r *fakeTicketRepo) CreateWithDetail(_ context.Context, ticket *domain.Ticket) error {
	if ticket.ID == 0 {
		ticket.ID = int64(len(r.tickets) + 1)
	}
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *fakeTicketRepo) UpdateAssignedTeam(_ context.Context, ticketID int64, teamID *int64) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	ticket, ok := r.tickets[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.AssignedTeamID = teamID
	r.assignments = append(r.assignments, teamID)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) GetByNumber(_ context.Context, number string) (*domain.Ticket, error) {
	for _, ticket := range r.tickets {
		if ticket.TicketNumber == number {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, _ repository.TicketFilter) ([]domain.Ticket, error) {
	out := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id int64) error {
	delete(r.tickets, id)
	return nil
}

type fakeDetailRepo struct {
	details map[int64]*domain.TicketDetail
}

func (r *fakeDetailRepo) GetByTicketID(_ context.Context, ticketID int64) (*domain.TicketDetail, error) {
	detail, ok := r.details[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *detail
	return &copied, nil
}

func (r *fakeDetailRepo) Update(_ context.Context, detail *domain.TicketDetail) error {
	if _, ok := r.details[detail.TicketID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *detail
	r.details[detail.TicketID] = &copied
	return nil
}

func (r *fakeDetailRepo) Upsert(_ context.Context, detail *domain.TicketDetail) error {
	copied := *detail
	r.details[detail.TicketID] = &copied
	return nil
}

func (r *fakeDetailRepo) DeleteByTicketID(_ context.Context, ticketID int64) error {
	delete(r.details, ticketID)
	return nil
}

type fakeTeamRepo struct {
	teams []domain.Team
}

func (r *fakeTeamRepo) Create(_ context.Context, team *domain.Team) error {
	r.teams = append(r.teams, *team)
	return nil
}

func (r *fakeTeamRepo) Update(_ context.Context, _ *domain.Team) error { return nil }

func (r *fakeTeamRepo) GetByID(_ context.Context, id int64) (*domain.Team, error) {
	for i := range r.teams {
		if r.teams[i].ID == id {
			copied := r.teams[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTeamRepo) GetByNameIgnoreCase(_ context.Context, name string) (*domain.Team, error) {
	for i := range r.teams {
		if equalsFold(r.teams[i].Name, name) {
			copied := r.teams[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTeamRepo) List(_ context.Context) ([]domain.Team, error) {
	return append([]domain.Team(nil), r.teams...), nil
}

func (r *fakeTeamRepo) Delete(_ context.Context, _ int64) error { return nil }

func equalsFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

type fakeConfidenceRepo struct {
	rows       map[int64][]domain.TicketTeamConfidence
	replaceErr error
}

func (r *fakeConfidenceRepo) ReplaceForTicket(_ context.Context, ticketID int64, rows []domain.TicketTeamConfidence) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}
	r.rows[ticketID] = append([]domain.TicketTeamConfidence(nil), rows...)
	return nil
}

func (r *fakeConfidenceRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.TicketTeamConfidence, error) {
	return r.rows[ticketID], nil
}

type stubScorer struct {
	response routing.ScoringResponse
	calls    int
}

func (s *stubScorer) Search(_ context.Context, _ string) routing.ScoringResponse {
	s.calls++
	return s.response
}

type routingFixture struct {
	svc         *RoutingService
	tickets     *fakeTicketRepo
	details     *fakeDetailRepo
	teams       *fakeTeamRepo
	confidences *fakeConfidenceRepo
	scorer      *stubScorer
	metrics     *observability.Metrics
}

func newRoutingFixture(t *testing.T, response routing.ScoringResponse) *routingFixture {
	t.Helper()

	tickets := &fakeTicketRepo{tickets: map[int64]*domain.Ticket{
		42: {ID: 42, TicketNumber: "TCK-AB12CD34", Subject: "VPN keeps disconnecting", Status: domain.TicketStatusOpen},
	}}
	details := &fakeDetailRepo{details: map[int64]*domain.TicketDetail{
		42: {TicketID: 42},
	}}
	teams := &fakeTeamRepo{teams: []domain.Team{
		{ID: 7, Name: "Network", Active: true},
		{ID: 8, Name: "Security", Active: true},
	}}
	confidences := &fakeConfidenceRepo{rows: make(map[int64][]domain.TicketTeamConfidence)}
	scorer := &stubScorer{response: response}
	metrics := observability.NewMetrics()

	svc := NewRoutingService(config.RoutingConfig{
		AssignThreshold:  80,
		TopN:             3,
		TicketLockTTLSec: 5,
		QueueCapacity:    4,
	}, RoutingDependencies{
		TicketRepo:     tickets,
		DetailRepo:     details,
		TeamRepo:       teams,
		ConfidenceRepo: confidences,
		Scorer:         scorer,
		Metrics:        metrics,
		Logger:         zap.NewNop(),
	})

	return &routingFixture{
		svc:         svc,
		tickets:     tickets,
		details:     details,
		teams:       teams,
		confidences: confidences,
		scorer:      scorer,
		metrics:     metrics,
	}
}

func confidentResponse() routing.ScoringResponse {
	return routing.ScoringResponse{
		Teams: []routing.TeamScore{
			{Team: "Network", Confidence: 92},
			{Team: "Security", Confidence: 61},
		},
		Results: []routing.EvidenceResult{
			{Team: "Network", AISuggestedMessage: "Reset the VPN profile and reconnect."},
		},
	}
}

func TestRunScoringPassAssigns(t *testing.T) {
	f := newRoutingFixture(t, confidentResponse())

	f.svc.RunScoringPass(context.Background(), Trigger{TicketID: 42, Subject: "VPN keeps disconnecting"})

	rows := f.confidences.rows[42]
	require.Len(t, rows, 2)
	assert.Equal(t, domain.TicketTeamConfidence{TicketID: 42, TeamName: "Network", Confidence: 92, RankOrder: 1}, rows[0])
	assert.Equal(t, domain.TicketTeamConfidence{TicketID: 42, TeamName: "Security", Confidence: 61, RankOrder: 2}, rows[1])

	detail := f.details.details[42]
	require.NotNil(t, detail.AISuggestedTeam)
	assert.Equal(t, "Network", *detail.AISuggestedTeam)
	require.NotNil(t, detail.AIConfidence)
	assert.Equal(t, 92.0, *detail.AIConfidence)
	require.NotNil(t, detail.Description)
	assert.Equal(t, "Reset the VPN profile and reconnect.", *detail.Description)

	ticket := f.tickets.tickets[42]
	require.NotNil(t, ticket.AssignedTeamID)
	assert.Equal(t, int64(7), *ticket.AssignedTeamID)
	assert.Equal(t, int64(1), f.metrics.RoutingPassCount(observability.RoutingOutcomeAssigned))
}

func TestRunScoringPassClearsBelowThreshold(t *testing.T) {
	response := routing.ScoringResponse{Teams: []routing.TeamScore{
		{Team: "Network", Confidence: 75},
	}}
	f := newRoutingFixture(t, response)
	prior := int64(8)
	f.tickets.tickets[42].AssignedTeamID = &prior

	f.svc.RunScoringPass(context.Background(), Trigger{TicketID: 42, Subject: "VPN keeps disconnecting"})

	require.Len(t, f.confidences.rows[42], 1)
	detail := f.details.details[42]
	require.NotNil(t, detail.AISuggestedTeam)
	assert.Equal(t, "Network", *detail.AISuggestedTeam)

	assert.Nil(t, f.tickets.tickets[42].AssignedTeamID)
	assert.Equal(t, int64(1), f.metrics.RoutingPassCount(observability.RoutingOutcomeCleared))
}

func TestRunScoringPassClearsWhenTeamUnknown(t *testing.T) {
	response := routing.ScoringResponse{Teams: []routing.TeamScore{
		{Team: "Escalations", Confidence: 95},
	}}
	f := newRoutingFixture(t, response)

	f.svc.RunScoringPass(context.Background(), Trigger{TicketID: 42, Subject: "VPN keeps disconnecting"})

	assert.Nil(t, f.tickets.tickets[42].AssignedTeamID)
	detail := f.details.details[42]
	require.NotNil(t, detail.AISuggestedTeam)
	assert.Equal(t, "Escalations", *detail.AISuggestedTeam)
	assert.Equal(t, int64(1), f.metrics.RoutingPassCount(observability.RoutingOutcomeCleared))
}

func TestRunScoringPassTeamNameCaseInsensitive(t *testing.T) {
	response := routing.ScoringResponse{Teams: []routing.TeamScore{
		{Team: "NETWORK", Confidence: 90},
	}}
	f := newRoutingFixture(t, response)

	f.svc.RunScoringPass(context.Background(), Trigger{TicketID: 42, Subject: "VPN keeps disconnecting"})

	require.NotNil(t, f.tickets.tickets[42].AssignedTeamID)
	assert.Equal(t, int64(7), *f.tickets.tickets[42].AssignedTeamID)
}

func TestRunScoringPassEmptyResponseLeavesStateUntouched(t *testing.T) {
	f := newRoutingFixture(t, routing.ScoringResponse{})
	existing := []domain.TicketTeamConfidence{{TicketID: 42, TeamName: "Network", Confidence: 90, RankOrder: 1}}
	f.confidences.rows[42] = existing
	suggested := "Network"
	f.details.details[42].AISuggestedTeam = &suggested

	f.svc.RunScoringPass(context.Background(), Trigger{TicketID: 42, Subject: "VPN keeps disconnecting"})

	assert.Equal(t, existing, f.confidences.rows[42])
	require.NotNil(t, f.details.details[42].AISuggestedTeam)
	assert.Equal(t, "Network", *f.details.details[42].AISuggestedTeam)
	assert.Empty(t, f.tickets.assignments)
	assert.Equal(t, int64(1), f.metrics.RoutingPassCount(observability.RoutingOutcomeEmpty))
}

func TestRunScoringPassTicketGone(t *testing.T) {
	f := newRoutingFixture(t, confidentResponse())
	delete(f.tickets.tickets, 42)

	f.svc.RunScoringPass(context.Background(), Trigger{TicketID: 42, Subject: "VPN keeps disconnecting"})

	assert.Zero(t, f.scorer.calls)
	assert.Empty(t, f.confidences.rows[42])
	assert.Equal(t, int64(1), f.metrics.RoutingPassCount(observability.RoutingOutcomeAborted))
}

func TestRunScoringPassMissingDetailAborts(t *testing.T) {
	f := newRoutingFixture(t, confidentResponse())
	delete(f.details.details, 42)

	f.svc.RunScoringPass(context.Background(), Trigger{TicketID: 42, Subject: "VPN keeps disconnecting"})

	// Confidence rows land before the detail read, assignment never runs.
	require.Len(t, f.confidences.rows[42], 2)
	assert.Empty(t, f.tickets.assignments)
	assert.Equal(t, int64(1), f.metrics.RoutingPassCount(observability.RoutingOutcomeAborted))
}

func TestRunScoringPassConfidencePersistFailureIsBestEffort(t *testing.T) {
	f := newRoutingFixture(t, confidentResponse())
	f.confidences.replaceErr = errors.New("connection reset")

	f.svc.RunScoringPass(context.Background(), Trigger{TicketID: 42, Subject: "VPN keeps disconnecting"})

	// Detail and assignment still proceed.
	require.NotNil(t, f.details.details[42].AISuggestedTeam)
	require.NotNil(t, f.tickets.tickets[42].AssignedTeamID)
	assert.Equal(t, int64(7), *f.tickets.tickets[42].AssignedTeamID)
}

func TestRunScoringPassIsIdempotent(t *testing.T) {
	f := newRoutingFixture(t, confidentResponse())
	trigger := Trigger{TicketID: 42, Subject: "VPN keeps disconnecting"}

	f.svc.RunScoringPass(context.Background(), trigger)
	firstRows := append([]domain.TicketTeamConfidence(nil), f.confidences.rows[42]...)
	f.svc.RunScoringPass(context.Background(), trigger)

	assert.Equal(t, firstRows, f.confidences.rows[42])
	require.NotNil(t, f.tickets.tickets[42].AssignedTeamID)
	assert.Equal(t, int64(7), *f.tickets.tickets[42].AssignedTeamID)
	assert.Equal(t, int64(2), f.metrics.RoutingPassCount(observability.RoutingOutcomeAssigned))
}

func TestRunScoringPassTruncatesToTopN(t *testing.T) {
	response := routing.ScoringResponse{Teams: []routing.TeamScore{
		{Team: "Network", Confidence: 92},
		{Team: "Security", Confidence: 61},
		{Team: "Hardware", Confidence: 40},
		{Team: "Billing", Confidence: 12},
	}}
	f := newRoutingFixture(t, response)

	f.svc.RunScoringPass(context.Background(), Trigger{TicketID: 42, Subject: "VPN keeps disconnecting"})

	rows := f.confidences.rows[42]
	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].RankOrder)
	assert.Equal(t, 3, rows[2].RankOrder)
	assert.Equal(t, "Hardware", rows[2].TeamName)
}
