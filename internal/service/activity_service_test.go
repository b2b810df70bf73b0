package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-routing/internal/domain"
	"github.com/spec-kit/ticket-routing/internal/events"
)

type fakeActivityRepo struct {
	activities []domain.TicketActivity
}

func (r *fakeActivityRepo) Create(_ context.Context, activity *domain.TicketActivity) error {
	activity.ID = int64(len(r.activities) + 1)
	r.activities = append(r.activities, *activity)
	return nil
}

func (r *fakeActivityRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.TicketActivity, error) {
	var out []domain.TicketActivity
	for _, activity := range r.activities {
		if activity.TicketID == ticketID {
			out = append(out, activity)
		}
	}
	return out, nil
}

func newActivityFixture(t *testing.T) (*ActivityService, *fakeTicketRepo, *fakeActivityRepo, *captureDispatcher) {
	t.Helper()

	aiTeam := int64(7)
	tickets := &fakeTicketRepo{tickets: map[int64]*domain.Ticket{
		42: {ID: 42, TicketNumber: "TCK-AB12CD34", Subject: "VPN keeps disconnecting", AssignedTeamID: &aiTeam},
	}}
	teams := &fakeTeamRepo{teams: []domain.Team{
		{ID: 7, Name: "Network", Active: true},
		{ID: 8, Name: "Security", Active: true},
	}}
	activities := &fakeActivityRepo{}
	dispatcher := &captureDispatcher{}

	svc := NewActivityService(ActivityDependencies{
		TicketRepo:   tickets,
		TeamRepo:     teams,
		ActivityRepo: activities,
		Dispatcher:   dispatcher,
	})
	return svc, tickets, activities, dispatcher
}

func TestRecordReassignment(t *testing.T) {
	svc, tickets, activities, dispatcher := newActivityFixture(t)

	aiTeam := "Network"
	review := "belongs with the firewall group"
	activity, err := svc.RecordReassignment(context.Background(), "TCK-AB12CD34", ReassignInput{
		AIAssignedTeam:    &aiTeam,
		HumanAssignedTeam: "security",
		AISuggestedWrong:  true,
		TeamReview:        &review,
	})
	require.NoError(t, err)

	// Team name resolves case-insensitively to the canonical record.
	assert.Equal(t, "Security", activity.HumanAssignedTeam)
	assert.True(t, activity.AISuggestedWrong)

	require.NotNil(t, tickets.tickets[42].AssignedTeamID)
	assert.Equal(t, int64(8), *tickets.tickets[42].AssignedTeamID)
	require.Len(t, activities.activities, 1)

	require.Len(t, dispatcher.published, 1)
	assert.Equal(t, events.EventTicketReassigned, dispatcher.published[0].Type)
}

func TestRecordReassignmentUnknownTicket(t *testing.T) {
	svc, _, _, dispatcher := newActivityFixture(t)

	_, err := svc.RecordReassignment(context.Background(), "TCK-MISSING", ReassignInput{HumanAssignedTeam: "Security"})
	assert.Error(t, err)
	assert.Empty(t, dispatcher.published)
}

func TestRecordReassignmentUnknownTeam(t *testing.T) {
	svc, tickets, _, _ := newActivityFixture(t)

	_, err := svc.RecordReassignment(context.Background(), "TCK-AB12CD34", ReassignInput{HumanAssignedTeam: "Escalations"})
	assert.Error(t, err)
	assert.Equal(t, int64(7), *tickets.tickets[42].AssignedTeamID)
}

func TestListByTicketNumber(t *testing.T) {
	svc, _, activities, _ := newActivityFixture(t)
	activities.activities = []domain.TicketActivity{
		{ID: 1, TicketID: 42, HumanAssignedTeam: "Security"},
		{ID: 2, TicketID: 99, HumanAssignedTeam: "Network"},
	}

	got, err := svc.ListByTicketNumber(context.Background(), "TCK-AB12CD34")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Security", got[0].HumanAssignedTeam)
}
