package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-routing/internal/config"
	"github.com/spec-kit/ticket-routing/internal/domain"
	"github.com/spec-kit/ticket-routing/internal/events"
	"github.com/spec-kit/ticket-routing/internal/observability"
)

func newTriggerService(t *testing.T, queueCapacity int, dispatcher events.Dispatcher) (*RoutingService, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetrics()
	svc := NewRoutingService(config.RoutingConfig{
		AssignThreshold:  80,
		TopN:             3,
		TicketLockTTLSec: 5,
		QueueCapacity:    queueCapacity,
	}, RoutingDependencies{
		TicketRepo:     &fakeTicketRepo{tickets: make(map[int64]*domain.Ticket)},
		DetailRepo:     &fakeDetailRepo{details: make(map[int64]*domain.TicketDetail)},
		TeamRepo:       &fakeTeamRepo{},
		ConfidenceRepo: &fakeConfidenceRepo{rows: make(map[int64][]domain.TicketTeamConfidence)},
		Scorer:         &stubScorer{},
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         zap.NewNop(),
	})
	svc.RegisterHandlers()
	return svc, metrics
}

func publishCreated(t *testing.T, dispatcher events.Dispatcher, ticketID int64, subject string) {
	t.Helper()
	err := dispatcher.Publish(context.Background(), events.Event{
		ID:        "evt",
		Type:      events.EventTicketCreated,
		TicketID:  ticketID,
		Timestamp: time.Now(),
		Payload:   events.TicketCreatedPayload{Subject: subject},
	})
	require.NoError(t, err)
}

func TestTicketCreatedEnqueuesTrigger(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	svc, _ := newTriggerService(t, 4, dispatcher)

	publishCreated(t, dispatcher, 42, "VPN keeps disconnecting")

	select {
	case trigger := <-svc.queue:
		assert.Equal(t, Trigger{TicketID: 42, Subject: "VPN keeps disconnecting"}, trigger)
	default:
		t.Fatal("no trigger enqueued")
	}
}

func TestTicketCreatedDropsWhenQueueFull(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	svc, metrics := newTriggerService(t, 1, dispatcher)

	publishCreated(t, dispatcher, 1, "first")
	publishCreated(t, dispatcher, 2, "second")

	assert.Len(t, svc.queue, 1)
	assert.Equal(t, int64(1), metrics.RoutingPassCount(observability.RoutingOutcomeDropped))
}

func TestTicketCreatedIgnoresForeignPayload(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	svc, _ := newTriggerService(t, 4, dispatcher)

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:       "evt",
		Type:     events.EventTicketCreated,
		TicketID: 1,
		Payload:  "not a creation payload",
	})
	require.NoError(t, err)
	assert.Empty(t, svc.queue)
}

func TestRunDrainsQueueUntilCancelled(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	svc, metrics := newTriggerService(t, 4, dispatcher)

	publishCreated(t, dispatcher, 99, "unknown ticket")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	// Ticket 99 does not exist in the fake repo so the pass aborts.
	require.Eventually(t, func() bool {
		return metrics.RoutingPassCount(observability.RoutingOutcomeAborted) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
