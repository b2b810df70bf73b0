package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []Event
	d.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		got = append(got, event)
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "1", Type: EventTicketCreated, TicketID: 42})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(42), got[0].TicketID)
}

func TestDispatcherSkipsOtherEventTypes(t *testing.T) {
	d := NewInMemoryDispatcher()

	called := false
	d.Subscribe(EventTicketAssigned, func(_ context.Context, _ Event) error {
		called = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	assert.False(t, called)
}

func TestDispatcherFailingHandlerDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()

	second := false
	d.Subscribe(EventTicketCreated, func(_ context.Context, _ Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, _ Event) error {
		second = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	assert.True(t, second)
}
