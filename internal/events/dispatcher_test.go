package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var seen []string
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		seen = append(seen, event.SubjectID)
		return nil
	})
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		seen = append(seen, event.SubjectID+"-second")
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated, SubjectID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t1-second"}, seen)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	called := false
	dispatcher.Subscribe(EventInviteCreated, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestDispatcherContinuesPastHandlerError(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var order []int
	dispatcher.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		order = append(order, 1)
		return errors.New("delivery failed")
	})
	dispatcher.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		order = append(order, 2)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketAssigned})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, order)
}
