package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInMemoryDispatcher(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("delivers to subscribers of the type", func(t *testing.T) {
		d := NewInMemoryDispatcher()

		var created, deleted int
		d.Subscribe(EventProjectCreated, func(context.Context, Event) error {
			created++
			return nil
		})
		d.Subscribe(EventProjectDeleted, func(context.Context, Event) error {
			deleted++
			return nil
		})

		require.NoError(t, d.Publish(ctx, Event{Type: EventProjectCreated}))
		require.NoError(t, d.Publish(ctx, Event{Type: EventProjectCreated}))

		require.Equal(t, 2, created)
		require.Equal(t, 0, deleted)
	})

	t.Run("handler errors do not stop delivery", func(t *testing.T) {
		d := NewInMemoryDispatcher()

		var reached bool
		d.Subscribe(EventSessionExpired, func(context.Context, Event) error {
			return errors.New("boom")
		})
		d.Subscribe(EventSessionExpired, func(context.Context, Event) error {
			reached = true
			return nil
		})

		require.NoError(t, d.Publish(ctx, Event{Type: EventSessionExpired}))
		require.True(t, reached)
	})

	t.Run("publish without subscribers is a no-op", func(t *testing.T) {
		d := NewInMemoryDispatcher()
		require.NoError(t, d.Publish(ctx, Event{Type: EventProjectUpdated}))
	})
}
