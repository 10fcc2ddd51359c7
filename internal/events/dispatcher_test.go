package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestInMemoryDispatcher_DeliversToSubscribersOfType(t *testing.T) {
	d := NewInMemoryDispatcher(zaptest.NewLogger(t))
	var got []string

	d.Subscribe(EventVisitEntryRegistered, "first", func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.VisitID)
		return nil
	})
	d.Subscribe(EventVisitEntryRegistered, "second", func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.VisitID)
		return nil
	})
	d.Subscribe(EventVisitExitRegistered, "exit", func(_ context.Context, e Event) error {
		got = append(got, "exit:"+e.VisitID)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventVisitEntryRegistered, VisitID: "v1"}))
	assert.Equal(t, []string{"first:v1", "second:v1"}, got)
}

func TestInMemoryDispatcher_KeepsGoingAfterHandlerError(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))
	boom := errors.New("boom")
	called := false

	d.Subscribe(EventVisitExitRegistered, "audit.exit", func(context.Context, Event) error { return boom })
	d.Subscribe(EventVisitExitRegistered, "metrics.exit", func(context.Context, Event) error {
		called = true
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "e1", Type: EventVisitExitRegistered, VisitID: "v9"})
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "audit.exit")
	assert.True(t, called)

	entries := logs.FilterMessage("event handler failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "audit.exit", fields["handler"])
	assert.Equal(t, "v9", fields["visit_id"])
	assert.Equal(t, string(EventVisitExitRegistered), fields["event_type"])
}

func TestInMemoryDispatcher_RecoversHandlerPanic(t *testing.T) {
	d := NewInMemoryDispatcher(zaptest.NewLogger(t))
	called := false

	d.Subscribe(EventVisitEntryRegistered, "broken", func(context.Context, Event) error { panic("nil map") })
	d.Subscribe(EventVisitEntryRegistered, "healthy", func(context.Context, Event) error {
		called = true
		return nil
	})

	var err error
	require.NotPanics(t, func() {
		err = d.Publish(context.Background(), Event{Type: EventVisitEntryRegistered})
	})
	assert.ErrorContains(t, err, "broken: panic: nil map")
	assert.True(t, called)
}

func TestInMemoryDispatcher_NoSubscribers(t *testing.T) {
	assert.NoError(t, NewInMemoryDispatcher(nil).Publish(context.Background(), Event{Type: EventVisitEntryRegistered}))
}
