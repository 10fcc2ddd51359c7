package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, name string, handler EventHandler)
}

type subscription struct {
	name    string
	handler EventHandler
}

// inMemoryDispatcher is a simple synchronous dispatcher.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]subscription
	logger    *zap.Logger
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher(logger *zap.Logger) Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]subscription),
		logger:    logger.Named("events"),
	}
}

// Publish synchronously invokes every handler for the event type. A failing
// or panicking handler is logged and does not stop the others; their errors
// are joined.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	subs := append([]subscription{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	var errs []error
	for _, sub := range subs {
		if err := invoke(ctx, sub, event); err != nil {
			d.logger.Warn("event handler failed",
				zap.String("handler", sub.name),
				zap.String("event_type", string(event.Type)),
				zap.String("event_id", event.ID),
				zap.String("visit_id", event.VisitID),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", sub.name, err))
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers a named handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, name string, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], subscription{name: name, handler: handler})
}

func invoke(ctx context.Context, sub subscription, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return sub.handler(ctx, event)
}
