// Package eventing carries catalog change notifications in process.
package eventing

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// EventHandler handles a published event.
type EventHandler func(ctx context.Context, event any) error

// Bus delivers events to subscribed handlers.
type Bus interface {
	Publish(ctx context.Context, event any) error
	Subscribe(eventType string, handler EventHandler)
}

var (
	// ErrNilEvent is returned for a nil event or nil pointer.
	ErrNilEvent = errors.New("eventing: nil event")
	// ErrInvalidEventType is returned when an event does not match the
	// type its handler was registered for.
	ErrInvalidEventType = errors.New("eventing: invalid event type")
)

// InMemoryBus dispatches synchronously to the handlers of an event's type.
// Pointer events are dereferenced before dispatch, so handlers always see
// values.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

// NewInMemoryBus constructs an empty bus.
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{handlers: make(map[string][]EventHandler)}
}

// Publish runs every handler of the event's type and returns the first
// handler error.
func (b *InMemoryBus) Publish(ctx context.Context, event any) error {
	value, eventType, err := normalize(event)
	if err != nil {
		return err
	}

	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.handlers[eventType]...)
	b.mu.RUnlock()

	var firstErr error
	for _, handler := range handlers {
		if err := handler(ctx, value); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Subscribe registers handler for events named eventType.
func (b *InMemoryBus) Subscribe(eventType string, handler EventHandler) {
	if eventType == "" || handler == nil {
		return
	}
	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.mu.Unlock()
}

// Handle subscribes a handler typed to T. Events of any other type are
// rejected with ErrInvalidEventType instead of reaching handler.
func Handle[T any](bus Bus, handler func(ctx context.Context, event T) error) {
	if bus == nil || handler == nil {
		return
	}
	bus.Subscribe(EventTypeOf[T](), func(ctx context.Context, event any) error {
		switch e := event.(type) {
		case T:
			return handler(ctx, e)
		case *T:
			if e == nil {
				return ErrNilEvent
			}
			return handler(ctx, *e)
		default:
			return fmt.Errorf("%w: %T", ErrInvalidEventType, event)
		}
	})
}

func normalize(event any) (any, string, error) {
	if event == nil {
		return nil, "", ErrNilEvent
	}
	v := reflect.ValueOf(event)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, "", ErrNilEvent
		}
		v = v.Elem()
	}
	name := v.Type().String()
	if name == "" {
		return nil, "", ErrInvalidEventType
	}
	return v.Interface(), name, nil
}

// EventType returns the type name an event is dispatched under.
func EventType(event any) string {
	if event == nil {
		return ""
	}
	t := reflect.TypeOf(event)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.String()
}

// EventTypeOf returns the dispatch name for T.
func EventTypeOf[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
