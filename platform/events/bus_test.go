package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"phonebook_backend/platform/logger"
)

type pingEvent struct {
	BaseEvent
}

func (pingEvent) EventName() string { return "test.ping" }

func TestPublishReachesAllHandlers(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	var calls atomic.Int32

	for i := 0; i < 3; i++ {
		bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, event Event) error {
			calls.Add(1)
			return nil
		}))
	}

	bus.Publish(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	bus.Wait()

	if got := calls.Load(); got != 3 {
		t.Fatalf("handlers called %d times, want 3", got)
	}
}

func TestPublishSyncJoinsErrors(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	boom := errors.New("boom")
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, event Event) error { return boom }))
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, event Event) error { return nil }))

	err := bus.PublishSync(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to contain boom, got %v", err)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewInMemoryBus(nil)
	bus.Publish(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	bus.Wait()
	if err := bus.PublishSync(context.Background(), pingEvent{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
