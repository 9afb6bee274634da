package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"callerid_backend/platform/logger"
)

type pinged struct {
	BaseEvent
}

func (pinged) EventName() string { return "test.pinged" }

func TestPublishRunsHandlers(t *testing.T) {
	bus := NewInMemoryBus(logger.Nop())
	var calls atomic.Int32
	bus.Subscribe("test.pinged", HandlerFunc(func(ctx context.Context, e Event) error {
		calls.Add(1)
		return nil
	}))
	bus.Subscribe("test.pinged", HandlerFunc(func(ctx context.Context, e Event) error {
		panic("handler bug")
	}))
	bus.Subscribe("test.other", HandlerFunc(func(ctx context.Context, e Event) error {
		t.Error("unrelated handler must not run")
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, pinged{NewBaseEvent()})
	cancel()
	bus.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", calls.Load())
	}
}

func TestPublishSyncJoinsErrors(t *testing.T) {
	bus := NewInMemoryBus(logger.Nop())
	boom := errors.New("boom")
	bus.Subscribe("test.pinged", HandlerFunc(func(ctx context.Context, e Event) error { return boom }))
	bus.Subscribe("test.pinged", HandlerFunc(func(ctx context.Context, e Event) error { panic("bad") }))

	err := bus.PublishSync(context.Background(), pinged{NewBaseEvent()})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to contain boom, got %v", err)
	}
}
