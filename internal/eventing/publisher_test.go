package eventing

import (
	"context"
	"testing"
	"time"

	"machinehealth-cloud/internal/eventing/eventbus"
)

type conditionRaised struct {
	MachineName string
	Condition   string
	ObservedAt  time.Time
}

type memoryProcessed struct {
	seen map[string]bool
}

func newMemoryProcessed() *memoryProcessed {
	return &memoryProcessed{seen: make(map[string]bool)}
}

func (s *memoryProcessed) HasProcessed(_ context.Context, eventID, consumerName string) (bool, error) {
	return s.seen[eventID+"|"+consumerName], nil
}

func (s *memoryProcessed) MarkProcessed(_ context.Context, eventID, consumerName string) error {
	s.seen[eventID+"|"+consumerName] = true
	return nil
}

func TestPublishWrapsEventInEnvelope(t *testing.T) {
	bus := eventbus.NewInMemoryBus()
	publisher := NewPublisher(bus)

	var got Envelope
	var gotOK bool
	bus.Subscribe(eventbus.EventTypeOf[conditionRaised](), func(ctx context.Context, _ any) error {
		got, gotOK = EnvelopeFromContext(ctx)
		return nil
	})

	observed := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	ctx := WithCorrelationID(context.Background(), "corr-42")
	err := publisher.Publish(ctx, conditionRaised{MachineName: "M1", Condition: "CRITICAL", ObservedAt: observed})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !gotOK {
		t.Fatal("handler saw no envelope")
	}
	if got.EventID == "" {
		t.Fatal("envelope missing event id")
	}
	if got.CorrelationID != "corr-42" {
		t.Fatalf("expected correlation id from context, got %q", got.CorrelationID)
	}
	if got.MachineName != "M1" {
		t.Fatalf("expected machine name from payload, got %q", got.MachineName)
	}
	if !got.OccurredAt.Equal(observed) {
		t.Fatalf("expected occurred_at %s, got %s", observed, got.OccurredAt)
	}
}

func TestSubscribeSkipsProcessedEvents(t *testing.T) {
	bus := eventbus.NewInMemoryBus()
	publisher := NewPublisher(bus)
	store := newMemoryProcessed()

	calls := 0
	Subscribe(bus, eventbus.EventTypeOf[conditionRaised](), "test.consumer", func(context.Context, any) error {
		calls++
		return nil
	}, store)

	ctx := WithEventID(context.Background(), "event-1")
	event := conditionRaised{MachineName: "M1", Condition: "WARNING"}
	if err := publisher.Publish(ctx, event); err != nil {
		t.Fatalf("publish: %v", err)
	}
	// Same event id delivered again, e.g. an at-least-once replay.
	if err := publisher.Publish(ctx, event); err != nil {
		t.Fatalf("republish: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected one handler call, got %d", calls)
	}
}

func TestPublishRejectsNilEvent(t *testing.T) {
	publisher := NewPublisher(eventbus.NewInMemoryBus())

	if err := publisher.Publish(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil event")
	}
}
