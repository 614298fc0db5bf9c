package eventing

import (
	"context"

	"machinehealth-cloud/internal/eventing/eventbus"
)

// Publisher wraps every event in an envelope before it reaches the bus.
// Handlers read the envelope from context for idempotency checks.
type Publisher struct {
	bus eventbus.EventBus
}

// NewPublisher constructs a publisher.
func NewPublisher(bus eventbus.EventBus) *Publisher {
	return &Publisher{bus: bus}
}

// Publish builds an envelope and dispatches the event.
func (p *Publisher) Publish(ctx context.Context, event any) error {
	if p == nil || p.bus == nil {
		return nil
	}
	meta := MetaFromContext(ctx)
	env, err := BuildEnvelope(event, meta)
	if err != nil {
		return err
	}
	return p.bus.Publish(WithEnvelope(ctx, env), event)
}

// Subscribe delegates to the underlying bus.
func (p *Publisher) Subscribe(eventType string, handler eventbus.EventHandler) {
	if p == nil || p.bus == nil {
		return
	}
	p.bus.Subscribe(eventType, handler)
}
