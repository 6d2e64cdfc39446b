package service

import (
	"context"
	"sync"

	"github.com/spec-kit/bistro-service/internal/events"
)

type capturingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *capturingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

type fakeGateway struct {
	secret string
	err    error
}

func (g *fakeGateway) CreateIntent(context.Context, float64, string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.secret, nil
}
