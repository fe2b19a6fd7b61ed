package plan

import (
	"fmt"

	"github.com/makemyfuture/planner/core"
)

// Event is a confirmed selection change fanned out to every UI surface.
// Origin names the surface that requested the change; the broadcaster never
// echoes an event back to its origin.
type Event struct {
	Code     string `json:"code"`
	Selected bool   `json:"selected"`
	Origin   string `json:"origin"`
}

// Handler consumes confirmed selection-change events. Handlers must not
// depend on another handler's side effects within the same publish cycle.
type Handler func(Event)

// Broadcaster is the single in-process pub/sub channel between the selection
// set and the UI surfaces. Fan-out is synchronous: by the time a toggle call
// returns, every subscriber has observed the change. A panicking handler is
// logged and skipped; the remaining handlers still run.
type Broadcaster struct {
	logger    core.Logger
	observers []observer
	order     []string
	handlers  map[string]Handler
}

// observer is a model-layer consumer (the plan, analytics). Observers are
// not surfaces: origin suppression never applies to them, so no caller can
// detach the plan from the selection set by picking a colliding origin id.
type observer struct {
	id      string
	handler Handler
}

func NewBroadcaster(logger core.Logger) *Broadcaster {
	return &Broadcaster{
		logger:   logger,
		handlers: make(map[string]Handler),
	}
}

// Subscribe registers handler under surfaceID. Re-subscribing an existing id
// replaces its handler but keeps its position in the delivery order.
func (b *Broadcaster) Subscribe(surfaceID string, handler Handler) {
	if _, ok := b.handlers[surfaceID]; !ok {
		b.order = append(b.order, surfaceID)
	}
	b.handlers[surfaceID] = handler
}

func (b *Broadcaster) Unsubscribe(surfaceID string) {
	if _, ok := b.handlers[surfaceID]; !ok {
		return
	}
	delete(b.handlers, surfaceID)
	for i, id := range b.order {
		if id == surfaceID {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// observe registers a model-layer handler that receives every event
// regardless of origin, ahead of the surface fan-out.
func (b *Broadcaster) observe(id string, handler Handler) {
	b.observers = append(b.observers, observer{id: id, handler: handler})
}

// publish delivers evt to every observer, then fans it out to every
// subscriber except its origin, in subscription order. Only the selection
// set calls this, once per successful toggle.
func (b *Broadcaster) publish(evt Event) {
	for _, obs := range b.observers {
		b.dispatch(obs.id, obs.handler, evt)
	}

	// snapshot so a handler unsubscribing mid-cycle cannot skip a sibling
	order := make([]string, len(b.order))
	copy(order, b.order)
	for _, id := range order {
		if id == evt.Origin {
			continue
		}
		if handler, ok := b.handlers[id]; ok {
			b.dispatch(id, handler, evt)
		}
	}
}

func (b *Broadcaster) dispatch(id string, handler Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			if b.logger != nil {
				b.logger.Error(fmt.Sprintf("selection handler %q panicked: %v", id, r))
			}
		}
	}()
	handler(evt)
}
