// Package telemetry provides the publish-only lifecycle event channel.
//
// Contract:
//   - Emit never blocks on or fails because of a subscriber.
//   - A panicking subscriber is isolated from the caller and from its peers.
//   - Event data must be safe to serialize to JSON.
package telemetry

import (
	"log/slog"
	"sync"
	"time"
)

// Event is one lifecycle signal. Names are stable; data fields are additive.
type Event struct {
	Name string    `json:"event"`
	Time time.Time `json:"time"`
	Data any       `json:"data,omitempty"`
}

// Subscriber receives every emitted event.
type Subscriber func(Event)

// Emitter fans events out to registered subscribers. A disabled emitter
// accepts subscriptions but drops every event.
type Emitter struct {
	log     *slog.Logger
	enabled bool

	mu   sync.RWMutex
	subs map[uint64]Subscriber
	seq  uint64
}

// NewEmitter creates an emitter. When enabled is false Emit is a no-op.
func NewEmitter(enabled bool, log *slog.Logger) *Emitter {
	return &Emitter{
		log:     log,
		enabled: enabled,
		subs:    map[uint64]Subscriber{},
	}
}

// Enabled reports whether events are being delivered.
func (e *Emitter) Enabled() bool { return e.enabled }

// Subscribe registers a callback and returns its unsubscribe function.
func (e *Emitter) Subscribe(fn Subscriber) (unsubscribe func()) {
	e.mu.Lock()
	e.seq++
	id := e.seq
	e.subs[id] = fn
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
		})
	}
}

// Emit delivers the event to every subscriber in turn. Subscriber panics are
// recovered and logged so one bad listener never affects the rest.
func (e *Emitter) Emit(name string, data any) {
	if !e.enabled {
		return
	}
	ev := Event{Name: name, Time: time.Now().UTC(), Data: data}

	e.mu.RLock()
	subs := make([]Subscriber, 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.mu.RUnlock()

	for _, fn := range subs {
		e.deliver(fn, ev)
	}
}

func (e *Emitter) deliver(fn Subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("telemetry subscriber panicked", slog.String("event", ev.Name), slog.Any("panic", r))
		}
	}()
	fn(ev)
}
