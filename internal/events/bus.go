package events

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/tendwell/internal/logger"
)

// Handler receives published events. Handlers run synchronously on the
// publishing goroutine and must not publish on the same bus.
type Handler func(Event)

// Publisher is the side of a Bus the engine components depend on.
type Publisher interface {
	Publish(e Event)
}

// Bus fans events out to every subscribed handler in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	log      *log.Logger
}

func NewBus() *Bus {
	return &Bus{log: logger.Component("events")}
}

// Subscribe registers h and returns a function that removes it again.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers = append(b.handlers, h)
	idx := len(b.handlers) - 1
	b.log.Debug("Registered event handler", "handler_count", len(b.handlers))

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.handlers[idx] = nil
		})
	}
}

// Publish delivers e to the current handlers. It never fails; a bus without
// subscribers drops the event.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		if h != nil {
			handlers = append(handlers, h)
		}
	}
	b.mu.RUnlock()

	b.log.Debug("Publishing event", "type", e.Type(), "handler_count", len(handlers))
	for _, h := range handlers {
		h(e)
	}
}

// Recorder collects events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Handle lets a Recorder be subscribed to a Bus.
func (r *Recorder) Handle(e Event) { r.Publish(e) }

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events of type t.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Discard drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}
