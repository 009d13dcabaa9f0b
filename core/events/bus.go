package events

import "sync"

// Event is any notification published on the bus.
type Event interface{}

// EventBus is a minimal publish/subscribe surface for run notifications.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus fans events out to subscriber channels. Delivery is non-blocking: a
// slow subscriber drops events rather than stalling the scheduler.
type Bus struct {
	mu     sync.RWMutex
	subs   []chan Event
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus { return &Bus{} }

// Publish sends the event to all subscribers.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns its channel.
func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, 8)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Close closes all subscriber channels and clears the list.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
	b.mu.Unlock()
}

// NopBus discards everything. Useful when callers do not care about run
// notifications.
type NopBus struct{}

func (NopBus) Publish(Event)            {}
func (NopBus) Subscribe() <-chan Event  { ch := make(chan Event); close(ch); return ch }
func (NopBus) Unsubscribe(<-chan Event) {}
func (NopBus) Close()                   {}

var _ EventBus = (*Bus)(nil)
var _ EventBus = NopBus{}
