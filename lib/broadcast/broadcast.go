package broadcast

import (
	"sync"
	"sync/atomic"

	"github.com/nbd-wtf/go-nostr"
)

// DefaultCapacity is the per-subscriber buffer size.
const DefaultCapacity = 4096

// Subscriber is one consumer of the bus. Events arrive on C in
// publication order; when the buffer overflows, newer events are dropped
// for this subscriber and the drop count accumulates until the consumer
// collects it with Skipped. C is closed when the bus shuts down.
type Subscriber struct {
	C chan *nostr.Event

	skipped atomic.Int64
}

// Skipped returns the number of events dropped for this subscriber since
// the last call, resetting the counter.
func (s *Subscriber) Skipped() int64 {
	return s.skipped.Swap(0)
}

// Bus is the process-wide event fan-out channel. Every accepted event is
// published once; every live subscriber receives it unless it lags past
// its buffer capacity.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[*Subscriber]struct{}
	capacity    int
	closed      bool
}

// New creates a bus with the given per-subscriber capacity; values <= 0
// use DefaultCapacity.
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{
		subscribers: make(map[*Subscriber]struct{}),
		capacity:    capacity,
	}
}

// Subscribe registers a new consumer. Subscribing on a closed bus
// returns a subscriber whose channel is already closed.
func (b *Bus) Subscribe() *Subscriber {
	sub := &Subscriber{C: make(chan *nostr.Event, b.capacity)}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(sub.C)
		return sub
	}
	b.subscribers[sub] = struct{}{}

	return sub
}

// Unsubscribe removes a consumer. Its channel is left open so a
// concurrent receive never observes a spurious close; buffered events
// are simply abandoned.
func (b *Bus) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	delete(b.subscribers, sub)
	b.mu.Unlock()
}

// Publish delivers the event to every subscriber. A subscriber whose
// buffer is full has the event dropped and its skip counter incremented;
// publishing never blocks on a slow consumer.
func (b *Bus) Publish(event *nostr.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for sub := range b.subscribers {
		select {
		case sub.C <- event:
		default:
			sub.skipped.Add(1)
		}
	}
}

// Close shuts the bus down: every subscriber channel is closed after its
// buffered events drain, and further publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for sub := range b.subscribers {
		close(sub.C)
		delete(b.subscribers, sub)
	}
}
