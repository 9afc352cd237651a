package broadcast

import (
	"context"
	"sync"
)

// DefaultBufferSize is the per-subscriber buffer capacity.
const DefaultBufferSize = 64

// Bus is the process-wide event broadcaster.
//
// Thread-safety model:
//   - Publish(): safe from any goroutine
//   - Subscribe(): safe from any goroutine
//   - each Subscriber is consumed by its own observer
//
// The bus retains the most recent ConnectivityChanged event. Subscribe
// seeds the new subscriber with it inside the registration critical
// section, so there is no window in which a subscriber could miss a mode
// change without first having seen the mode it replaced.
type Bus struct {
	mu       sync.Mutex
	subs     map[*Subscriber]struct{}
	retained *ConnectivityChanged
	buffer   int
}

// New creates a Bus with the default per-subscriber buffer size.
func New() *Bus {
	return NewWithBuffer(DefaultBufferSize)
}

// NewWithBuffer creates a Bus with an explicit per-subscriber buffer size.
// Sizes below 1 are raised to 1.
func NewWithBuffer(size int) *Bus {
	if size < 1 {
		size = 1
	}
	return &Bus{
		subs:   make(map[*Subscriber]struct{}),
		buffer: size,
	}
}

// Publish delivers ev to every active subscriber in registration-time
// order for that subscriber. Never blocks: full subscriber buffers drop
// their oldest event instead.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cc, ok := ev.(ConnectivityChanged); ok {
		b.retained = &cc
	}

	for sub := range b.subs {
		sub.push(ev)
	}
}

// Subscribe registers a new observer. If a connectivity mode has ever
// been published, the subscriber's first event is a synthetic
// ConnectivityChanged carrying the current mode.
//
// The caller must Close the subscriber when done.
func (b *Bus) Subscribe() *Subscriber {
	sub := newSubscriber(b, b.buffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.retained != nil {
		sub.push(*b.retained)
	}
	b.subs[sub] = struct{}{}
	return sub
}

// unsubscribe removes sub from the active set. Called via Subscriber.Close.
func (b *Bus) unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, sub)
}

// Subscriber is one observer's bounded, order-preserving event buffer.
//
// The buffer holds at most cap events. When full, the oldest event is
// dropped to make room; Dropped() reports how many were lost. Delivered
// events always arrive in publish order.
type Subscriber struct {
	bus *Bus

	mu      sync.Mutex
	events  []Event
	cap     int
	dropped int
	closed  bool
	signal  chan struct{} // coalesced availability signal (buffered, size 1)
}

func newSubscriber(bus *Bus, capacity int) *Subscriber {
	return &Subscriber{
		bus:    bus,
		events: make([]Event, 0, capacity),
		cap:    capacity,
		signal: make(chan struct{}, 1),
	}
}

// push appends ev, dropping the oldest buffered event when full.
// Never blocks; called with the bus lock held.
func (s *Subscriber) push(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if len(s.events) >= s.cap {
		copy(s.events, s.events[1:])
		s.events = s.events[:len(s.events)-1]
		s.dropped++
	}
	s.events = append(s.events, ev)

	// Coalesce signals: a full buffer of 1 means "something is available".
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Next blocks until an event is available, the subscriber is closed, or
// the context is cancelled. Returns (nil, false) once the subscriber is
// closed and drained.
func (s *Subscriber) Next(ctx context.Context) (Event, bool) {
	for {
		if ev, ok := s.TryNext(); ok {
			return ev, true
		}

		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return nil, false
		}

		select {
		case <-ctx.Done():
			return nil, false
		case <-s.signal:
		}
	}
}

// TryNext returns the next buffered event without blocking.
func (s *Subscriber) TryNext() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.events) == 0 {
		return nil, false
	}

	ev := s.events[0]
	s.events[0] = nil // release for GC
	if len(s.events) == 1 {
		s.events = s.events[:0]
	} else {
		s.events = s.events[1:]
	}
	return ev, true
}

// Dropped returns how many events were discarded because the buffer was
// full.
func (s *Subscriber) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close detaches the subscriber from the bus and wakes any blocked Next.
// Safe to call more than once.
func (s *Subscriber) Close() {
	s.bus.unsubscribe(s)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.signal)
}
