// Package eventbus implements the process-wide broadcast bus for domain
// events. Delivery is fan-out, at-most-once and best-effort: each subscriber
// owns a bounded buffer and, on overflow, the oldest buffered event is
// discarded, never the newest. Consumers that cannot afford to miss an event
// re-derive truth from durable storage instead of relying on the bus.
package eventbus

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/persome/account-system/internal/api/metrics"
	"github.com/persome/account-system/internal/core/domain"
)

// subscriberBuffer is the per-subscriber ring capacity. Events beyond this
// push out the oldest pending event for that subscriber only.
const subscriberBuffer = 64

// Bus is a bounded multi-subscriber broadcast channel for domain events.
// Construct with New and inject explicitly; the bus is not a package global.
type Bus struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
	log    zerolog.Logger
}

// New creates an empty bus. Lifetime is the process: call Close on shutdown.
func New(log zerolog.Logger) *Bus {
	return &Bus{
		subs: make(map[*Subscription]struct{}),
		log:  log.With().Str("component", "eventbus").Logger(),
	}
}

// Publish enqueues the event for every current subscriber. It never blocks on
// slow subscribers and never fails the caller; publishing to a closed bus is
// a silent no-op.
func (b *Bus) Publish(event domain.Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	subs := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	metrics.BusEventsPublishedTotal.WithLabelValues(event.Kind()).Inc()
	for _, s := range subs {
		s.enqueue(event)
	}
}

// Subscribe returns a live subscription. Only events published after the call
// are delivered (replay depth is zero); each subscriber observes events in
// publish order. Callers must Close the subscription when done.
func (b *Bus) Subscribe() *Subscription {
	s := &Subscription{
		bus:  b,
		wake: make(chan struct{}, 1),
		out:  make(chan domain.Event),
		done: make(chan struct{}),
		log:  b.log,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		// deliver never runs for this subscription, so close out here or
		// Events receivers would block forever.
		close(s.out)
		s.Close()
		return s
	}
	b.subs[s] = struct{}{}
	n := len(b.subs)
	b.mu.Unlock()

	metrics.BusSubscribers.Set(float64(n))
	go s.deliver()
	return s
}

// Close tears down the bus and all live subscriptions.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	delete(b.subs, s)
	n := len(b.subs)
	b.mu.Unlock()
	metrics.BusSubscribers.Set(float64(n))
}

// Subscription is one subscriber's live view of the bus.
type Subscription struct {
	bus *Bus
	log zerolog.Logger

	mu   sync.Mutex
	ring []domain.Event

	wake      chan struct{}
	out       chan domain.Event
	done      chan struct{}
	closeOnce sync.Once
}

// Events is the subscriber's ordered event stream. The channel is closed when
// the subscription is closed.
func (s *Subscription) Events() <-chan domain.Event {
	return s.out
}

// Close detaches the subscription from the bus and closes the event stream.
// Safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.bus.remove(s)
	})
}

// enqueue appends the event to the ring, discarding the oldest pending event
// when the ring is full. Never blocks.
func (s *Subscription) enqueue(event domain.Event) {
	s.mu.Lock()
	if len(s.ring) >= subscriberBuffer {
		dropped := s.ring[0]
		copy(s.ring, s.ring[1:])
		s.ring = s.ring[:len(s.ring)-1]
		metrics.BusEventsDroppedTotal.WithLabelValues(dropped.Kind()).Inc()
	}
	s.ring = append(s.ring, event)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// deliver drains the ring into the out channel, preserving enqueue order.
func (s *Subscription) deliver() {
	defer close(s.out)
	for {
		event, ok := s.next()
		if !ok {
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		select {
		case s.out <- event:
		case <-s.done:
			return
		}
	}
}

func (s *Subscription) next() (domain.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ring) == 0 {
		return nil, false
	}
	event := s.ring[0]
	copy(s.ring, s.ring[1:])
	s.ring = s.ring[:len(s.ring)-1]
	return event, true
}

// Consume drains the subscription on its own goroutine, invoking handler for
// each event. A panic or misbehaviour inside handler is confined to that one
// event: it is logged and the loop keeps running, so one broken subscriber
// can never take down the bus or its peers.
func (s *Subscription) Consume(handler func(domain.Event)) {
	go func() {
		for event := range s.out {
			s.handleOne(event, handler)
		}
	}()
}

func (s *Subscription) handleOne(event domain.Event, handler func(domain.Event)) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Interface("panic", r).
				Str("event", event.Kind()).
				Msg("subscriber panicked while processing event")
		}
	}()
	handler(event)
}
