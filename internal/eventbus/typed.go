package eventbus

import (
	"github.com/persome/account-system/internal/core/domain"
)

// TypedSubscription is a filtered view over a Subscription yielding only
// events of one variant.
type TypedSubscription[T domain.Event] struct {
	sub *Subscription
	out chan T
}

// SubscribeTo subscribes to a single event variant. Events of other variants
// are skipped without consuming buffer slots in the typed view.
func SubscribeTo[T domain.Event](b *Bus) *TypedSubscription[T] {
	t := &TypedSubscription[T]{
		sub: b.Subscribe(),
		out: make(chan T),
	}
	go t.filter()
	return t
}

func (t *TypedSubscription[T]) filter() {
	defer close(t.out)
	for event := range t.sub.Events() {
		if typed, ok := event.(T); ok {
			select {
			case t.out <- typed:
			case <-t.sub.done:
				return
			}
		}
	}
}

// Events is the filtered event stream, closed when the subscription closes.
func (t *TypedSubscription[T]) Events() <-chan T {
	return t.out
}

// Consume drains the filtered stream on its own goroutine with the same
// panic isolation as Subscription.Consume.
func (t *TypedSubscription[T]) Consume(handler func(T)) {
	go func() {
		for event := range t.out {
			t.sub.handleOne(event, func(e domain.Event) {
				handler(e.(T))
			})
		}
	}()
}

// Close detaches the underlying subscription.
func (t *TypedSubscription[T]) Close() {
	t.sub.Close()
}
