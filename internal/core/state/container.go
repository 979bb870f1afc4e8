// Package state provides the generic screen-controller base: one immutable
// state value mutated only through reducers, a one-shot side-effect event
// stream, and a cancellable scope for the controller's async work. Every
// controller is built on exactly one Container.
package state

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// eventBuffer bounds the one-shot event channel. UI effects are transient;
	// an unread backlog this deep means nobody is listening.
	eventBuffer = 16
	// transitionLogLimit bounds the diagnostic transition log (drop-oldest).
	transitionLogLimit = 100
)

// Transition records one accepted state change for diagnostics and replay.
type Transition[S any] struct {
	Old S
	New S
	At  time.Time
}

// Container holds one immutable state value and serializes every mutation.
// S is the controller's state type; compare semantics are structural
// (reflect.DeepEqual), so S may carry slices and maps.
type Container[S any] struct {
	name string
	log  zerolog.Logger

	mu          sync.Mutex
	state       S
	disposed    bool
	watchers    map[chan S]struct{}
	transitions []Transition[S]
	events      chan any
	jobs        map[string]context.CancelFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewContainer creates an active container holding initial. name labels log
// lines and has no other meaning.
func NewContainer[S any](name string, initial S, log zerolog.Logger) *Container[S] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Container[S]{
		name:     name,
		log:      log.With().Str("controller", name).Logger(),
		state:    initial,
		watchers: make(map[chan S]struct{}),
		events:   make(chan any, eventBuffer),
		jobs:     make(map[string]context.CancelFunc),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// State returns the current state snapshot.
func (c *Container[S]) State() S {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Watch returns a stream of state values: the current one first, then every
// accepted transition. Delivery conflates so a slow watcher always sees the
// latest state. Call the returned cancel func to detach.
func (c *Container[S]) Watch() (<-chan S, func()) {
	ch := make(chan S, 1)

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.watchers[ch] = struct{}{}
	ch <- c.state
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.watchers[ch]; ok {
			delete(c.watchers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

// SetState applies reducer to the current state. When the result is
// structurally equal to the current state nothing is published and nothing is
// logged — no-op transitions are intentional idempotence. Accepted
// transitions are appended to the diagnostic log before being published.
func (c *Container[S]) SetState(reducer func(S) S) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}

	old := c.state
	next := reducer(old)
	if reflect.DeepEqual(old, next) {
		return
	}

	c.state = next
	c.transitions = append(c.transitions, Transition[S]{Old: old, New: next, At: time.Now()})
	if len(c.transitions) > transitionLogLimit {
		c.transitions = c.transitions[len(c.transitions)-transitionLogLimit:]
	}
	c.log.Debug().Interface("from", old).Interface("to", next).Msg("state transition")

	for ch := range c.watchers {
		select {
		case ch <- next:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- next
		}
	}
}

// Transitions returns a copy of the recorded transition log.
func (c *Container[S]) Transitions() []Transition[S] {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Transition[S], len(c.transitions))
	copy(out, c.transitions)
	return out
}

// Events is the one-shot side-effect stream. Each event is consumed exactly
// once by exactly one receiver; this is not a broadcast. The channel closes
// on Dispose.
func (c *Container[S]) Events() <-chan any {
	return c.events
}

// EmitEvent queues a one-shot event. Never blocks: when the buffer is full
// the event is dropped with a warning, since a UI effect nobody consumes in
// time is already lost.
func (c *Container[S]) EmitEvent(event any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	select {
	case c.events <- event:
	default:
		c.log.Warn().Interface("event", event).Msg("one-shot event dropped, buffer full")
	}
}

// LaunchSafely runs fn under the container's scope. An error or panic
// escaping fn is logged and swallowed; the container stays usable. fn must
// honor ctx and stop emitting once it is cancelled.
func (c *Container[S]) LaunchSafely(name string, fn func(ctx context.Context) error) {
	c.launch(name, fn, false)
}

// LaunchReplacing behaves like LaunchSafely but first cancels a still-running
// launch with the same name: rapid repeated submits resolve to the last one.
func (c *Container[S]) LaunchReplacing(name string, fn func(ctx context.Context) error) {
	c.launch(name, fn, true)
}

func (c *Container[S]) launch(name string, fn func(ctx context.Context) error, replace bool) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	if replace {
		if cancelPrev, ok := c.jobs[name]; ok {
			cancelPrev()
		}
	}
	jobCtx, jobCancel := context.WithCancel(c.ctx)
	c.jobs[name] = jobCancel
	// Register with the wait group before releasing the lock, or a concurrent
	// Dispose could pass wg.Wait while this job is still starting.
	c.wg.Add(1)
	c.mu.Unlock()
	go func() {
		defer c.wg.Done()
		defer jobCancel()
		defer func() {
			c.mu.Lock()
			if cur, ok := c.jobs[name]; ok && isSameCancel(cur, jobCancel) {
				delete(c.jobs, name)
			}
			c.mu.Unlock()
		}()
		defer func() {
			if r := recover(); r != nil {
				c.log.Error().Interface("panic", r).Str("op", name).Msg("panic in controller operation")
			}
		}()

		if err := fn(jobCtx); err != nil && jobCtx.Err() == nil {
			c.log.Error().Err(err).Str("op", name).Msg("controller operation failed")
		}
	}()
}

// Dispose transitions the container to its terminal phase: the scope is
// cancelled, in-flight work is awaited, and no further state or events are
// emitted. One-way; safe to call more than once.
func (c *Container[S]) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	for ch := range c.watchers {
		close(ch)
	}
	c.watchers = make(map[chan S]struct{})
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()

	c.mu.Lock()
	close(c.events)
	c.mu.Unlock()
}

// Disposed reports whether Dispose has run.
func (c *Container[S]) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// isSameCancel compares cancel funcs by identity.
func isSameCancel(a, b context.CancelFunc) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
