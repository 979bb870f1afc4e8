// Package session owns the authoritative "who is logged in" state. The
// coordinator reconciles two independent inputs — durable session storage and
// domain events — with a last-writer-wins policy where events take priority.
package session

import (
	"context"
	"reflect"
	"sync"

	"github.com/rs/zerolog"

	"github.com/persome/account-system/internal/api/metrics"
	"github.com/persome/account-system/internal/core/domain"
	"github.com/persome/account-system/internal/core/ports"
	"github.com/persome/account-system/internal/eventbus"
)

// Coordinator is the process-wide single source of truth for the current user
// session. All three session fields (user, role, id) are updated together
// under one lock; no observer can ever see them from different updates.
type Coordinator struct {
	store ports.SessionStore
	bus   *eventbus.Bus
	log   zerolog.Logger

	mu             sync.Mutex
	user           *domain.UserData
	role           domain.Role
	userID         string
	authenticating bool
	initialized    bool
	lastState      domain.SessionState
	watchers       map[chan domain.SessionState]struct{}

	sub    *eventbus.Subscription
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs the coordinator and starts its background subscriptions
// (bus events and the store's is-active signal). Call Initialize before
// trusting any snapshot accessor, and Close at process shutdown.
func New(store ports.SessionStore, bus *eventbus.Bus, log zerolog.Logger) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Coordinator{
		store:     store,
		bus:       bus,
		log:       log.With().Str("component", "session").Logger(),
		role:      domain.RoleNone,
		lastState: domain.NotAuthenticated(),
		watchers:  make(map[chan domain.SessionState]struct{}),
		cancel:    cancel,
	}

	c.sub = bus.Subscribe()
	c.sub.Consume(c.onEvent)

	c.wg.Add(1)
	go c.watchActive(ctx)

	return c
}

// Initialize performs one synchronous load from the session store. Storage or
// parse failures collapse to not-authenticated; they are never returned.
func (c *Coordinator) Initialize(ctx context.Context) {
	c.refreshUserData(ctx)
	c.mu.Lock()
	c.initialized = true
	c.mu.Unlock()
}

// Close stops the background subscriptions and releases all watchers.
func (c *Coordinator) Close() {
	c.cancel()
	c.sub.Close()
	c.wg.Wait()

	c.mu.Lock()
	for ch := range c.watchers {
		close(ch)
	}
	c.watchers = make(map[chan domain.SessionState]struct{})
	c.mu.Unlock()
}

// CurrentRole returns the current role snapshot.
func (c *Coordinator) CurrentRole() domain.Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustBeInitialized()
	return c.role
}

// CurrentUserID returns the current user id, or "" when signed out.
func (c *Coordinator) CurrentUserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustBeInitialized()
	return c.userID
}

// CurrentUser returns the current user snapshot, or nil when signed out.
func (c *Coordinator) CurrentUser() *domain.UserData {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustBeInitialized()
	return c.user
}

// State returns the derived session state, computed from user and role under
// a single lock so the two are never observed from different updates.
func (c *Coordinator) State() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustBeInitialized()
	return c.derive()
}

// Watch returns a stream of session states. The current state is delivered
// first, then every change. Delivery conflates: a slow watcher always sees the
// latest state, possibly skipping intermediates. Call the returned cancel
// func to detach.
func (c *Coordinator) Watch() (<-chan domain.SessionState, func()) {
	ch := make(chan domain.SessionState, 1)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustBeInitialized()
	c.watchers[ch] = struct{}{}
	ch <- c.derive()

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

// HasPermission reports whether the current role is one of required.
// RoleNone never grants access, even against an empty set.
func (c *Coordinator) HasPermission(required ...domain.Role) bool {
	role := c.CurrentRole()
	if role == domain.RoleNone {
		return false
	}
	for _, r := range required {
		if r == role {
			return true
		}
	}
	return false
}

// BeginAuthentication marks a sign-in as in flight; the derived state reports
// Authenticating until the session fields are applied or the flow ends.
func (c *Coordinator) BeginAuthentication() {
	c.mu.Lock()
	c.authenticating = true
	c.publishLocked()
	c.mu.Unlock()
}

// EndAuthentication clears the in-flight sign-in mark without touching the
// session fields (used when a sign-in fails).
func (c *Coordinator) EndAuthentication() {
	c.mu.Lock()
	c.authenticating = false
	c.publishLocked()
	c.mu.Unlock()
}

// ClearSession clears durable storage and resets the in-memory session.
func (c *Coordinator) ClearSession(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.log.Error().Err(err).Msg("failed to clear session store")
	}
	c.apply(nil, domain.RoleNone, "")
}

func (c *Coordinator) mustBeInitialized() {
	if !c.initialized {
		panic("session: coordinator read before Initialize")
	}
}

// onEvent applies bus-driven session updates. Event updates take priority and
// never trigger a storage re-read.
func (c *Coordinator) onEvent(event domain.Event) {
	switch e := event.(type) {
	case domain.UserSignedIn:
		c.apply(&e.User, e.User.Role, e.User.ID)
	case domain.UserProfileUpdated:
		c.apply(&e.User, e.User.Role, e.User.ID)
	case domain.UserSignedOut:
		c.apply(nil, domain.RoleNone, "")
	case domain.UserAvatarUpdated:
		c.patchUser(e.UserID, func(u domain.UserData) domain.UserData {
			return u.WithAvatarURL(e.AvatarURL)
		})
	case domain.UserPreferencesUpdated:
		c.patchUser(e.UserID, func(u domain.UserData) domain.UserData {
			return u.WithPreferences(e.Preferences)
		})
	}
}

// watchActive tracks the store's is-active signal. Deactivation clears the
// session; activation while the cache is still empty triggers a storage
// re-read (cold start before Initialize populated the fields).
func (c *Coordinator) watchActive(ctx context.Context) {
	defer c.wg.Done()
	// Subscribe exactly once: the store hands out a fresh watcher channel per
	// call, so re-calling WatchActive inside the loop would leak watchers and
	// drop flips notified between iterations.
	signal := c.store.WatchActive()
	for {
		select {
		case <-ctx.Done():
			return
		case active, ok := <-signal:
			if !ok {
				return
			}
			if !active {
				c.apply(nil, domain.RoleNone, "")
				continue
			}
			c.mu.Lock()
			stale := c.role == domain.RoleNone || c.userID == ""
			c.mu.Unlock()
			if stale {
				c.refreshUserData(ctx)
			}
		}
	}
}

// refreshUserData reloads the session snapshot from durable storage. Any
// failure — read error, absent data, corrupt blob — resets the session to
// empty; nothing is surfaced to callers.
func (c *Coordinator) refreshUserData(ctx context.Context) {
	raw, err := c.store.GetSessionJSON(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("session store read failed")
		metrics.SessionRefreshFailuresTotal.Inc()
		c.apply(nil, domain.RoleNone, "")
		return
	}
	if raw == "" {
		c.log.Debug().Msg("no session data found")
		c.apply(nil, domain.RoleNone, "")
		return
	}

	blob, err := domain.ParseSessionBlob(raw)
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to parse stored session")
		metrics.SessionRefreshFailuresTotal.Inc()
		c.apply(nil, domain.RoleNone, "")
		return
	}

	user := blob.User
	c.apply(&user, user.Role, user.ID)
	c.log.Debug().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("session refreshed from storage")
}

// apply replaces all three session fields as one atomic group and republishes
// the derived state if it changed. A successful apply also ends any in-flight
// authentication mark.
func (c *Coordinator) apply(user *domain.UserData, role domain.Role, userID string) {
	c.mu.Lock()
	c.user = user
	c.role = role
	c.userID = userID
	c.authenticating = false
	c.publishLocked()
	c.mu.Unlock()
}

// patchUser rewrites the cached user snapshot via a copy-with-override when
// the event targets the current user.
func (c *Coordinator) patchUser(userID string, patch func(domain.UserData) domain.UserData) {
	c.mu.Lock()
	if c.user == nil || c.userID != userID {
		c.mu.Unlock()
		return
	}
	updated := patch(*c.user)
	c.user = &updated
	c.publishLocked()
	c.mu.Unlock()
}

// derive computes the session state from the fields under c.mu.
func (c *Coordinator) derive() domain.SessionState {
	switch {
	case c.user != nil && c.role != domain.RoleNone:
		return domain.Authenticated(*c.user)
	case c.authenticating:
		return domain.Authenticating()
	case c.role == domain.RoleNone:
		return domain.NotAuthenticated()
	default:
		return domain.Loading()
	}
}

// publishLocked fans the derived state out to watchers when it changed.
// Callers must hold c.mu. Sends conflate: a full watcher buffer is drained of
// its stale state before the fresh one goes in.
func (c *Coordinator) publishLocked() {
	state := c.derive()
	if statesEqual(state, c.lastState) {
		return
	}
	old := c.lastState
	c.lastState = state
	metrics.SessionTransitionsTotal.WithLabelValues(string(state.Phase)).Inc()
	c.log.Info().Stringer("from", old).Stringer("to", state).Msg("session state changed")

	for ch := range c.watchers {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
}

// statesEqual compares states structurally; user snapshots may differ in any
// field (avatar, preferences), so a deep comparison is required.
func statesEqual(a, b domain.SessionState) bool {
	return a.Phase == b.Phase && reflect.DeepEqual(a.User, b.User)
}
