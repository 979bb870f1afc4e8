package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/persome/account-system/internal/core/domain"
	"github.com/persome/account-system/internal/core/ports"
	"github.com/persome/account-system/internal/core/session"
	"github.com/persome/account-system/internal/core/state"
	"github.com/persome/account-system/internal/eventbus"
)

type memStore struct {
	mu    sync.Mutex
	raw   string
	watch chan bool
}

func newMemStore() *memStore {
	return &memStore{watch: make(chan bool, 8)}
}

func (s *memStore) GetSessionJSON(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw, nil
}

func (s *memStore) SaveSessionJSON(_ context.Context, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = raw
	return nil
}

func (s *memStore) SetActive(_ context.Context, active bool) error {
	s.watch <- active
	return nil
}

func (s *memStore) IsActive(context.Context) (bool, error) { return false, nil }
func (s *memStore) WatchActive() <-chan bool               { return s.watch }

func (s *memStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = ""
	return nil
}

type stubAuth struct {
	signInFn func(ctx context.Context, identifier, password string) (ports.SignInResult, error)
}

func (s *stubAuth) Register(context.Context, ports.RegisterInput) (domain.UserData, error) {
	return domain.UserData{}, nil
}

func (s *stubAuth) SignIn(ctx context.Context, identifier, password string) (ports.SignInResult, error) {
	return s.signInFn(ctx, identifier, password)
}

func (s *stubAuth) SignOut(context.Context, string, string) error { return nil }

func (s *stubAuth) RefreshTokens(context.Context, string) (ports.SignInResult, error) {
	return ports.SignInResult{}, nil
}

func newTestCoordinator(t *testing.T) *session.Coordinator {
	t.Helper()
	bus := eventbus.New(zerolog.Nop())
	coord := session.New(newMemStore(), bus, zerolog.Nop())
	coord.Initialize(context.Background())
	t.Cleanup(func() {
		coord.Close()
		bus.Close()
	})
	return coord
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatalf("timed out: %s", msg)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSignInController_FieldEdits(t *testing.T) {
	c := NewSignInController(&stubAuth{}, newTestCoordinator(t), zerolog.Nop())
	defer c.Dispose()

	c.Dispatch(UpdateIdentifier{Value: "alice"})
	c.Dispatch(UpdatePassword{Value: "s3cret"})

	s := c.State()
	if s.Identifier != "alice" || s.Password != "s3cret" {
		t.Fatalf("fields not applied: %+v", s)
	}
}

func TestSignInController_SubmitValidatesEmptyFields(t *testing.T) {
	auth := &stubAuth{
		signInFn: func(context.Context, string, string) (ports.SignInResult, error) {
			t.Fatalf("service must not be called with invalid form")
			return ports.SignInResult{}, nil
		},
	}
	c := NewSignInController(auth, newTestCoordinator(t), zerolog.Nop())
	defer c.Dispose()

	c.Dispatch(SubmitSignIn{})

	s := c.State()
	if s.FieldErrors["identifier"] == "" || s.FieldErrors["password"] == "" {
		t.Fatalf("expected field errors, got %+v", s.FieldErrors)
	}
	if s.Submitting {
		t.Fatalf("invalid form must not start submitting")
	}
}

func TestSignInController_EditClearsItsFieldError(t *testing.T) {
	c := NewSignInController(&stubAuth{}, newTestCoordinator(t), zerolog.Nop())
	defer c.Dispose()

	c.Dispatch(SubmitSignIn{})
	c.Dispatch(UpdateIdentifier{Value: "alice"})

	s := c.State()
	if _, ok := s.FieldErrors["identifier"]; ok {
		t.Fatalf("identifier error should clear on edit: %+v", s.FieldErrors)
	}
	if _, ok := s.FieldErrors["password"]; !ok {
		t.Fatalf("password error should survive: %+v", s.FieldErrors)
	}
}

func TestSignInController_SubmitSuccess(t *testing.T) {
	user := domain.UserData{ID: "u1", Username: "alice", Role: domain.RoleClient}
	auth := &stubAuth{
		signInFn: func(_ context.Context, identifier, password string) (ports.SignInResult, error) {
			if identifier != "alice" || password != "s3cret" {
				t.Errorf("unexpected credentials: %s %s", identifier, password)
			}
			return ports.SignInResult{User: user, IsFirstTime: true}, nil
		},
	}
	coord := newTestCoordinator(t)
	c := NewSignInController(auth, coord, zerolog.Nop())
	defer c.Dispose()

	c.Dispatch(UpdateIdentifier{Value: "alice"})
	c.Dispatch(UpdatePassword{Value: "s3cret"})
	c.Dispatch(SubmitSignIn{})

	waitFor(t, func() bool { return c.State().SignedIn }, "state never reached signed-in")

	s := c.State()
	if s.Submitting {
		t.Fatalf("submitting flag not cleared")
	}
	if s.Password != "" {
		t.Fatalf("password must be wiped after a successful submit")
	}

	var succeeded bool
	deadline := time.After(2 * time.Second)
	for !succeeded {
		select {
		case event := <-c.Events():
			if e, ok := event.(SignInSucceeded); ok {
				if !e.IsFirstTime {
					t.Fatalf("first-time flag lost")
				}
				succeeded = true
			}
		case <-deadline:
			t.Fatalf("SignInSucceeded never emitted")
		}
	}
}

func TestSignInController_SubmitFailure(t *testing.T) {
	auth := &stubAuth{
		signInFn: func(context.Context, string, string) (ports.SignInResult, error) {
			return ports.SignInResult{}, domain.ErrInvalidCredentials
		},
	}
	coord := newTestCoordinator(t)
	c := NewSignInController(auth, coord, zerolog.Nop())
	defer c.Dispose()

	c.Dispatch(UpdateIdentifier{Value: "alice"})
	c.Dispatch(UpdatePassword{Value: "wrong"})
	c.Dispatch(SubmitSignIn{})

	waitFor(t, func() bool { return !c.State().Submitting }, "submitting flag never cleared")

	if c.State().SignedIn {
		t.Fatalf("failed submit must not mark signed in")
	}
	// A failed sign-in ends the authenticating phase.
	waitFor(t, func() bool {
		return coord.State().Phase == domain.PhaseNotAuthenticated
	}, "coordinator stuck in authenticating")

	select {
	case event := <-c.Events():
		sb, ok := event.(state.Snackbar)
		if !ok || !sb.IsError {
			t.Fatalf("expected error snackbar, got %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatalf("error snackbar never emitted")
	}
}

// Two rapid submits resolve to the last one: the first call is cancelled and
// stays silent, only the second emits an outcome.
func TestSignInController_DoubleSubmitLastWins(t *testing.T) {
	firstIn := make(chan struct{})
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex

	auth := &stubAuth{
		signInFn: func(ctx context.Context, _, password string) (ports.SignInResult, error) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n == 1 {
				close(firstIn)
				<-release
				// By now this call's context is cancelled.
				return ports.SignInResult{User: domain.UserData{ID: "stale"}}, nil
			}
			return ports.SignInResult{User: domain.UserData{ID: "fresh"}, IsFirstTime: false}, nil
		},
	}
	c := NewSignInController(auth, newTestCoordinator(t), zerolog.Nop())
	defer c.Dispose()

	c.Dispatch(UpdateIdentifier{Value: "alice"})
	c.Dispatch(UpdatePassword{Value: "first"})
	c.Dispatch(SubmitSignIn{})
	<-firstIn

	c.Dispatch(UpdatePassword{Value: "second"})
	c.Dispatch(SubmitSignIn{})
	close(release)

	waitFor(t, func() bool { return c.State().SignedIn }, "winning submit never completed")

	events := make([]any, 0, 4)
	timeout := time.After(200 * time.Millisecond)
collect:
	for {
		select {
		case event := <-c.Events():
			events = append(events, event)
		case <-timeout:
			break collect
		}
	}

	var succeeded int
	for _, event := range events {
		if _, ok := event.(SignInSucceeded); ok {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one SignInSucceeded, got %d (%v)", succeeded, events)
	}
}

func TestSignInController_UnhandledActionPanics(t *testing.T) {
	c := NewSignInController(&stubAuth{}, newTestCoordinator(t), zerolog.Nop())
	defer c.Dispose()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unhandled action")
		}
	}()
	c.Dispatch(nil)
}
