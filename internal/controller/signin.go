// Package controller contains the screen-level controllers. Each controller
// owns exactly one state container, accepts actions through Dispatch, and
// communicates side effects through the container's one-shot event stream.
package controller

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/persome/account-system/internal/core/ports"
	"github.com/persome/account-system/internal/core/session"
	"github.com/persome/account-system/internal/core/state"
)

// SignInState is the sign-in screen's immutable state.
type SignInState struct {
	Identifier  string
	Password    string
	FieldErrors map[string]string
	Submitting  bool
	SignedIn    bool
}

// SignInAction is the closed action set for the sign-in screen.
type SignInAction interface{ signInAction() }

type (
	// UpdateIdentifier replaces the identifier field.
	UpdateIdentifier struct{ Value string }
	// UpdatePassword replaces the password field.
	UpdatePassword struct{ Value string }
	// SubmitSignIn validates and submits the form. A submit while a previous
	// one is still in flight cancels it: last submit wins.
	SubmitSignIn struct{}
	// ClearSignInErrors drops all field errors.
	ClearSignInErrors struct{}
)

func (UpdateIdentifier) signInAction()  {}
func (UpdatePassword) signInAction()    {}
func (SubmitSignIn) signInAction()      {}
func (ClearSignInErrors) signInAction() {}

// SignInSucceeded is the one-shot navigation event emitted after a
// successful submit.
type SignInSucceeded struct {
	IsFirstTime bool
}

// SignInController drives the sign-in screen.
type SignInController struct {
	*state.Container[SignInState]
	auth  ports.AuthService
	coord *session.Coordinator
}

func NewSignInController(auth ports.AuthService, coord *session.Coordinator, log zerolog.Logger) *SignInController {
	return &SignInController{
		Container: state.NewContainer("sign_in", SignInState{}, log),
		auth:      auth,
		coord:     coord,
	}
}

func (c *SignInController) Dispatch(action SignInAction) {
	switch a := action.(type) {
	case UpdateIdentifier:
		c.SetState(func(s SignInState) SignInState {
			s.Identifier = a.Value
			s.FieldErrors = dropKey(s.FieldErrors, "identifier")
			return s
		})
	case UpdatePassword:
		c.SetState(func(s SignInState) SignInState {
			s.Password = a.Value
			s.FieldErrors = dropKey(s.FieldErrors, "password")
			return s
		})
	case SubmitSignIn:
		c.handleSubmit()
	case ClearSignInErrors:
		c.SetState(func(s SignInState) SignInState {
			s.FieldErrors = nil
			return s
		})
	default:
		panic(fmt.Sprintf("sign_in: unhandled action %T", action))
	}
}

func (c *SignInController) handleSubmit() {
	form := c.State()
	errs := map[string]string{}
	if form.Identifier == "" {
		errs["identifier"] = "identifier is required"
	}
	if form.Password == "" {
		errs["password"] = "password is required"
	}
	if len(errs) > 0 {
		c.SetState(func(s SignInState) SignInState {
			s.FieldErrors = errs
			return s
		})
		return
	}

	c.SetState(func(s SignInState) SignInState {
		s.Submitting = true
		s.FieldErrors = nil
		return s
	})
	c.coord.BeginAuthentication()

	c.LaunchReplacing("submit", func(ctx context.Context) error {
		result, err := c.auth.SignIn(ctx, form.Identifier, form.Password)
		if ctx.Err() != nil {
			// Replaced by a newer submit; the winner emits the outcome.
			return nil
		}

		state.HandleResult(c.Container, result, err, func(res ports.SignInResult) {
			c.SetState(func(s SignInState) SignInState {
				s.Submitting = false
				s.SignedIn = true
				s.Password = ""
				return s
			})
			c.EmitEvent(state.Snackbar{Message: "Sign in successful"})
			c.EmitEvent(SignInSucceeded{IsFirstTime: res.IsFirstTime})
		})
		if err != nil {
			c.coord.EndAuthentication()
			c.SetState(func(s SignInState) SignInState {
				s.Submitting = false
				return s
			})
		}
		return nil
	})
}

func dropKey(m map[string]string, key string) map[string]string {
	if _, ok := m[key]; !ok {
		return m
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if k != key {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
