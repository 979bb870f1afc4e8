package controller

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/persome/account-system/internal/core/domain"
	"github.com/persome/account-system/internal/core/ports"
	"github.com/persome/account-system/internal/core/session"
	"github.com/persome/account-system/internal/core/state"
)

// ProfileState is the profile screen's immutable state.
type ProfileState struct {
	User      *domain.UserData
	Loading   bool
	Saving    bool
	SignedOut bool
}

// ProfileAction is the closed action set for the profile screen.
type ProfileAction interface{ profileAction() }

type (
	// LoadProfile fetches the current user's profile.
	LoadProfile struct{}
	// SaveProfile persists edited profile fields.
	SaveProfile struct{ Input ports.ProfileUpdateInput }
	// ChangeAvatar replaces the avatar URL.
	ChangeAvatar struct{ URL string }
	// SavePreferences merges the given preferences.
	SavePreferences struct{ Preferences map[string]string }
	// SignOut ends the session.
	SignOut struct{ Reason string }
)

func (LoadProfile) profileAction()     {}
func (SaveProfile) profileAction()     {}
func (ChangeAvatar) profileAction()    {}
func (SavePreferences) profileAction() {}
func (SignOut) profileAction()         {}

// ProfileController drives the profile screen. It reads the current user id
// from the session coordinator rather than carrying its own copy.
type ProfileController struct {
	*state.Container[ProfileState]
	profiles ports.ProfileService
	auth     ports.AuthService
	coord    *session.Coordinator
}

func NewProfileController(profiles ports.ProfileService, auth ports.AuthService, coord *session.Coordinator, log zerolog.Logger) *ProfileController {
	return &ProfileController{
		Container: state.NewContainer("profile", ProfileState{}, log),
		profiles:  profiles,
		auth:      auth,
		coord:     coord,
	}
}

func (c *ProfileController) Dispatch(action ProfileAction) {
	switch a := action.(type) {
	case LoadProfile:
		c.handleLoad()
	case SaveProfile:
		c.handleSave("save_profile", func(ctx context.Context, userID string) (domain.UserData, error) {
			return c.profiles.UpdateProfile(ctx, userID, a.Input)
		}, "Profile updated")
	case ChangeAvatar:
		c.handleSave("change_avatar", func(ctx context.Context, userID string) (domain.UserData, error) {
			return c.profiles.UpdateAvatar(ctx, userID, a.URL)
		}, "Avatar updated")
	case SavePreferences:
		c.handleSave("save_preferences", func(ctx context.Context, userID string) (domain.UserData, error) {
			return c.profiles.UpdatePreferences(ctx, userID, a.Preferences)
		}, "Preferences saved")
	case SignOut:
		c.handleSignOut(a.Reason)
	default:
		panic(fmt.Sprintf("profile: unhandled action %T", action))
	}
}

func (c *ProfileController) handleLoad() {
	userID := c.coord.CurrentUserID()
	if userID == "" {
		state.HandleResult(c.Container, domain.UserData{}, domain.ErrNotAuthenticated, func(domain.UserData) {})
		return
	}

	c.SetState(func(s ProfileState) ProfileState {
		s.Loading = true
		return s
	})

	c.LaunchSafely("load_profile", func(ctx context.Context) error {
		user, err := c.profiles.GetProfile(ctx, userID)
		if ctx.Err() != nil {
			return nil
		}
		state.HandleResult(c.Container, user, err, func(u domain.UserData) {
			c.SetState(func(s ProfileState) ProfileState {
				s.Loading = false
				s.User = &u
				return s
			})
		})
		if err != nil {
			c.SetState(func(s ProfileState) ProfileState {
				s.Loading = false
				return s
			})
		}
		return nil
	})
}

func (c *ProfileController) handleSave(op string, save func(context.Context, string) (domain.UserData, error), successMsg string) {
	userID := c.coord.CurrentUserID()
	if userID == "" {
		state.HandleResult(c.Container, domain.UserData{}, domain.ErrNotAuthenticated, func(domain.UserData) {})
		return
	}

	c.SetState(func(s ProfileState) ProfileState {
		s.Saving = true
		return s
	})

	c.LaunchReplacing(op, func(ctx context.Context) error {
		user, err := save(ctx, userID)
		if ctx.Err() != nil {
			return nil
		}
		state.HandleResult(c.Container, user, err, func(u domain.UserData) {
			c.SetState(func(s ProfileState) ProfileState {
				s.Saving = false
				s.User = &u
				return s
			})
			c.EmitEvent(state.Snackbar{Message: successMsg})
		})
		if err != nil {
			c.SetState(func(s ProfileState) ProfileState {
				s.Saving = false
				return s
			})
		}
		return nil
	})
}

func (c *ProfileController) handleSignOut(reason string) {
	userID := c.coord.CurrentUserID()

	c.LaunchSafely("sign_out", func(ctx context.Context) error {
		err := c.auth.SignOut(ctx, userID, reason)
		if ctx.Err() != nil {
			return nil
		}
		state.HandleResult(c.Container, struct{}{}, err, func(struct{}) {
			c.SetState(func(s ProfileState) ProfileState {
				s.User = nil
				s.SignedOut = true
				return s
			})
			c.EmitEvent(state.NavigateToSignIn{})
		})
		return nil
	})
}
