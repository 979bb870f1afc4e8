package domain

import (
	"encoding/json"
	"fmt"
)

// SessionPhase enumerates the authentication phases of the current session.
type SessionPhase string

const (
	// PhaseNotAuthenticated means no user is signed in.
	PhaseNotAuthenticated SessionPhase = "not_authenticated"
	// PhaseAuthenticated means a user is signed in and their data is loaded.
	PhaseAuthenticated SessionPhase = "authenticated"
	// PhaseLoading means the session is being determined (cold start, refresh).
	PhaseLoading SessionPhase = "loading"
	// PhaseAuthenticating means a sign-in or sign-up is in flight. Treated the
	// same as PhaseLoading by most observers, but kept distinct in the model.
	PhaseAuthenticating SessionPhase = "authenticating"
)

// SessionState is the derived authentication state observed by all features.
// User is non-nil iff Phase is PhaseAuthenticated; use the constructors below
// rather than building the struct by hand.
type SessionState struct {
	Phase SessionPhase
	User  *UserData
}

// NotAuthenticated returns the signed-out state.
func NotAuthenticated() SessionState {
	return SessionState{Phase: PhaseNotAuthenticated}
}

// Authenticated returns the signed-in state carrying the user snapshot.
func Authenticated(user UserData) SessionState {
	return SessionState{Phase: PhaseAuthenticated, User: &user}
}

// Loading returns the indeterminate state.
func Loading() SessionState {
	return SessionState{Phase: PhaseLoading}
}

// Authenticating returns the sign-in-in-flight state.
func Authenticating() SessionState {
	return SessionState{Phase: PhaseAuthenticating}
}

// IsAuthenticated reports whether a user is signed in.
func (s SessionState) IsAuthenticated() bool {
	return s.Phase == PhaseAuthenticated
}

// IsLoading reports whether the state is still being determined, covering both
// the loading and authenticating phases.
func (s SessionState) IsLoading() bool {
	return s.Phase == PhaseLoading || s.Phase == PhaseAuthenticating
}

func (s SessionState) String() string {
	if s.Phase == PhaseAuthenticated && s.User != nil {
		return fmt.Sprintf("%s(%s)", s.Phase, s.User.ID)
	}
	return string(s.Phase)
}

// SessionBlob is the durable session envelope stored as JSON. Only User is
// load-bearing for session recovery; the tokens ride along for the auth layer.
type SessionBlob struct {
	AccessToken  string   `json:"accessToken,omitempty"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	User         UserData `json:"user"`
}

// ParseSessionBlob decodes a persisted session envelope. A blob without a user
// id is reported as an error so callers collapse to "not authenticated"
// instead of trusting a half-formed record.
func ParseSessionBlob(raw string) (SessionBlob, error) {
	var blob SessionBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		return SessionBlob{}, fmt.Errorf("parse session blob: %w", err)
	}
	if blob.User.ID == "" {
		return SessionBlob{}, fmt.Errorf("parse session blob: %w", ErrSessionCorrupt)
	}
	return blob, nil
}

// Encode serializes the envelope back to its stored JSON form.
func (b SessionBlob) Encode() (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("encode session blob: %w", err)
	}
	return string(data), nil
}
