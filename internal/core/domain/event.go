package domain

// Event is a significant cross-feature occurrence carried on the event bus.
// The variant set is closed: only the types in this file implement it.
// Events are immutable values; subscribers must treat them as read-only.
type Event interface {
	// Kind is a stable snake_case name for the variant, used for logging,
	// metrics labels and outbound relay keys.
	Kind() string
}

// UserSignedIn is published after a successful sign-in, once the session has
// been persisted.
type UserSignedIn struct {
	User            UserData
	IsFirstTimeUser bool
}

// UserProfileUpdated is published after a profile change has been persisted.
// UpdatedFields names the fields that changed.
type UserProfileUpdated struct {
	User          UserData
	UpdatedFields []string
}

// UserSignedOut is published once the session has been torn down. Reason is
// free-form ("user_initiated", "token_expired", ...).
type UserSignedOut struct {
	Reason string
	UserID string
}

// UserAvatarUpdated is published when only the avatar changed.
type UserAvatarUpdated struct {
	AvatarURL string
	UserID    string
}

// UserPreferencesUpdated is published when user preferences changed.
type UserPreferencesUpdated struct {
	Preferences map[string]string
	UserID      string
}

// TokensRefreshed is published after an access-token rotation.
type TokensRefreshed struct {
	UserID string
}

func (UserSignedIn) Kind() string           { return "user_signed_in" }
func (UserProfileUpdated) Kind() string     { return "user_profile_updated" }
func (UserSignedOut) Kind() string          { return "user_signed_out" }
func (UserAvatarUpdated) Kind() string      { return "user_avatar_updated" }
func (UserPreferencesUpdated) Kind() string { return "user_preferences_updated" }
func (TokensRefreshed) Kind() string        { return "tokens_refreshed" }
