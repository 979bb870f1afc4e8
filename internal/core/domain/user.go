package domain

// UserData is the authoritative "who is the current user" snapshot shared
// across features. It is a read-only value: updates replace the whole record,
// never mutate a field in place. The json tags match the persisted session
// envelope shape.
type UserData struct {
	ID              string            `json:"id"`
	FullName        string            `json:"fullName"`
	Username        string            `json:"username"`
	Email           string            `json:"email"`
	PhoneNumber     string            `json:"phoneNumber,omitempty"`
	AvatarURL       string            `json:"avatarUrl,omitempty"`
	Role            Role              `json:"role"`
	IsEmailVerified bool              `json:"isEmailVerified"`
	IsPhoneVerified bool              `json:"isPhoneVerified"`
	LastLoginAt     int64             `json:"lastLoginAt,omitempty"`
	IsActive        bool              `json:"isActive"`
	Timezone        string            `json:"timezone,omitempty"`
	Locale          string            `json:"locale,omitempty"`
	Preferences     map[string]string `json:"preferences,omitempty"`
	CreatedAt       int64             `json:"createdAt,omitempty"`
	UpdatedAt       int64             `json:"updatedAt,omitempty"`
}

// WithAvatarURL returns a copy of the record with the avatar replaced.
func (u UserData) WithAvatarURL(url string) UserData {
	u.AvatarURL = url
	return u
}

// WithRole returns a copy of the record with the role replaced.
func (u UserData) WithRole(role Role) UserData {
	u.Role = role
	return u
}

// WithPreferences returns a copy of the record with the given preferences
// merged over the existing ones. The receiver's map is not touched.
func (u UserData) WithPreferences(prefs map[string]string) UserData {
	merged := make(map[string]string, len(u.Preferences)+len(prefs))
	for k, v := range u.Preferences {
		merged[k] = v
	}
	for k, v := range prefs {
		merged[k] = v
	}
	u.Preferences = merged
	return u
}

// WithLastLoginAt returns a copy of the record with the last-login timestamp replaced.
func (u UserData) WithLastLoginAt(ts int64) UserData {
	u.LastLoginAt = ts
	return u
}
