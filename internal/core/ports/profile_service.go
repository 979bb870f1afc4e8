package ports

import (
	"context"

	"github.com/persome/account-system/internal/core/domain"
)

// ProfileUpdateInput carries the editable profile fields. Nil pointers mean
// "leave unchanged".
type ProfileUpdateInput struct {
	FullName    *string
	PhoneNumber *string
	Timezone    *string
	Locale      *string
}

// ProfileService implements reads and updates of the current user's profile.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (domain.UserData, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileUpdateInput) (domain.UserData, error)
	UpdateAvatar(ctx context.Context, userID, avatarURL string) (domain.UserData, error)
	UpdatePreferences(ctx context.Context, userID string, prefs map[string]string) (domain.UserData, error)
}
