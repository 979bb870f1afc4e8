package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/persome/account-system/internal/core/domain"
	"github.com/persome/account-system/internal/core/ports"
	"github.com/persome/account-system/internal/eventbus"
)

// ProfileService implements reads and updates of a user's profile. Updates
// replace the stored snapshot wholesale, refresh the persisted session
// envelope, then publish the matching domain event so the session coordinator
// (and any other subscriber) picks the change up without knowing about this
// service.
type ProfileService struct {
	users ports.UserRepository
	store ports.SessionStore
	bus   *eventbus.Bus
	log   zerolog.Logger
}

func NewProfileService(users ports.UserRepository, store ports.SessionStore, bus *eventbus.Bus, log zerolog.Logger) *ProfileService {
	return &ProfileService{
		users: users,
		store: store,
		bus:   bus,
		log:   log.With().Str("component", "profile").Logger(),
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (domain.UserData, error) {
	rec, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.UserData{}, err
	}
	return rec.User, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, in ports.ProfileUpdateInput) (domain.UserData, error) {
	rec, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.UserData{}, err
	}

	user := rec.User
	var updated []string
	if in.FullName != nil && *in.FullName != user.FullName {
		user.FullName = *in.FullName
		updated = append(updated, "fullName")
	}
	if in.PhoneNumber != nil && *in.PhoneNumber != user.PhoneNumber {
		user.PhoneNumber = *in.PhoneNumber
		user.IsPhoneVerified = false
		updated = append(updated, "phoneNumber")
	}
	if in.Timezone != nil && *in.Timezone != user.Timezone {
		user.Timezone = *in.Timezone
		updated = append(updated, "timezone")
	}
	if in.Locale != nil && *in.Locale != user.Locale {
		user.Locale = *in.Locale
		updated = append(updated, "locale")
	}
	if len(updated) == 0 {
		return user, nil
	}
	user.UpdatedAt = time.Now().UTC().Unix()

	if err := s.persist(ctx, user); err != nil {
		return domain.UserData{}, err
	}

	s.bus.Publish(domain.UserProfileUpdated{User: user, UpdatedFields: updated})
	return user, nil
}

func (s *ProfileService) UpdateAvatar(ctx context.Context, userID, avatarURL string) (domain.UserData, error) {
	rec, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.UserData{}, err
	}

	user := rec.User.WithAvatarURL(avatarURL)
	user.UpdatedAt = time.Now().UTC().Unix()
	if err := s.persist(ctx, user); err != nil {
		return domain.UserData{}, err
	}

	s.bus.Publish(domain.UserAvatarUpdated{AvatarURL: avatarURL, UserID: userID})
	return user, nil
}

func (s *ProfileService) UpdatePreferences(ctx context.Context, userID string, prefs map[string]string) (domain.UserData, error) {
	rec, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.UserData{}, err
	}

	user := rec.User.WithPreferences(prefs)
	user.UpdatedAt = time.Now().UTC().Unix()
	if err := s.persist(ctx, user); err != nil {
		return domain.UserData{}, err
	}

	s.bus.Publish(domain.UserPreferencesUpdated{Preferences: prefs, UserID: userID})
	return user, nil
}

// persist writes the user record and, when a session envelope for this user
// is stored, rewrites it so a cold restart recovers the fresh snapshot.
func (s *ProfileService) persist(ctx context.Context, user domain.UserData) error {
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	raw, err := s.store.GetSessionJSON(ctx)
	if err != nil || raw == "" {
		return nil
	}
	blob, err := domain.ParseSessionBlob(raw)
	if err != nil || blob.User.ID != user.ID {
		return nil
	}
	blob.User = user
	encoded, err := blob.Encode()
	if err != nil {
		return nil
	}
	if err := s.store.SaveSessionJSON(ctx, encoded); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to refresh stored session")
	}
	return nil
}
