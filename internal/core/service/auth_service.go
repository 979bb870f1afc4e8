package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/persome/account-system/internal/api/metrics"
	"github.com/persome/account-system/internal/core/domain"
	"github.com/persome/account-system/internal/core/ports"
	"github.com/persome/account-system/internal/eventbus"
)

// AuthService implements registration and the sign-in/sign-out lifecycle.
// Every mutation persists durable state first, then publishes the matching
// domain event on the bus.
type AuthService struct {
	users      ports.UserRepository
	store      ports.SessionStore
	bus        *eventbus.Bus
	jwtSecret  string
	tokenTTL   time.Duration
	refreshTTL time.Duration
	log        zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	store ports.SessionStore,
	bus *eventbus.Bus,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:      users,
		store:      store,
		bus:        bus,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		refreshTTL: 7 * 24 * time.Hour,
		log:        log.With().Str("component", "auth").Logger(),
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (domain.UserData, error) {
	if in.Username == "" || in.Password == "" || in.Email == "" {
		return domain.UserData{}, domain.ErrInvalidCredentials
	}
	if in.Role == domain.RoleNone {
		return domain.UserData{}, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserData{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC().Unix()
	rec := &ports.UserRecord{
		User: domain.UserData{
			ID:          uuid.NewString(),
			FullName:    in.FullName,
			Username:    in.Username,
			Email:       in.Email,
			PhoneNumber: in.PhoneNumber,
			Role:        in.Role,
			IsActive:    true,
			Timezone:    in.Timezone,
			Locale:      in.Locale,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		PasswordHash: string(hash),
	}

	created, err := s.users.Create(ctx, rec)
	if err != nil {
		return domain.UserData{}, err
	}
	return created.User, nil
}

// SignIn authenticates by username or email, persists the session envelope
// and activates it, then publishes UserSignedIn.
func (s *AuthService) SignIn(ctx context.Context, identifier, password string) (ports.SignInResult, error) {
	if identifier == "" || password == "" {
		metrics.AuthAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return ports.SignInResult{}, domain.ErrInvalidCredentials
	}

	rec, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("error").Inc()
		return ports.SignInResult{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return ports.SignInResult{}, domain.ErrInvalidCredentials
	}

	isFirstTime := rec.User.LastLoginAt == 0
	user := rec.User.WithLastLoginAt(time.Now().UTC().Unix())
	if err := s.users.UpdateUser(ctx, user); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
		user = rec.User
	}

	result, err := s.issueSession(ctx, user, isFirstTime)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("error").Inc()
		return ports.SignInResult{}, err
	}

	s.bus.Publish(domain.UserSignedIn{User: result.User, IsFirstTimeUser: isFirstTime})
	metrics.AuthAttemptsTotal.WithLabelValues("success").Inc()
	return result, nil
}

// SignOut tears the session down and publishes UserSignedOut.
func (s *AuthService) SignOut(ctx context.Context, userID, reason string) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if err := s.store.SetActive(ctx, false); err != nil {
		s.log.Warn().Err(err).Msg("failed to deactivate session")
	}
	s.bus.Publish(domain.UserSignedOut{Reason: reason, UserID: userID})
	return nil
}

// RefreshTokens rotates the token pair for a valid refresh token and
// publishes TokensRefreshed.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (ports.SignInResult, error) {
	userID, err := s.parseRefreshToken(refreshToken)
	if err != nil {
		return ports.SignInResult{}, err
	}

	rec, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return ports.SignInResult{}, err
	}

	result, err := s.issueSession(ctx, rec.User, false)
	if err != nil {
		return ports.SignInResult{}, err
	}

	s.bus.Publish(domain.TokensRefreshed{UserID: rec.User.ID})
	return result, nil
}

// issueSession generates the token pair, writes the session envelope and
// flips the active flag.
func (s *AuthService) issueSession(ctx context.Context, user domain.UserData, isFirstTime bool) (ports.SignInResult, error) {
	access, err := s.generateToken(user, "access", s.tokenTTL)
	if err != nil {
		return ports.SignInResult{}, err
	}
	refresh, err := s.generateToken(user, "refresh", s.refreshTTL)
	if err != nil {
		return ports.SignInResult{}, err
	}

	blob := domain.SessionBlob{AccessToken: access, RefreshToken: refresh, User: user}
	raw, err := blob.Encode()
	if err != nil {
		return ports.SignInResult{}, err
	}
	if err := s.store.SaveSessionJSON(ctx, raw); err != nil {
		return ports.SignInResult{}, fmt.Errorf("save session: %w", err)
	}
	if err := s.store.SetActive(ctx, true); err != nil {
		return ports.SignInResult{}, fmt.Errorf("activate session: %w", err)
	}

	return ports.SignInResult{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
		IsFirstTime:  isFirstTime,
	}, nil
}

func (s *AuthService) generateToken(user domain.UserData, tokenType string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"type":     tokenType,
		"exp":      time.Now().Add(ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) parseRefreshToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrInvalidCredentials
	}
	if !parsed.Valid {
		return "", domain.ErrInvalidCredentials
	}
	if typ, _ := claims["type"].(string); typ != "refresh" {
		return "", domain.ErrInvalidCredentials
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", domain.ErrInvalidCredentials
	}
	return sub, nil
}
