package ports

import (
	"context"

	"github.com/persome/account-system/internal/core/domain"
)

// RegisterInput carries the data needed to create an account.
type RegisterInput struct {
	FullName    string
	Username    string
	Email       string
	PhoneNumber string
	Password    string
	Role        domain.Role
	Timezone    string
	Locale      string
}

// SignInResult is returned on a successful authentication.
type SignInResult struct {
	AccessToken  string
	RefreshToken string
	User         domain.UserData
	IsFirstTime  bool
}

// AuthService implements registration and the sign-in/sign-out lifecycle.
// Mutations persist first, then publish the matching domain event.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (domain.UserData, error)
	// SignIn accepts a username or email as identifier.
	SignIn(ctx context.Context, identifier, password string) (SignInResult, error)
	SignOut(ctx context.Context, userID, reason string) error
	// RefreshTokens rotates the access token for the stored refresh token.
	RefreshTokens(ctx context.Context, refreshToken string) (SignInResult, error)
}
