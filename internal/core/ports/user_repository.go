package ports

import (
	"context"

	"github.com/persome/account-system/internal/core/domain"
)

// UserRecord couples the public user snapshot with server-side credentials.
// Only the repository and the auth service ever see the password hash.
type UserRecord struct {
	User         domain.UserData
	PasswordHash string
}

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	Create(ctx context.Context, rec *UserRecord) (*UserRecord, error)
	// FindByIdentifier resolves a username or email to a record.
	FindByIdentifier(ctx context.Context, identifier string) (*UserRecord, error)
	FindByID(ctx context.Context, id string) (*UserRecord, error)
	// UpdateUser replaces the stored user snapshot wholesale.
	UpdateUser(ctx context.Context, user domain.UserData) error
}
