package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrForbidden          = errors.New("access forbidden")
	ErrSessionCorrupt     = errors.New("session data corrupt")
	ErrResultNotFound     = errors.New("personality result not found")
	ErrTokenExpired       = errors.New("token expired")
)
