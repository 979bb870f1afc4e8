package ports

import "context"

// SessionStore is the durable key/value storage behind the session
// coordinator: a serialized session envelope plus an is-active flag.
type SessionStore interface {
	// GetSessionJSON returns the stored session envelope, or ("", nil) when
	// no session is stored.
	GetSessionJSON(ctx context.Context) (string, error)
	// SaveSessionJSON replaces the stored session envelope wholesale.
	SaveSessionJSON(ctx context.Context, raw string) error
	// SetActive flips the is-active flag and notifies watchers.
	SetActive(ctx context.Context, active bool) error
	// IsActive reads the current is-active flag.
	IsActive(ctx context.Context) (bool, error)
	// WatchActive returns a stream of is-active changes. The channel is closed
	// when the store shuts down.
	WatchActive() <-chan bool
	// Clear removes the session envelope and the active flag.
	Clear(ctx context.Context) error
}
