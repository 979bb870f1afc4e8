package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKey = "session:current"
	activeKey  = "session:active"
)

// SessionStore is the Redis-backed durable session storage: one serialized
// session envelope plus an is-active flag. Active-flag changes are fanned out
// locally to watchers so the session coordinator reacts without polling.
type SessionStore struct {
	client *redis.Client

	mu       sync.Mutex
	watchers []chan bool
	closed   bool
}

// NewSessionStore wraps the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// GetSessionJSON returns the stored session envelope, or "" when absent.
func (s *SessionStore) GetSessionJSON(ctx context.Context) (string, error) {
	raw, err := s.client.Get(ctx, sessionKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("session get: %w", err)
	}
	return raw, nil
}

// SaveSessionJSON replaces the stored envelope wholesale. No TTL: the session
// lives until cleared or overwritten.
func (s *SessionStore) SaveSessionJSON(ctx context.Context, raw string) error {
	if err := s.client.Set(ctx, sessionKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

// SetActive flips the is-active flag and notifies watchers.
func (s *SessionStore) SetActive(ctx context.Context, active bool) error {
	val := "0"
	if active {
		val = "1"
	}
	if err := s.client.Set(ctx, activeKey, val, 0).Err(); err != nil {
		return fmt.Errorf("session set active: %w", err)
	}
	s.notify(active)
	return nil
}

// IsActive reads the current is-active flag; absent means inactive.
func (s *SessionStore) IsActive(ctx context.Context) (bool, error) {
	val, err := s.client.Get(ctx, activeKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("session get active: %w", err)
	}
	return val == "1", nil
}

// WatchActive returns a stream of is-active changes. Delivery conflates: a
// slow watcher sees the latest value, not every flip.
func (s *SessionStore) WatchActive() <-chan bool {
	ch := make(chan bool, 1)
	s.mu.Lock()
	if s.closed {
		close(ch)
	} else {
		s.watchers = append(s.watchers, ch)
	}
	s.mu.Unlock()
	return ch
}

// Clear removes the envelope and the active flag, notifying watchers.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, sessionKey, activeKey).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	s.notify(false)
	return nil
}

// Close ends all watcher streams.
func (s *SessionStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, ch := range s.watchers {
		close(ch)
	}
	s.watchers = nil
}

func (s *SessionStore) notify(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.watchers {
		select {
		case ch <- active:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- active
		}
	}
}
