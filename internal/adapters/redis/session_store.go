package redis

// Package redis provides Redis-backed adapters for portalgate.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
	"github.com/lumicrm/portalgate/internal/ports"
)

// DefaultSessionPrefix namespaces session keys.
const DefaultSessionPrefix = "portalgate:session:"

// ErrNotFound is returned when a session is missing or expired.
var ErrNotFound = ports.ErrSessionNotFound

// SessionStore keeps session records in Redis. Keys expire with the session.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStoreOption configures a SessionStore.
type SessionStoreOption func(*SessionStore)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) SessionStoreOption {
	return func(s *SessionStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithClock overrides the time source used for TTL computation.
func WithClock(now func() time.Time) SessionStoreOption {
	return func(s *SessionStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSessionStore creates a Redis session store.
func NewSessionStore(client redis.UniversalClient, opts ...SessionStoreOption) *SessionStore {
	s := &SessionStore{client: client, prefix: DefaultSessionPrefix, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes sess with a TTL ending at sess.ExpiresAt. Saving an existing ID overwrites it,
// which is how refreshes extend a session.
func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("session is expired")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+sess.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get loads a session by ID. Missing and expired sessions return ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, ErrNotFound
		}
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}

	// Key TTL and record expiry can drift by clock skew between hosts.
	if sess.Expired(s.now()) {
		if err := s.Delete(ctx, id); err != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", err)
		}
		return domainauth.Session{}, ErrNotFound
	}

	return sess, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
