package auth

import (
	"context"
	"time"

	"notedeck/internal/cache"
)

const denylistKeyPrefix = "denylist:session:"

// SessionStoreInterface defines the revocation operations used by the
// principal middleware and the logout flow.
type SessionStoreInterface interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// SessionStore denylists session token IDs in Redis until their natural
// expiry. A revoked session is refused on the very next request, which is
// what makes logout observable without waiting for the JWT to run out.
type SessionStore struct {
	cache *cache.Client
}

// Ensure SessionStore implements SessionStoreInterface
var _ SessionStoreInterface = (*SessionStore)(nil)

// NewSessionStore creates a new session store.
func NewSessionStore(cache *cache.Client) *SessionStore {
	return &SessionStore{cache: cache}
}

// Revoke adds a session jti to the denylist for the remaining token
// lifetime.
func (s *SessionStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return s.cache.Set(ctx, denylistKeyPrefix+jti, []byte("1"), ttl)
}

// IsRevoked checks whether a session jti has been denylisted.
func (s *SessionStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	data, err := s.cache.Get(ctx, denylistKeyPrefix+jti)
	if err != nil {
		return false, nil
	}
	return data != nil, nil
}
