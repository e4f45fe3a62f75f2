package tokens

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRevocationPrefix namespaces revocation keys in Redis.
const DefaultRevocationPrefix = "revoked:admin:"

// Revocations records logged-out tokens in Redis until they expire. A nil
// client disables revocation.
type Revocations struct {
	client   *redis.Client
	prefix   string
	fallback time.Duration
}

// NewRevocations keeps tokens without an exp claim revoked for fallback.
func NewRevocations(client *redis.Client, fallback time.Duration) *Revocations {
	return &Revocations{client: client, prefix: DefaultRevocationPrefix, fallback: fallback}
}

// Tokens are hashed so raw credentials never sit in Redis.
func (r *Revocations) key(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return r.prefix + hex.EncodeToString(sum[:])
}

// Enabled reports whether a Redis client is configured.
func (r *Revocations) Enabled() bool { return r != nil && r.client != nil }

// RevokeToken blacklists raw until its expiry. Expired tokens are a no-op.
func (r *Revocations) RevokeToken(ctx context.Context, raw string) error {
	if !r.Enabled() {
		return nil
	}
	ttl := r.fallback
	exp, err := ExpiresAt(raw)
	switch {
	case err == nil:
		ttl = time.Until(exp)
	case !errors.Is(err, ErrMissingExpiry):
		return err
	}
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.key(raw), "1", ttl).Err()
}

// IsRevoked returns true when raw was revoked and has not yet expired.
func (r *Revocations) IsRevoked(ctx context.Context, raw string) (bool, error) {
	if !r.Enabled() {
		return false, nil
	}
	n, err := r.client.Exists(ctx, r.key(raw)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
