package tokens

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRevocations_RevokeUntilExpiry(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	r := NewRevocations(client, time.Hour)

	cfg := testConfig("revocation-secret-32-bytes-xxxxxxxxx")
	tok, err := GenerateAdminToken(cfg, "ops", 2*time.Minute)
	require.NoError(t, err)

	ctx := context.Background()
	ok, err := r.IsRevoked(ctx, tok)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, r.RevokeToken(ctx, tok))
	ok, err = r.IsRevoked(ctx, tok)
	require.NoError(t, err)
	require.True(t, ok)

	// the raw token is never stored
	for _, k := range m.Keys() {
		require.NotContains(t, k, tok)
	}

	m.FastForward(3 * time.Minute)
	ok, err = r.IsRevoked(ctx, tok)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRevocations_NoExpiryUsesFallback(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	r := NewRevocations(redis.NewClient(&redis.Options{Addr: m.Addr()}), 10*time.Minute)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ops"}).SignedString([]byte("k"))
	require.NoError(t, err)

	require.NoError(t, r.RevokeToken(context.Background(), tok))
	require.Len(t, m.Keys(), 1)
	require.Equal(t, 10*time.Minute, m.TTL(m.Keys()[0]))
}

func TestRevocations_Malformed(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	r := NewRevocations(redis.NewClient(&redis.Options{Addr: m.Addr()}), time.Hour)
	require.Error(t, r.RevokeToken(context.Background(), "garbage"))
}

// Revocation is a no-op without a Redis client
func TestRevocations_NoClient_Noop(t *testing.T) {
	r := NewRevocations(nil, time.Hour)
	require.False(t, r.Enabled())
	require.NoError(t, r.RevokeToken(context.Background(), "token"))
	ok, err := r.IsRevoked(context.Background(), "token")
	require.NoError(t, err)
	require.False(t, ok)
}
