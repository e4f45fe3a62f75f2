package oidc

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://sso.example.com/realms/acme"
	testClientID = "testimonials"
	testRole     = "testimonials-admin"
)

func newTestVerifier(t *testing.T) (*Verifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	return &Verifier{
		verifier: oidc.NewVerifier(testIssuer, keys, &oidc.Config{ClientID: testClientID}),
		clientID: testClientID,
		role:     testRole,
	}, key
}

func sign(t *testing.T, key *rsa.PrivateKey, extra jwt.MapClaims) string {
	t.Helper()
	claims := jwt.MapClaims{
		"iss": testIssuer,
		"aud": testClientID,
		"sub": "user-1",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestVerify_RealmRole(t *testing.T) {
	v, key := newTestVerifier(t)
	raw := sign(t, key, jwt.MapClaims{"realm_access": map[string]interface{}{"roles": []string{"offline_access", testRole}}})

	tok, err := v.Verify(context.Background(), raw)
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "user-1", claims["sub"])
}

func TestVerify_ClientRole(t *testing.T) {
	v, key := newTestVerifier(t)
	raw := sign(t, key, jwt.MapClaims{"resource_access": map[string]interface{}{
		testClientID: map[string]interface{}{"roles": []string{testRole}},
	}})
	_, err := v.Verify(context.Background(), raw)
	require.NoError(t, err)
}

func TestVerify_MissingRole(t *testing.T) {
	v, key := newTestVerifier(t)
	raw := sign(t, key, jwt.MapClaims{"realm_access": map[string]interface{}{"roles": []string{"user"}}})
	_, err := v.Verify(context.Background(), raw)
	require.ErrorIs(t, err, ErrMissingRole)
}

func TestVerify_WrongAudienceOrKey(t *testing.T) {
	v, key := newTestVerifier(t)
	roles := map[string]interface{}{"roles": []string{testRole}}

	_, err := v.Verify(context.Background(), sign(t, key, jwt.MapClaims{"aud": "other", "realm_access": roles}))
	require.Error(t, err)

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), sign(t, other, jwt.MapClaims{"realm_access": roles}))
	require.Error(t, err)
}

type claimsToken map[string]interface{}

func (c claimsToken) Claims(v interface{}) error {
	if c == nil {
		return errors.New("no claims")
	}
	b, err := json.Marshal(map[string]interface{}(c))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func TestHasRole(t *testing.T) {
	require.NoError(t, HasRole(claimsToken{}, testClientID, ""))
	require.ErrorIs(t, HasRole(claimsToken{}, testClientID, testRole), ErrMissingRole)
	require.Error(t, HasRole(claimsToken(nil), testClientID, testRole))

	other := claimsToken{"resource_access": map[string]interface{}{"another-client": map[string]interface{}{"roles": []string{testRole}}}}
	require.ErrorIs(t, HasRole(other, testClientID, testRole), ErrMissingRole)
}
