package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeToken implements Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

// fakeVerifier accepts exactly one raw token
type fakeVerifier struct{ accept string }

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	if raw == f.accept {
		return &fakeToken{data: map[string]interface{}{"sub": "admin-" + raw}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

type fakeRevoker struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevoker) IsRevoked(ctx context.Context, raw string) (bool, error) {
	return f.revoked[raw], f.err
}

func authRequest(t *testing.T, mw gin.HandlerFunc, header string) *httptest.ResponseRecorder {
	t.Helper()
	g := gin.New()
	g.GET("/", mw, func(c *gin.Context) {
		claims, _ := c.Get(ClaimsKey)
		c.JSON(http.StatusOK, gin.H{"claims": claims, "token": c.GetString(TokenKey)})
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	rw := authRequest(t, AuthMiddleware(&fakeVerifier{accept: "good"}, nil), "")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	rw := authRequest(t, AuthMiddleware(&fakeVerifier{accept: "good"}, nil), "BadHeader")
	require.Equal(t, http.StatusUnauthorized, rw.Code)

	rw = authRequest(t, AuthMiddleware(&fakeVerifier{accept: "good"}, nil), "Basic good")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	rw := authRequest(t, AuthMiddleware(&fakeVerifier{accept: "good"}, nil), "Bearer good")
	require.Equal(t, http.StatusOK, rw.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Equal(t, "good", got["token"])
	claims, ok := got["claims"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "admin-good", claims["sub"])
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	rw := authRequest(t, AuthMiddleware(&fakeVerifier{accept: "good"}, nil), "Bearer bad")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.NotContains(t, rw.Body.String(), "details")
}

func TestAuthMiddleware_RejectsRevokedToken(t *testing.T) {
	rev := &fakeRevoker{revoked: map[string]bool{"good": true}}
	rw := authRequest(t, AuthMiddleware(&fakeVerifier{accept: "good"}, rev), "Bearer good")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.Contains(t, rw.Body.String(), "revoked")
}

func TestAuthMiddleware_RevocationLookupFailure(t *testing.T) {
	rev := &fakeRevoker{err: fmt.Errorf("redis down")}
	rw := authRequest(t, AuthMiddleware(&fakeVerifier{accept: "good"}, rev), "Bearer good")
	require.Equal(t, http.StatusInternalServerError, rw.Code)
}

func TestVerifiers_FirstSuccessWins(t *testing.T) {
	vs := Verifiers{&fakeVerifier{accept: "a"}, &fakeVerifier{accept: "b"}}

	rw := authRequest(t, AuthMiddleware(vs, nil), "Bearer b")
	require.Equal(t, http.StatusOK, rw.Code)

	rw = authRequest(t, AuthMiddleware(vs, nil), "Bearer c")
	require.Equal(t, http.StatusUnauthorized, rw.Code)

	_, err := Verifiers{}.Verify(context.Background(), "a")
	require.Error(t, err)
}
