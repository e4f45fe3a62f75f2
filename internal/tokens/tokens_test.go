package tokens

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/testimonials/testimonials/internal/config"
)

var b64 = base64.RawURLEncoding

func testConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.Admin.JWTSecret = secret
	cfg.Admin.TokenTTL = time.Hour
	return cfg
}

func TestGenerateAdminToken_ValidAndClaims(t *testing.T) {
	cfg := testConfig("test-secret-32-bytes-should-be-long-enough")

	tokenStr, err := GenerateAdminToken(cfg, "ops@example.com", 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAdminToken error: %v", err)
	}

	tok, err := NewAdminVerifier(cfg.Admin.JWTSecret).Verify(context.Background(), tokenStr)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	var claims map[string]interface{}
	if err := tok.Claims(&claims); err != nil {
		t.Fatalf("claims: %v", err)
	}
	if claims["sub"] != "ops@example.com" {
		t.Fatalf("unexpected sub claim: got=%v", claims["sub"])
	}
	if claims["role"] != AdminRole {
		t.Fatalf("unexpected role claim: got=%v", claims["role"])
	}
}

func TestGenerateAdminToken_DefaultTTL(t *testing.T) {
	cfg := testConfig("default-ttl-secret-32-bytes-xxxxxxxx")
	tokenStr, err := GenerateAdminToken(cfg, "ops", 0)
	if err != nil {
		t.Fatalf("GenerateAdminToken error: %v", err)
	}
	exp, err := ExpiresAt(tokenStr)
	if err != nil {
		t.Fatalf("ExpiresAt: %v", err)
	}
	if d := time.Until(exp); d < 59*time.Minute || d > time.Hour {
		t.Fatalf("expected ~1h ttl, got %v", d)
	}
}

func TestGenerateAdminToken_NoSecret(t *testing.T) {
	if _, err := GenerateAdminToken(&config.Config{}, "ops", time.Minute); err == nil {
		t.Fatalf("expected error without secret")
	}
}

func TestVerify_Expired(t *testing.T) {
	secret := "another-secret-32-bytes-longgggg"
	claims := jwt.MapClaims{"sub": "ops", "role": AdminRole, "exp": time.Now().Add(-time.Minute).Unix()}
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewAdminVerifier(secret).Verify(context.Background(), tokenStr); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestVerify_WrongSecretFails(t *testing.T) {
	cfg := testConfig("secret-one-32-bytes-xxxxxxxxxxxxxxxx")
	tokenStr, err := GenerateAdminToken(cfg, "ops", 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAdminToken error: %v", err)
	}
	if _, err := NewAdminVerifier("different-secret-xxxxxxxxxxxxxxxx").Verify(context.Background(), tokenStr); err == nil {
		t.Fatalf("expected verify to fail with wrong secret")
	}
}

func TestVerify_Malformed(t *testing.T) {
	if _, err := NewAdminVerifier("x").Verify(context.Background(), "not.a.jwt"); err == nil {
		t.Fatalf("expected verify to fail for malformed token")
	}
}

// Rejected when alg=none (unsigned token)
func TestVerify_AlgNoneRejected(t *testing.T) {
	headerEnc := b64.EncodeToString([]byte(`{"alg":"none"}`))
	payloadEnc := b64.EncodeToString([]byte(`{"sub":"u-none","role":"admin","exp":9999999999}`))
	tok := headerEnc + "." + payloadEnc + "."
	if _, err := NewAdminVerifier("x").Verify(context.Background(), tok); err == nil {
		t.Fatalf("expected verify to reject alg=none token")
	}
}

func TestVerify_RequiresExpiryAndRole(t *testing.T) {
	secret := "claims-secret-32-bytes-xxxxxxxxxxxx"
	sign := func(c jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	v := NewAdminVerifier(secret)

	if _, err := v.Verify(context.Background(), sign(jwt.MapClaims{"sub": "ops", "role": AdminRole})); err != ErrMissingExpiry {
		t.Fatalf("expected ErrMissingExpiry, got %v", err)
	}
	exp := time.Now().Add(time.Hour).Unix()
	if _, err := v.Verify(context.Background(), sign(jwt.MapClaims{"sub": "ops", "role": "user", "exp": exp})); err != ErrNotAdmin {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
}

// Tampering with payload must fail signature verification
func TestVerify_TamperedPayload(t *testing.T) {
	cfg := testConfig("tamper-test-secret-32-bytes-xxxxxxx")
	tokenStr, err := GenerateAdminToken(cfg, "user-t", 5*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAdminToken error: %v", err)
	}
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token parts")
	}
	payloadBytes, _ := b64.DecodeString(parts[1])
	parts[1] = b64.EncodeToString([]byte(strings.Replace(string(payloadBytes), "user-t", "attacker", 1)))
	tampered := strings.Join(parts, ".")
	if _, err := NewAdminVerifier(cfg.Admin.JWTSecret).Verify(context.Background(), tampered); err == nil {
		t.Fatalf("expected signature verification to fail for tampered token")
	}
}
