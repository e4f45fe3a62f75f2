// Package tokens issues and verifies the HS256 bearer tokens that guard the
// admin routes.
package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/testimonials/testimonials/internal/config"
	"github.com/testimonials/testimonials/pkg/middleware"
)

// AdminRole is the role claim carried by every admin token.
const AdminRole = "admin"

var (
	ErrMissingExpiry = errors.New("token has no expiry")
	ErrNotAdmin      = errors.New("token lacks admin role")
)

// GenerateAdminToken creates a signed admin token for sub. A non-positive ttl
// falls back to cfg.Admin.TokenTTL.
func GenerateAdminToken(cfg *config.Config, sub string, ttl time.Duration) (string, error) {
	if cfg.Admin.JWTSecret == "" {
		return "", errors.New("ADMIN_JWT_SECRET is not set")
	}
	if ttl <= 0 {
		ttl = cfg.Admin.TokenTTL
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  sub,
		"role": AdminRole,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.Admin.JWTSecret))
}

// AdminVerifier accepts tokens produced by GenerateAdminToken.
type AdminVerifier struct {
	secret []byte
}

func NewAdminVerifier(secret string) *AdminVerifier {
	return &AdminVerifier{secret: []byte(secret)}
}

// Verify checks the signature, algorithm, expiry and role.
func (v *AdminVerifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, ErrMissingExpiry
	}
	if role, _ := claims["role"].(string); role != AdminRole {
		return nil, ErrNotAdmin
	}
	return mapToken(claims), nil
}

// ExpiresAt reads the exp claim without verifying the signature. Callers
// must only pass tokens that were already verified.
func ExpiresAt(raw string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, ErrMissingExpiry
	}
	return exp.Time, nil
}

type mapToken jwt.MapClaims

func (t mapToken) Claims(v interface{}) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
