// Package oidc verifies Keycloak ID tokens for the admin routes.
package oidc

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/testimonials/testimonials/pkg/middleware"
)

// ErrMissingRole is returned for valid tokens without the admin role.
var ErrMissingRole = errors.New("token lacks required role")

// IDToken is a minimal interface for token payloads that allows extracting claims
// It is satisfied by *oidc.IDToken and by test fakes.
type IDToken interface {
	Claims(v interface{}) error
}

type idVerifier interface {
	Verify(ctx context.Context, raw string) (*oidc.IDToken, error)
}

// Verifier wraps the OIDC provider's token verifier and requires a role.
type Verifier struct {
	verifier idVerifier
	clientID string
	role     string
}

// NewVerifier discovers the issuer and accepts tokens for clientID that
// carry role either as a realm role or as a client role.
func NewVerifier(ctx context.Context, issuer, clientID, role string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	return &Verifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
		clientID: clientID,
		role:     role,
	}, nil
}

// Verify verifies the raw ID token and its role claims.
func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	if err := HasRole(idToken, v.clientID, v.role); err != nil {
		return nil, err
	}
	return idToken, nil
}

type keycloakClaims struct {
	RealmAccess struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
	ResourceAccess map[string]struct {
		Roles []string `json:"roles"`
	} `json:"resource_access"`
}

// HasRole checks Keycloak's realm_access and resource_access[clientID] role
// lists. An empty role accepts any token.
func HasRole(tok IDToken, clientID, role string) error {
	if role == "" {
		return nil
	}
	var c keycloakClaims
	if err := tok.Claims(&c); err != nil {
		return fmt.Errorf("decode role claims: %w", err)
	}
	for _, r := range c.RealmAccess.Roles {
		if r == role {
			return nil
		}
	}
	for _, r := range c.ResourceAccess[clientID].Roles {
		if r == role {
			return nil
		}
	}
	return ErrMissingRole
}
