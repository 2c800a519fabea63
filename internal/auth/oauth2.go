package auth

import (
	"context"
	"strings"

	"github.com/mcpkit/mcpcore/internal/oauth"
)

// oauth2Strategy authenticates callers by validating an OAuth 2.1
// bearer token from the Authorization header against the wrapped
// TokenValidator (JWT signature, expiry, audience — see
// internal/oauth). This is the only Strategy that talks to an
// authorization server's JWKS endpoint, and it does so entirely
// through the oauth package; this file only adapts TokenClaims to
// Principal.
type oauth2Strategy struct {
	validator oauth.TokenValidator
}

// NewOAuth2Strategy builds a Strategy around an existing TokenValidator.
func NewOAuth2Strategy(validator oauth.TokenValidator) Strategy {
	return &oauth2Strategy{validator: validator}
}

func (s *oauth2Strategy) Authenticate(ctx context.Context, md Metadata) (*Principal, error) {
	header := md.Header("Authorization")
	if header == "" {
		return nil, ErrUnauthenticated
	}
	token, ok := bearerToken(header)
	if !ok {
		return nil, ErrUnauthenticated
	}

	claims, err := s.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, ErrInvalidCredential
	}

	principal := NewPrincipal(claims.Subject, claims.Scopes)
	principal.ExpiresAt = &claims.ExpiresAt
	principal.Claims = map[string]any{
		"iss": claims.Issuer,
		"aud": claims.Audience,
		"jti": claims.JTI,
	}
	return principal, nil
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}
