package services

import (
	"context"

	"github.com/arhub/ar-hub-backend/errs"
	"github.com/descope/go-sdk/descope/client"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Session is the request-scoped identity resolved from a session token.
// Sessions are keyed by email; the user row is looked up (or created)
// downstream from these claims.
type Session struct {
	Email string
	Name  string
	Role  string
}

// SessionValidator validates an opaque session token against the external
// session provider and returns its claims.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*Session, error)
}

// DescopeAuth validates session tokens through the Descope SDK.
type DescopeAuth struct {
	client *client.DescopeClient
	logger zerolog.Logger
}

func NewDescopeAuth(projectID string) (*DescopeAuth, error) {
	if projectID == "" {
		return nil, errs.NewConfigMissingError("DESCOPE_PROJECT_ID")
	}
	c, err := client.NewWithConfig(&client.Config{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	return &DescopeAuth{
		client: c,
		logger: log.With().Str("serviceName", "descopeAuth").Logger(),
	}, nil
}

func (a *DescopeAuth) Validate(ctx context.Context, token string) (*Session, error) {
	authorized, t, err := a.client.Auth.ValidateSessionWithToken(ctx, token)
	if err != nil {
		a.logger.Warn().Err(err).Msg("session validation failed")
		return nil, errs.NewAuthProviderError(err)
	}
	if !authorized || t == nil {
		return nil, errs.NewInvalidTokenError()
	}

	s := &Session{
		Email: claimString(t.Claims, "email"),
		Name:  claimString(t.Claims, "name"),
		Role:  claimString(t.Claims, "role"),
	}
	if s.Email == "" {
		return nil, errs.NewSessionUnresolvedError(nil)
	}
	return s, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// UnconfiguredAuth rejects every session. Used when no provider project is
// configured so that authenticated endpoints fail closed.
type UnconfiguredAuth struct{}

func (UnconfiguredAuth) Validate(ctx context.Context, token string) (*Session, error) {
	return nil, errs.NewAuthProviderError(errs.ErrConfigMissing)
}
