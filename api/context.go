package api

import (
	"context"

	"github.com/arhub/ar-hub-backend/models"
)

type keyType string

const userKey keyType = "user"

// ctxWithUser attaches the resolved user to the request context. Identity
// is request-scoped: resolved once by the auth middleware, read by
// handlers, never stored globally.
func ctxWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// ctxGetUser returns the request's user, or nil for anonymous callers.
func ctxGetUser(ctx context.Context) *models.User {
	if user, ok := ctx.Value(userKey).(*models.User); ok {
		return user
	}
	return nil
}
