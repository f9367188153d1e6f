package auth

import (
	"context"

	"learnpath-backend/pkg/errors"
)

// UserContext carries the acting user's identity. How the identity was
// established (session, gateway authorizer, token) is outside this layer;
// repositories and services only ever see the opaque user id.
type UserContext struct {
	UserID string
}

type contextKey string

const userContextKey contextKey = "auth_user"

// SetUserInContext attaches the user identity to the request context
func SetUserInContext(ctx context.Context, user UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext extracts the user identity set by the middleware
func GetUserFromContext(ctx context.Context) (UserContext, error) {
	user, ok := ctx.Value(userContextKey).(UserContext)
	if !ok || user.UserID == "" {
		return UserContext{}, errors.NewUnauthorizedError("no user in request context")
	}
	return user, nil
}
