package auth

import (
	"context"
	"errors"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const identityKey contextKey = "identity"

// ErrUserIDNotFound is returned when no user id exists in the request context.
// Handlers should return 401 when this error occurs.
var ErrUserIDNotFound = errors.New("user_id not found in context")

type identity struct {
	userID    string
	anonymous bool
}

// WithUserID returns a new context carrying the id of a user resolved from
// a session cookie.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, identityKey, identity{userID: userID})
}

// WithFallbackUserID returns a new context carrying the configured fallback
// identity for requests without a session.
func WithFallbackUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, identityKey, identity{userID: userID, anonymous: true})
}

// UserIDFromCtx extracts the acting user id, session or fallback.
// Returns "" and ErrUserIDNotFound if the request carries no identity.
func UserIDFromCtx(ctx context.Context) (string, error) {
	id, ok := ctx.Value(identityKey).(identity)
	if !ok || id.userID == "" {
		return "", ErrUserIDNotFound
	}
	return id.userID, nil
}

// SessionUserIDFromCtx is like UserIDFromCtx but ignores the fallback identity.
func SessionUserIDFromCtx(ctx context.Context) (string, error) {
	id, ok := ctx.Value(identityKey).(identity)
	if !ok || id.userID == "" || id.anonymous {
		return "", ErrUserIDNotFound
	}
	return id.userID, nil
}
