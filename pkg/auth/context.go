package auth

import (
	"context"
	"errors"
)

type contextKey string

const userContextKey contextKey = "user"

// ErrNoUser is returned when a request carries no authenticated user.
var ErrNoUser = errors.New("no authenticated user in context")

// UserIdentity is the authenticated caller.
type UserIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SetUserInContext stores the user in the context
func SetUserInContext(ctx context.Context, user *UserIdentity) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext retrieves the user from the context
func GetUserFromContext(ctx context.Context) (*UserIdentity, error) {
	user, ok := ctx.Value(userContextKey).(*UserIdentity)
	if !ok || user == nil || user.ID == "" {
		return nil, ErrNoUser
	}
	return user, nil
}
