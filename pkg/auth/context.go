package auth

import (
	"context"

	"github.com/frage-dev/frage/pkg/api"
)

// userKey is a private type for the user context key.
type userKey struct{}

// SetUser stores the authenticated user in the context.
func SetUser(ctx context.Context, user *api.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext retrieves the authenticated user. The second return
// is false if no user is set (unauthenticated request).
func UserFromContext(ctx context.Context) (*api.User, bool) {
	v, ok := ctx.Value(userKey{}).(*api.User)
	return v, ok
}
