package auth

import (
	"context"
	"errors"

	"github.com/frage-dev/frage/pkg/api"
	"github.com/frage-dev/frage/pkg/storage"
)

// ErrUnauthenticated is returned for every authentication failure:
// missing or invalid token, expired token, unknown user, and wrong
// password. Collapsing the causes into one error keeps callers from
// leaking which part of the check failed.
var ErrUnauthenticated = errors.New("authentication required")

// UserSource is the subset of the store the resolver needs.
type UserSource interface {
	GetUserByEmail(ctx context.Context, email string) (*api.User, error)
	GetUserByUsername(ctx context.Context, username string) (*api.User, error)
}

// Resolver recovers the authenticated user record behind a bearer token
// and authenticates username/password pairs for the login handler.
type Resolver struct {
	tokens *TokenService
	users  UserSource
}

// NewResolver creates a resolver backed by the given token service and
// user source.
func NewResolver(tokens *TokenService, users UserSource) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve validates the token and looks up the user record for its
// subject. A user deleted after token issuance is indistinguishable from
// a bad token: both return ErrUnauthenticated.
func (r *Resolver) Resolve(ctx context.Context, tokenStr string) (*api.User, error) {
	subject, err := r.tokens.Validate(tokenStr)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := r.users.GetUserByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	return user, nil
}

// Authenticate looks up a user by username and verifies the password
// against the stored hash. It is used only by the login handler.
func (r *Resolver) Authenticate(ctx context.Context, username, password string) (*api.User, error) {
	user, err := r.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Burn a hash comparison so unknown usernames take as long
			// as wrong passwords.
			VerifyPassword(password, "$2a$10$0000000000000000000000000000000000000000000000000000")
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrUnauthenticated
	}

	return user, nil
}

// Tokens exposes the underlying token service for handlers that issue
// tokens after a successful authentication.
func (r *Resolver) Tokens() *TokenService {
	return r.tokens
}
