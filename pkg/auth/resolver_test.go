package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frage-dev/frage/pkg/api"
	"github.com/frage-dev/frage/pkg/storage"
)

// fakeUsers is an in-memory UserSource keyed by email and username.
type fakeUsers struct {
	byEmail    map[string]*api.User
	byUsername map[string]*api.User
	err        error
}

func newFakeUsers(users ...*api.User) *fakeUsers {
	f := &fakeUsers{
		byEmail:    make(map[string]*api.User),
		byUsername: make(map[string]*api.User),
	}
	for _, u := range users {
		f.byEmail[u.Email] = u
		f.byUsername[u.Username] = u
	}
	return f
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*api.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetUserByUsername(_ context.Context, username string) (*api.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byUsername[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return u, nil
}

func testUser(t *testing.T) *api.User {
	t.Helper()
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	return &api.User{
		ID:           api.NewUserID(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
	}
}

func TestResolver_Resolve(t *testing.T) {
	user := testUser(t)
	resolver := NewResolver(NewTokenService("test-secret", time.Minute), newFakeUsers(user))

	token, err := resolver.Tokens().Issue(user.Email)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	got, err := resolver.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("resolved user %q, want %q", got.ID, user.ID)
	}
}

func TestResolver_Resolve_BadToken(t *testing.T) {
	resolver := NewResolver(NewTokenService("test-secret", time.Minute), newFakeUsers())

	if _, err := resolver.Resolve(context.Background(), "garbage"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Resolve = %v, want ErrUnauthenticated", err)
	}
}

func TestResolver_Resolve_UserDeleted(t *testing.T) {
	// Valid token whose subject no longer exists in the store.
	resolver := NewResolver(NewTokenService("test-secret", time.Minute), newFakeUsers())

	token, err := resolver.Tokens().Issue("gone@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := resolver.Resolve(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Resolve = %v, want ErrUnauthenticated", err)
	}
}

func TestResolver_Resolve_StoreError(t *testing.T) {
	users := newFakeUsers()
	users.err = errors.New("connection refused")
	resolver := NewResolver(NewTokenService("test-secret", time.Minute), users)

	token, err := resolver.Tokens().Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = resolver.Resolve(context.Background(), token)
	if err == nil || errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Resolve = %v, want underlying store error", err)
	}
}

func TestResolver_Authenticate(t *testing.T) {
	user := testUser(t)
	resolver := NewResolver(NewTokenService("test-secret", time.Minute), newFakeUsers(user))

	got, err := resolver.Authenticate(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("authenticated user %q, want %q", got.ID, user.ID)
	}

	if _, err := resolver.Authenticate(context.Background(), "alice", "wrong"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("wrong password: err = %v, want ErrUnauthenticated", err)
	}
	if _, err := resolver.Authenticate(context.Background(), "nobody", "s3cret"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("unknown username: err = %v, want ErrUnauthenticated", err)
	}
}
