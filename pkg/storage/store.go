package storage

import (
	"context"

	"github.com/frage-dev/frage/pkg/api"
)

// Store is the persistence contract for users, posts, and answers.
// Adapters live in the memory and postgres subpackages. All methods are
// tenant-scoped when a tenant identifier is present in the context, and
// return ErrNotFound / ErrConflict as appropriate.
type Store interface {
	CreateUser(ctx context.Context, user *api.User) error
	GetUserByEmail(ctx context.Context, email string) (*api.User, error)
	GetUserByUsername(ctx context.Context, username string) (*api.User, error)

	CreatePost(ctx context.Context, post *api.Post) error
	GetPost(ctx context.Context, id string) (*api.Post, error)
	ListPosts(ctx context.Context, skip, limit int) ([]api.Post, error)
	UpdatePost(ctx context.Context, post *api.Post) error
	// DeletePost removes a post and all of its answers.
	DeletePost(ctx context.Context, id string) error

	CreateAnswer(ctx context.Context, answer *api.Answer) error
	GetAnswer(ctx context.Context, id string) (*api.Answer, error)
	ListAnswersForPost(ctx context.Context, postID string) ([]api.Answer, error)
	UpdateAnswer(ctx context.Context, answer *api.Answer) error
	DeleteAnswer(ctx context.Context, id string) error

	HealthCheck(ctx context.Context) error
	Close() error
}
