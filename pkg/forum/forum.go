// Package forum implements the resource handlers of the Q&A service:
// registration, login, and ownership-checked CRUD over posts and answers.
//
// The Service is transport-agnostic. It receives already-decoded request
// payloads plus, where an operation requires it, the resolved calling
// user, and performs exactly one persistence operation sequence. HTTP
// concerns (routing, serialization, status codes) live in pkg/transport.
package forum

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frage-dev/frage/pkg/api"
	"github.com/frage-dev/frage/pkg/auth"
	"github.com/frage-dev/frage/pkg/storage"
)

// Pagination limits for ListPosts.
const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// Service implements the Q&A operations on top of a storage.Store and
// the auth resolver.
type Service struct {
	store    storage.Store
	resolver *auth.Resolver
	limits   api.ValidationConfig
}

// New creates a forum service.
func New(store storage.Store, resolver *auth.Resolver) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		limits:   api.DefaultValidationConfig(),
	}
}

// Register creates a new user account. The password is hashed before it
// touches the store; the plaintext is never persisted. Fails with a
// conflict error if the email or username is already registered.
func (s *Service) Register(ctx context.Context, req *api.RegisterRequest) (*api.User, error) {
	if apiErr := api.ValidateRegister(req, s.limits); apiErr != nil {
		return nil, apiErr
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &api.User{
		ID:           api.NewUserID(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, api.NewConflictError("email or username already registered")
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// Login authenticates a username/password pair and issues a bearer token
// on success.
func (s *Service) Login(ctx context.Context, username, password string) (*api.TokenResponse, error) {
	user, err := s.resolver.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			return nil, api.NewUnauthenticatedError("incorrect username or password")
		}
		return nil, err
	}

	token, err := s.resolver.Tokens().Issue(user.Email)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &api.TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// CreatePost creates a post owned by the caller. The owner is stamped
// from the resolved user, never from the request body.
func (s *Service) CreatePost(ctx context.Context, caller *api.User, req *api.CreatePostRequest) (*api.Post, error) {
	if apiErr := api.ValidatePost(req, s.limits); apiErr != nil {
		return nil, apiErr
	}

	post := &api.Post{
		ID:      api.NewPostID(),
		Title:   req.Title,
		Content: req.Content,
		OwnerID: caller.ID,
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	return post, nil
}

// ListPosts returns posts in creation order. Negative skip clamps to
// zero; a non-positive limit falls back to the default and limits are
// capped at MaxListLimit.
func (s *Service) ListPosts(ctx context.Context, skip, limit int) ([]api.Post, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	posts, err := s.store.ListPosts(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	if posts == nil {
		posts = []api.Post{}
	}
	return posts, nil
}

// UpdatePost overwrites the title and content of a post owned by the
// caller. A post that does not exist and a post owned by someone else
// produce the same not-found error, so callers cannot probe for other
// users' resources.
func (s *Service) UpdatePost(ctx context.Context, caller *api.User, id string, req *api.CreatePostRequest) (*api.Post, error) {
	if apiErr := api.ValidatePost(req, s.limits); apiErr != nil {
		return nil, apiErr
	}

	post, err := s.ownedPost(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	post.Title = req.Title
	post.Content = req.Content

	if err := s.store.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewNotFoundError("post not found")
		}
		return nil, fmt.Errorf("updating post: %w", err)
	}

	return post, nil
}

// DeletePost removes a post owned by the caller, along with its answers.
func (s *Service) DeletePost(ctx context.Context, caller *api.User, id string) error {
	if _, err := s.ownedPost(ctx, caller, id); err != nil {
		return err
	}

	if err := s.store.DeletePost(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return api.NewNotFoundError("post not found")
		}
		return fmt.Errorf("deleting post: %w", err)
	}

	return nil
}

// CreateAnswer attaches an answer to a post. The author and post are
// stamped server-side. The post must exist.
func (s *Service) CreateAnswer(ctx context.Context, caller *api.User, postID string, req *api.CreateAnswerRequest) (*api.Answer, error) {
	if apiErr := api.ValidateAnswer(req, s.limits); apiErr != nil {
		return nil, apiErr
	}

	if _, err := s.store.GetPost(ctx, postID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewNotFoundError("post not found")
		}
		return nil, fmt.Errorf("looking up post: %w", err)
	}

	answer := &api.Answer{
		ID:        api.NewAnswerID(),
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
		AuthorID:  caller.ID,
		PostID:    postID,
	}

	if err := s.store.CreateAnswer(ctx, answer); err != nil {
		return nil, fmt.Errorf("creating answer: %w", err)
	}

	return answer, nil
}

// ListAnswers returns all answers for a post in creation order. A post
// that does not exist yields an empty list, not an error.
func (s *Service) ListAnswers(ctx context.Context, postID string) ([]api.Answer, error) {
	answers, err := s.store.ListAnswersForPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("listing answers: %w", err)
	}
	if answers == nil {
		answers = []api.Answer{}
	}
	return answers, nil
}

// UpdateAnswer overwrites the content of an answer authored by the
// caller. Identity and ownership fields are left untouched.
func (s *Service) UpdateAnswer(ctx context.Context, caller *api.User, id string, req *api.CreateAnswerRequest) (*api.Answer, error) {
	if apiErr := api.ValidateAnswer(req, s.limits); apiErr != nil {
		return nil, apiErr
	}

	answer, err := s.ownedAnswer(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	answer.Content = req.Content

	if err := s.store.UpdateAnswer(ctx, answer); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewNotFoundError("answer not found")
		}
		return nil, fmt.Errorf("updating answer: %w", err)
	}

	return answer, nil
}

// DeleteAnswer removes an answer authored by the caller.
func (s *Service) DeleteAnswer(ctx context.Context, caller *api.User, id string) error {
	if _, err := s.ownedAnswer(ctx, caller, id); err != nil {
		return err
	}

	if err := s.store.DeleteAnswer(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return api.NewNotFoundError("answer not found")
		}
		return fmt.Errorf("deleting answer: %w", err)
	}

	return nil
}

// ownedPost fetches a post and verifies the caller owns it. Absent and
// not-owned collapse into the same not-found error.
func (s *Service) ownedPost(ctx context.Context, caller *api.User, id string) (*api.Post, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewNotFoundError("post not found")
		}
		return nil, fmt.Errorf("looking up post: %w", err)
	}
	if post.OwnerID != caller.ID {
		return nil, api.NewNotFoundError("post not found")
	}
	return post, nil
}

// ownedAnswer fetches an answer and verifies the caller authored it.
func (s *Service) ownedAnswer(ctx context.Context, caller *api.User, id string) (*api.Answer, error) {
	answer, err := s.store.GetAnswer(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewNotFoundError("answer not found")
		}
		return nil, fmt.Errorf("looking up answer: %w", err)
	}
	if answer.AuthorID != caller.ID {
		return nil, api.NewNotFoundError("answer not found")
	}
	return answer, nil
}
