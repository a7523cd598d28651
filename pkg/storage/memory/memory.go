// Package memory provides an in-memory storage.Store for testing and
// lightweight deployments. Records are stored in memory and lost when
// the process restarts.
package memory

import (
	"context"
	"sync"

	"github.com/frage-dev/frage/pkg/api"
	"github.com/frage-dev/frage/pkg/storage"
)

// userEntry, postEntry, and answerEntry hold a record plus the tenant it
// belongs to.
type userEntry struct {
	user     api.User
	tenantID string
}

type postEntry struct {
	post     api.Post
	tenantID string
}

type answerEntry struct {
	answer   api.Answer
	tenantID string
}

// Store is an in-memory storage.Store. All operations are safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	users   map[string]*userEntry
	posts   map[string]*postEntry
	answers map[string]*answerEntry

	// postOrder and answerOrder preserve creation order for listing.
	postOrder   []string
	answerOrder []string
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:   make(map[string]*userEntry),
		posts:   make(map[string]*postEntry),
		answers: make(map[string]*answerEntry),
	}
}

// CreateUser persists a user. Returns ErrConflict when the email or
// username is already taken within the tenant.
func (s *Store) CreateUser(ctx context.Context, user *api.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenantID := storage.GetTenant(ctx)

	if _, exists := s.users[user.ID]; exists {
		return storage.ErrConflict
	}
	for _, e := range s.users {
		if e.tenantID != tenantID {
			continue
		}
		if e.user.Email == user.Email || e.user.Username == user.Username {
			return storage.ErrConflict
		}
	}

	s.users[user.ID] = &userEntry{user: *user, tenantID: tenantID}
	return nil
}

// GetUserByEmail looks up a user by email within the tenant.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenantID := storage.GetTenant(ctx)
	for _, e := range s.users {
		if e.tenantID == tenantID && e.user.Email == email {
			u := e.user
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

// GetUserByUsername looks up a user by username within the tenant.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenantID := storage.GetTenant(ctx)
	for _, e := range s.users {
		if e.tenantID == tenantID && e.user.Username == username {
			u := e.user
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

// CreatePost persists a post.
func (s *Store) CreatePost(ctx context.Context, post *api.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[post.ID]; exists {
		return storage.ErrConflict
	}

	s.posts[post.ID] = &postEntry{post: *post, tenantID: storage.GetTenant(ctx)}
	s.postOrder = append(s.postOrder, post.ID)
	return nil
}

// GetPost retrieves a post by ID within the tenant.
func (s *Store) GetPost(ctx context.Context, id string) (*api.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.posts[id]
	if !ok || e.tenantID != storage.GetTenant(ctx) {
		return nil, storage.ErrNotFound
	}
	p := e.post
	return &p, nil
}

// ListPosts returns posts in creation order, honoring skip and limit.
func (s *Store) ListPosts(ctx context.Context, skip, limit int) ([]api.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenantID := storage.GetTenant(ctx)

	var posts []api.Post
	seen := 0
	for _, id := range s.postOrder {
		e, ok := s.posts[id]
		if !ok || e.tenantID != tenantID {
			continue
		}
		if seen < skip {
			seen++
			continue
		}
		seen++
		posts = append(posts, e.post)
		if len(posts) >= limit {
			break
		}
	}
	return posts, nil
}

// UpdatePost overwrites a stored post.
func (s *Store) UpdatePost(ctx context.Context, post *api.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.posts[post.ID]
	if !ok || e.tenantID != storage.GetTenant(ctx) {
		return storage.ErrNotFound
	}
	e.post = *post
	return nil
}

// DeletePost removes a post and all of its answers.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.posts[id]
	if !ok || e.tenantID != storage.GetTenant(ctx) {
		return storage.ErrNotFound
	}

	delete(s.posts, id)
	s.postOrder = removeID(s.postOrder, id)

	// Cascade to answers, mirroring the postgres foreign key.
	for answerID, ae := range s.answers {
		if ae.answer.PostID == id {
			delete(s.answers, answerID)
			s.answerOrder = removeID(s.answerOrder, answerID)
		}
	}
	return nil
}

// CreateAnswer persists an answer.
func (s *Store) CreateAnswer(ctx context.Context, answer *api.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.answers[answer.ID]; exists {
		return storage.ErrConflict
	}

	s.answers[answer.ID] = &answerEntry{answer: *answer, tenantID: storage.GetTenant(ctx)}
	s.answerOrder = append(s.answerOrder, answer.ID)
	return nil
}

// GetAnswer retrieves an answer by ID within the tenant.
func (s *Store) GetAnswer(ctx context.Context, id string) (*api.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.answers[id]
	if !ok || e.tenantID != storage.GetTenant(ctx) {
		return nil, storage.ErrNotFound
	}
	a := e.answer
	return &a, nil
}

// ListAnswersForPost returns a post's answers in creation order. An
// unknown post yields an empty result, not an error.
func (s *Store) ListAnswersForPost(ctx context.Context, postID string) ([]api.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenantID := storage.GetTenant(ctx)

	var answers []api.Answer
	for _, id := range s.answerOrder {
		e, ok := s.answers[id]
		if !ok || e.tenantID != tenantID {
			continue
		}
		if e.answer.PostID == postID {
			answers = append(answers, e.answer)
		}
	}
	return answers, nil
}

// UpdateAnswer overwrites a stored answer.
func (s *Store) UpdateAnswer(ctx context.Context, answer *api.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.answers[answer.ID]
	if !ok || e.tenantID != storage.GetTenant(ctx) {
		return storage.ErrNotFound
	}
	e.answer = *answer
	return nil
}

// DeleteAnswer removes an answer.
func (s *Store) DeleteAnswer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.answers[id]
	if !ok || e.tenantID != storage.GetTenant(ctx) {
		return storage.ErrNotFound
	}

	delete(s.answers, id)
	s.answerOrder = removeID(s.answerOrder, id)
	return nil
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
