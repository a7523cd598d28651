// Package postgres provides a PostgreSQL-backed storage.Store.
// It uses pgx/v5 for connection pooling and relies on database constraints
// for uniqueness and referential integrity: duplicate usernames and emails
// surface as unique violations, and deleting a post cascades to its
// answers via the foreign key.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/frage-dev/frage/pkg/api"
	"github.com/frage-dev/frage/pkg/storage"
)

// Store is a PostgreSQL-backed storage.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// CreateUser persists a user. Unique violations on the tenant-scoped
// username and email constraints surface as storage.ErrConflict.
func (s *Store) CreateUser(ctx context.Context, user *api.User) error {
	tenantID := storage.GetTenant(ctx)

	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, tenant_id, username, email, password_hash)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, tenantID, user.Username, user.Email, user.PasswordHash)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*api.User, error) {
	return s.getUser(ctx, "email", email)
}

// GetUserByUsername retrieves a user by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*api.User, error) {
	return s.getUser(ctx, "username", username)
}

// getUser is the internal user retrieval implementation. The column name
// is fixed by the two exported callers, never caller input.
func (s *Store) getUser(ctx context.Context, column, value string) (*api.User, error) {
	tenantID := storage.GetTenant(ctx)

	query := fmt.Sprintf(`
		SELECT id, username, email, password_hash
		FROM users
		WHERE %s = $1
	`, column)
	args := []any{value}

	if tenantID != "" {
		query += " AND tenant_id = $2"
		args = append(args, tenantID)
	}

	var user api.User
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	return &user, nil
}

// CreatePost persists a post.
func (s *Store) CreatePost(ctx context.Context, post *api.Post) error {
	tenantID := storage.GetTenant(ctx)

	_, err := s.pool.Exec(ctx, `
		INSERT INTO posts (id, tenant_id, title, content, owner_id)
		VALUES ($1, $2, $3, $4, $5)
	`, post.ID, tenantID, post.Title, post.Content, post.OwnerID)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting post: %w", err)
	}

	return nil
}

// GetPost retrieves a post by ID.
func (s *Store) GetPost(ctx context.Context, id string) (*api.Post, error) {
	tenantID := storage.GetTenant(ctx)

	query := `
		SELECT id, title, content, owner_id
		FROM posts
		WHERE id = $1
	`
	args := []any{id}

	if tenantID != "" {
		query += " AND tenant_id = $2"
		args = append(args, tenantID)
	}

	var post api.Post
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&post.ID, &post.Title, &post.Content, &post.OwnerID,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying post: %w", err)
	}

	return &post, nil
}

// ListPosts returns posts in creation order, honoring skip and limit.
func (s *Store) ListPosts(ctx context.Context, skip, limit int) ([]api.Post, error) {
	tenantID := storage.GetTenant(ctx)

	query := `
		SELECT id, title, content, owner_id
		FROM posts
	`
	args := []any{}
	if tenantID != "" {
		query += " WHERE tenant_id = $1"
		args = append(args, tenantID)
	}
	query += fmt.Sprintf(" ORDER BY created_at, id OFFSET $%d LIMIT $%d", len(args)+1, len(args)+2)
	args = append(args, skip, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	var posts []api.Post
	for rows.Next() {
		var p api.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.OwnerID); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating posts: %w", err)
	}

	return posts, nil
}

// UpdatePost overwrites the title and content of a stored post. Identity
// and ownership columns are not touched.
func (s *Store) UpdatePost(ctx context.Context, post *api.Post) error {
	tenantID := storage.GetTenant(ctx)

	query := "UPDATE posts SET title = $1, content = $2 WHERE id = $3"
	args := []any{post.Title, post.Content, post.ID}

	if tenantID != "" {
		query += " AND tenant_id = $4"
		args = append(args, tenantID)
	}

	result, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// DeletePost removes a post. Its answers are removed by the ON DELETE
// CASCADE foreign key.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	tenantID := storage.GetTenant(ctx)

	query := "DELETE FROM posts WHERE id = $1"
	args := []any{id}

	if tenantID != "" {
		query += " AND tenant_id = $2"
		args = append(args, tenantID)
	}

	result, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// CreateAnswer persists an answer.
func (s *Store) CreateAnswer(ctx context.Context, answer *api.Answer) error {
	tenantID := storage.GetTenant(ctx)

	_, err := s.pool.Exec(ctx, `
		INSERT INTO answers (id, tenant_id, content, created_at, author_id, post_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, answer.ID, tenantID, answer.Content, answer.CreatedAt, answer.AuthorID, answer.PostID)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting answer: %w", err)
	}

	return nil
}

// GetAnswer retrieves an answer by ID.
func (s *Store) GetAnswer(ctx context.Context, id string) (*api.Answer, error) {
	tenantID := storage.GetTenant(ctx)

	query := `
		SELECT id, content, created_at, author_id, post_id
		FROM answers
		WHERE id = $1
	`
	args := []any{id}

	if tenantID != "" {
		query += " AND tenant_id = $2"
		args = append(args, tenantID)
	}

	var a api.Answer
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&a.ID, &a.Content, &a.CreatedAt, &a.AuthorID, &a.PostID,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying answer: %w", err)
	}

	return &a, nil
}

// ListAnswersForPost returns a post's answers in creation order. An
// unknown post yields an empty result.
func (s *Store) ListAnswersForPost(ctx context.Context, postID string) ([]api.Answer, error) {
	tenantID := storage.GetTenant(ctx)

	query := `
		SELECT id, content, created_at, author_id, post_id
		FROM answers
		WHERE post_id = $1
	`
	args := []any{postID}

	if tenantID != "" {
		query += " AND tenant_id = $2"
		args = append(args, tenantID)
	}
	query += " ORDER BY created_at, id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying answers: %w", err)
	}
	defer rows.Close()

	var answers []api.Answer
	for rows.Next() {
		var a api.Answer
		if err := rows.Scan(&a.ID, &a.Content, &a.CreatedAt, &a.AuthorID, &a.PostID); err != nil {
			return nil, fmt.Errorf("scanning answer: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating answers: %w", err)
	}

	return answers, nil
}

// UpdateAnswer overwrites the content of a stored answer.
func (s *Store) UpdateAnswer(ctx context.Context, answer *api.Answer) error {
	tenantID := storage.GetTenant(ctx)

	query := "UPDATE answers SET content = $1 WHERE id = $2"
	args := []any{answer.Content, answer.ID}

	if tenantID != "" {
		query += " AND tenant_id = $3"
		args = append(args, tenantID)
	}

	result, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating answer: %w", err)
	}

	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// DeleteAnswer removes an answer.
func (s *Store) DeleteAnswer(ctx context.Context, id string) error {
	tenantID := storage.GetTenant(ctx)

	query := "DELETE FROM answers WHERE id = $1"
	args := []any{id}

	if tenantID != "" {
		query += " AND tenant_id = $2"
		args = append(args, tenantID)
	}

	result, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting answer: %w", err)
	}

	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
