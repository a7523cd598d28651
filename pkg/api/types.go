package api

import "time"

// User is a registered account. The password hash is stored alongside the
// identity fields but is never serialized in API responses.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// Post is a question posted by a user. OwnerID is stamped server-side at
// creation and never changes afterwards.
type Post struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	OwnerID string `json:"owner_id"`
}

// Answer is a reply attached to a post. AuthorID and PostID are stamped
// server-side at creation and never change afterwards.
type Answer struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	AuthorID  string    `json:"author_id"`
	PostID    string    `json:"post_id"`
}

// RegisterRequest is the body of POST /users/.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreatePostRequest is the body of POST /posts/ and PATCH /posts/{id}.
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateAnswerRequest is the body of POST /posts/{id}/answers/ and
// PATCH /answers/{id}.
type CreateAnswerRequest struct {
	Content string `json:"content"`
}

// TokenResponse is the body returned by POST /token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
