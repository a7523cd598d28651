// Package http adapts the forum service to HTTP. The adapter owns the
// route table, request decoding, and response serialization; the
// semantics live in pkg/forum.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frage-dev/frage/pkg/api"
	"github.com/frage-dev/frage/pkg/auth"
	"github.com/frage-dev/frage/pkg/forum"
	"github.com/frage-dev/frage/pkg/transport"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Adapter serves the Q&A API over HTTP. Routes requiring authentication
// are wrapped with the auth middleware; public routes are registered
// directly.
type Adapter struct {
	service *forum.Service
	health  HealthChecker
	mux     *http.ServeMux
	config  Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	MaxBodySize   int64
	EnableMetrics bool
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize:   1 << 20, // 1 MB
		EnableMetrics: true,
	}
}

// NewAdapter creates an HTTP adapter for the forum service. The limiter
// is optional; pass nil to disable rate limiting on authenticated
// routes. The health checker is optional; when nil, /healthz reports
// liveness only.
func NewAdapter(service *forum.Service, resolver *auth.Resolver, limiter auth.RateLimiter, health HealthChecker, cfg Config) *Adapter {
	a := &Adapter{
		service: service,
		health:  health,
		mux:     http.NewServeMux(),
		config:  cfg,
	}

	protected := auth.Require(resolver, limiter)

	a.mux.HandleFunc("POST /users/", a.handleRegister)
	a.mux.HandleFunc("POST /token", a.handleLogin)
	a.mux.Handle("GET /users/me/", protected(http.HandlerFunc(a.handleMe)))

	a.mux.Handle("POST /posts/", protected(http.HandlerFunc(a.handleCreatePost)))
	a.mux.HandleFunc("GET /posts/", a.handleListPosts)
	a.mux.Handle("PATCH /posts/{id}", protected(http.HandlerFunc(a.handleUpdatePost)))
	a.mux.Handle("DELETE /posts/{id}", protected(http.HandlerFunc(a.handleDeletePost)))

	a.mux.Handle("POST /posts/{id}/answers/", protected(http.HandlerFunc(a.handleCreateAnswer)))
	a.mux.HandleFunc("GET /posts/{id}/answers/", a.handleListAnswers)
	a.mux.Handle("PATCH /answers/{id}", protected(http.HandlerFunc(a.handleUpdateAnswer)))
	a.mux.Handle("DELETE /answers/{id}", protected(http.HandlerFunc(a.handleDeleteAnswer)))

	a.mux.HandleFunc("GET /healthz", a.handleHealthz)
	if cfg.EnableMetrics {
		a.mux.Handle("GET /metrics", promhttp.Handler())
	}

	return a
}

// Handler returns the http.Handler for this adapter. Use this to
// integrate with an http.Server or test with httptest.
func (a *Adapter) Handler() http.Handler {
	return a.mux
}

// decodeJSON decodes a JSON request body into v, enforcing the
// Content-Type and body size limits.
func (a *Adapter) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return false
		}
		transport.WriteAPIError(w,
			api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()))
		return false
	}

	return true
}

// caller returns the authenticated user injected by the auth middleware.
// Protected routes are always wrapped, so a missing user is a wiring bug.
func caller(w http.ResponseWriter, r *http.Request) (*api.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		transport.WriteAPIError(w, api.NewServerError("no authenticated user in request context"))
		return nil, false
	}
	return user, true
}

// handleRegister handles POST /users/.
func (a *Adapter) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	user, err := a.service.Register(r.Context(), &req)
	if err != nil {
		transport.WriteError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, user)
}

// handleLogin handles POST /token. Credentials arrive form-encoded, the
// way OAuth2 password-grant clients send them.
func (a *Adapter) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	if err := r.ParseForm(); err != nil {
		transport.WriteAPIError(w,
			api.NewInvalidRequestError("body", "invalid form data"))
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		transport.WriteAPIError(w,
			api.NewInvalidRequestError("username", "username and password are required"))
		return
	}

	token, err := a.service.Login(r.Context(), username, password)
	if err != nil {
		transport.WriteError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, token)
}

// handleMe handles GET /users/me/.
func (a *Adapter) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	transport.WriteJSON(w, http.StatusOK, user)
}

// handleCreatePost handles POST /posts/.
func (a *Adapter) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	var req api.CreatePostRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	post, err := a.service.CreatePost(r.Context(), user, &req)
	if err != nil {
		transport.WriteError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, post)
}

// handleListPosts handles GET /posts/.
func (a *Adapter) handleListPosts(w http.ResponseWriter, r *http.Request) {
	skip, limit, apiErr := parsePagination(r)
	if apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	posts, err := a.service.ListPosts(r.Context(), skip, limit)
	if err != nil {
		transport.WriteError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, posts)
}

// handleUpdatePost handles PATCH /posts/{id}.
func (a *Adapter) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if !api.ValidatePostID(id) {
		transport.WriteAPIError(w, api.NewNotFoundError("post not found"))
		return
	}

	var req api.CreatePostRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	post, err := a.service.UpdatePost(r.Context(), user, id, &req)
	if err != nil {
		transport.WriteError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, post)
}

// handleDeletePost handles DELETE /posts/{id}.
func (a *Adapter) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if !api.ValidatePostID(id) {
		transport.WriteAPIError(w, api.NewNotFoundError("post not found"))
		return
	}

	if err := a.service.DeletePost(r.Context(), user, id); err != nil {
		transport.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleCreateAnswer handles POST /posts/{id}/answers/.
func (a *Adapter) handleCreateAnswer(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	postID := r.PathValue("id")
	if !api.ValidatePostID(postID) {
		transport.WriteAPIError(w, api.NewNotFoundError("post not found"))
		return
	}

	var req api.CreateAnswerRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	answer, err := a.service.CreateAnswer(r.Context(), user, postID, &req)
	if err != nil {
		transport.WriteError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, answer)
}

// handleListAnswers handles GET /posts/{id}/answers/.
func (a *Adapter) handleListAnswers(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	if !api.ValidatePostID(postID) {
		// Unknown post yields an empty list, so a malformed ID does too.
		transport.WriteJSON(w, http.StatusOK, []api.Answer{})
		return
	}

	answers, err := a.service.ListAnswers(r.Context(), postID)
	if err != nil {
		transport.WriteError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, answers)
}

// handleUpdateAnswer handles PATCH /answers/{id}.
func (a *Adapter) handleUpdateAnswer(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if !api.ValidateAnswerID(id) {
		transport.WriteAPIError(w, api.NewNotFoundError("answer not found"))
		return
	}

	var req api.CreateAnswerRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	answer, err := a.service.UpdateAnswer(r.Context(), user, id, &req)
	if err != nil {
		transport.WriteError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, answer)
}

// handleDeleteAnswer handles DELETE /answers/{id}.
func (a *Adapter) handleDeleteAnswer(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if !api.ValidateAnswerID(id) {
		transport.WriteAPIError(w, api.NewNotFoundError("answer not found"))
		return
	}

	if err := a.service.DeleteAnswer(r.Context(), user, id); err != nil {
		transport.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleHealthz handles GET /healthz.
func (a *Adapter) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if a.health != nil {
		if err := a.health.HealthCheck(r.Context()); err != nil {
			transport.WriteErrorResponse(w,
				api.NewServerError("store unavailable"),
				http.StatusServiceUnavailable,
			)
			return
		}
	}
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parsePagination extracts skip and limit from the query string.
// Non-numeric values are a validation error; range clamping happens in
// the service.
func parsePagination(r *http.Request) (skip, limit int, apiErr *api.APIError) {
	q := r.URL.Query()

	if s := q.Get("skip"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, api.NewInvalidRequestError("skip", "skip must be an integer")
		}
		skip = n
	}

	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			return 0, 0, api.NewInvalidRequestError("limit", "limit must be an integer")
		}
		limit = n
	}

	return skip, limit, nil
}
