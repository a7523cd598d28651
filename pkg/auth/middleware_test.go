package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frage-dev/frage/pkg/api"
)

func requireHandler(t *testing.T, resolver *Resolver, limiter RateLimiter) http.Handler {
	t.Helper()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			t.Error("no user in context inside protected handler")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(user.Username))
	})
	return Require(resolver, limiter)(inner)
}

func TestRequire_MissingToken(t *testing.T) {
	resolver := NewResolver(NewTokenService("test-secret", time.Minute), newFakeUsers())
	handler := requireHandler(t, resolver, nil)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"bare token", "sometoken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/posts/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
				t.Errorf("WWW-Authenticate = %q, want %q", got, "Bearer")
			}

			var resp api.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decoding error body: %v", err)
			}
			if resp.Error == nil || resp.Error.Type != api.ErrorTypeUnauthenticated {
				t.Errorf("error body = %+v", resp.Error)
			}
		})
	}
}

func TestRequire_InvalidToken(t *testing.T) {
	resolver := NewResolver(NewTokenService("test-secret", time.Minute), newFakeUsers())
	handler := requireHandler(t, resolver, nil)

	req := httptest.NewRequest(http.MethodGet, "/posts/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequire_ValidToken(t *testing.T) {
	user := testUser(t)
	resolver := NewResolver(NewTokenService("test-secret", time.Minute), newFakeUsers(user))
	handler := requireHandler(t, resolver, nil)

	token, err := resolver.Tokens().Issue(user.Email)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/posts/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "alice" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "alice")
	}
}

func TestRequire_RateLimited(t *testing.T) {
	user := testUser(t)
	resolver := NewResolver(NewTokenService("test-secret", time.Minute), newFakeUsers(user))
	handler := requireHandler(t, resolver, NewInProcessLimiter(2))

	token, err := resolver.Tokens().Issue(user.Email)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/posts/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/posts/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}

func TestInProcessLimiter_PerSubject(t *testing.T) {
	limiter := NewInProcessLimiter(1)
	ctx := context.Background()

	if err := limiter.Allow(ctx, "user_a"); err != nil {
		t.Fatalf("first request for user_a rejected: %v", err)
	}
	if err := limiter.Allow(ctx, "user_b"); err != nil {
		t.Errorf("first request for user_b rejected: %v", err)
	}
	if err := limiter.Allow(ctx, "user_a"); err == nil {
		t.Error("second request for user_a within window allowed")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc123", "abc123", false},
		{"bearer abc123", "abc123", false},
		{"  Bearer   abc123  ", "abc123", false},
		{"", "", true},
		{"Bearer", "", true},
		{"Basic abc123", "", true},
		{"Bearer a b", "", true},
	}

	for _, tt := range tests {
		got, err := bearerToken(tt.header)
		if (err != nil) != tt.wantErr {
			t.Errorf("bearerToken(%q) error = %v, wantErr %v", tt.header, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
