// Package integration exercises the full HTTP stack end to end: real
// server wiring (adapter + middleware) over the in-memory store, driven
// through an httptest server with a plain http.Client.
package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/frage-dev/frage/pkg/api"
	"github.com/frage-dev/frage/pkg/auth"
	"github.com/frage-dev/frage/pkg/forum"
	"github.com/frage-dev/frage/pkg/storage/memory"
	"github.com/frage-dev/frage/pkg/transport"
	transporthttp "github.com/frage-dev/frage/pkg/transport/http"
)

// testServer bundles the running server with a client.
type testServer struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
}

func startServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.New()
	t.Cleanup(func() { store.Close() })

	resolver := auth.NewResolver(auth.NewTokenService("integration-secret", 30*time.Minute), store)
	service := forum.New(store, resolver)

	cfg := transporthttp.DefaultConfig()
	cfg.EnableMetrics = false
	adapter := transporthttp.NewAdapter(service, resolver, nil, store, cfg)

	handler := transport.Chain(
		transport.RequestID(),
		transport.Recovery(nil),
		transport.Tenant(),
	)(adapter.Handler())

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &testServer{t: t, server: server, client: server.Client()}
}

// do issues a request and returns the response. A non-empty token is
// attached as a bearer credential; a non-empty body is sent as JSON.
func (ts *testServer) do(method, path, token, body string) *http.Response {
	ts.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.server.URL+path, reader)
	if err != nil {
		ts.t.Fatalf("building request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.client.Do(req)
	if err != nil {
		ts.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// decode unmarshals the response body into v and closes it.
func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

// register creates a user account and returns the created user.
func (ts *testServer) register(username, email, password string) api.User {
	ts.t.Helper()

	resp := ts.do(http.MethodPost, "/users/", "",
		`{"username":"`+username+`","email":"`+email+`","password":"`+password+`"}`)
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		ts.t.Fatalf("register %s: status = %d, body = %s", username, resp.StatusCode, body)
	}

	var user api.User
	decode(ts.t, resp, &user)
	return user
}

// login exchanges credentials for a bearer token.
func (ts *testServer) login(username, password string) string {
	ts.t.Helper()

	form := url.Values{"username": {username}, "password": {password}}
	resp, err := ts.client.Post(ts.server.URL+"/token",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		ts.t.Fatalf("login %s: %v", username, err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		ts.t.Fatalf("login %s: status = %d, body = %s", username, resp.StatusCode, body)
	}

	var token api.TokenResponse
	decode(ts.t, resp, &token)
	if token.AccessToken == "" || token.TokenType != "bearer" {
		ts.t.Fatalf("token response = %+v", token)
	}
	return token.AccessToken
}
