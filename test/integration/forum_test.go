package integration

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/frage-dev/frage/pkg/api"
)

// TestFullLifecycle walks the whole user journey: registration, login,
// post creation, public listing, owner update, and the ownership wall
// against a second user.
func TestFullLifecycle(t *testing.T) {
	ts := startServer(t)

	// Alice registers and logs in.
	alice := ts.register("alice", "alice@x.com", "pw1234")
	aliceToken := ts.login("alice", "pw1234")

	// She creates a post.
	resp := ts.do(http.MethodPost, "/posts/", aliceToken, `{"title":"T","content":"C"}`)
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("create post: status = %d, body = %s", resp.StatusCode, body)
	}
	var post api.Post
	decode(t, resp, &post)
	if post.OwnerID != alice.ID {
		t.Fatalf("owner_id = %q, want %q", post.OwnerID, alice.ID)
	}

	// The post shows up in the public listing.
	resp = ts.do(http.MethodGet, "/posts/", "", "")
	var posts []api.Post
	decode(t, resp, &posts)
	found := false
	for _, p := range posts {
		if p.Title == "T" && p.OwnerID == alice.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("created post missing from listing: %+v", posts)
	}

	// Alice updates it.
	resp = ts.do(http.MethodPatch, "/posts/"+post.ID, aliceToken, `{"title":"T2","content":"C"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update post: status = %d", resp.StatusCode)
	}
	var updated api.Post
	decode(t, resp, &updated)
	if updated.Title != "T2" {
		t.Errorf("title = %q, want T2", updated.Title)
	}

	// Bob cannot delete Alice's post.
	ts.register("bob", "bob@x.com", "pw1234")
	bobToken := ts.login("bob", "pw1234")

	resp = ts.do(http.MethodDelete, "/posts/"+post.ID, bobToken, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("non-owner delete: status = %d, want 404", resp.StatusCode)
	}

	// The post survives.
	resp = ts.do(http.MethodGet, "/posts/", "", "")
	posts = nil
	decode(t, resp, &posts)
	if len(posts) != 1 || posts[0].Title != "T2" {
		t.Errorf("post did not survive non-owner delete: %+v", posts)
	}

	// Alice deletes it for real.
	resp = ts.do(http.MethodDelete, "/posts/"+post.ID, aliceToken, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("owner delete: status = %d, want 204", resp.StatusCode)
	}
}

func TestAnswersAcrossUsers(t *testing.T) {
	ts := startServer(t)

	ts.register("alice", "alice@x.com", "pw1234")
	aliceToken := ts.login("alice", "pw1234")
	bob := ts.register("bob", "bob@x.com", "pw1234")
	bobToken := ts.login("bob", "pw1234")

	resp := ts.do(http.MethodPost, "/posts/", aliceToken, `{"title":"Question","content":"Why?"}`)
	var post api.Post
	decode(t, resp, &post)

	// Bob answers Alice's post.
	resp = ts.do(http.MethodPost, "/posts/"+post.ID+"/answers/", bobToken, `{"content":"Because."}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create answer: status = %d", resp.StatusCode)
	}
	var answer api.Answer
	decode(t, resp, &answer)
	if answer.AuthorID != bob.ID {
		t.Errorf("author_id = %q, want %q", answer.AuthorID, bob.ID)
	}

	// Anyone can read the answers.
	resp = ts.do(http.MethodGet, "/posts/"+post.ID+"/answers/", "", "")
	var answers []api.Answer
	decode(t, resp, &answers)
	if len(answers) != 1 || answers[0].Content != "Because." {
		t.Errorf("answers = %+v", answers)
	}

	// Deleting the post cascades to its answers.
	resp = ts.do(http.MethodDelete, "/posts/"+post.ID, aliceToken, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete post: status = %d", resp.StatusCode)
	}

	resp = ts.do(http.MethodGet, "/posts/"+post.ID+"/answers/", "", "")
	answers = nil
	decode(t, resp, &answers)
	if len(answers) != 0 {
		t.Errorf("answers survived post delete: %+v", answers)
	}
}

func TestAuthBoundary(t *testing.T) {
	ts := startServer(t)
	ts.register("alice", "alice@x.com", "pw1234")

	// Mutations without a token are rejected with a challenge.
	resp := ts.do(http.MethodPost, "/posts/", "", `{"title":"T","content":"C"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if got := resp.Header.Get("WWW-Authenticate"); got != "Bearer" {
		t.Errorf("WWW-Authenticate = %q", got)
	}

	// A tampered token is rejected.
	token := ts.login("alice", "pw1234")
	resp = ts.do(http.MethodGet, "/users/me/", token+"x", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("tampered token: status = %d, want 401", resp.StatusCode)
	}

	// The real token works.
	resp = ts.do(http.MethodGet, "/users/me/", token, "")
	var me api.User
	decode(t, resp, &me)
	if me.Username != "alice" {
		t.Errorf("me = %+v", me)
	}
}

func TestTenantIsolationOverHTTP(t *testing.T) {
	ts := startServer(t)

	// Same email registers fine under two different tenants.
	for _, tenant := range []string{"acme", "globex"} {
		req, err := http.NewRequest(http.MethodPost, ts.server.URL+"/users/",
			strings.NewReader(`{"username":"alice","email":"alice@x.com","password":"pw1234"}`))
		if err != nil {
			t.Fatalf("building request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Tenant-ID", tenant)

		resp, err := ts.client.Do(req)
		if err != nil {
			t.Fatalf("register in %s: %v", tenant, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("register in %s: status = %d, body = %s", tenant, resp.StatusCode, body)
		}
	}
}
