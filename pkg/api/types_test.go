package api

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestUserJSONOmitsPasswordHash(t *testing.T) {
	u := User{
		ID:           "user_abcdefghijklmnopqrstuvwx",
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: "$2a$10$secret-hash-material",
	}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if strings.Contains(string(data), "secret-hash-material") {
		t.Errorf("serialized user leaks password hash: %s", data)
	}
	if strings.Contains(string(data), "password") {
		t.Errorf("serialized user contains a password field: %s", data)
	}
}

func TestAnswerJSONRoundTrip(t *testing.T) {
	a := Answer{
		ID:        "ans_abcdefghijklmnopqrstuvwx",
		Content:   "because",
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		AuthorID:  "user_abcdefghijklmnopqrstuvwx",
		PostID:    "post_abcdefghijklmnopqrstuvwx",
	}

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got Answer
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got != a {
		t.Errorf("round trip = %+v, want %+v", got, a)
	}
}
