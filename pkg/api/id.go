package api

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	idLength = 24
	charset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	userIDPrefix   = "user_"
	postIDPrefix   = "post_"
	answerIDPrefix = "ans_"
)

var (
	userIDPattern   = regexp.MustCompile(`^user_[a-zA-Z0-9]{24}$`)
	postIDPattern   = regexp.MustCompile(`^post_[a-zA-Z0-9]{24}$`)
	answerIDPattern = regexp.MustCompile(`^ans_[a-zA-Z0-9]{24}$`)
)

// NewUserID generates a new user ID with the "user_" prefix followed by
// 24 cryptographically random alphanumeric characters.
func NewUserID() string {
	return userIDPrefix + randomAlphanumeric(idLength)
}

// NewPostID generates a new post ID with the "post_" prefix.
func NewPostID() string {
	return postIDPrefix + randomAlphanumeric(idLength)
}

// NewAnswerID generates a new answer ID with the "ans_" prefix.
func NewAnswerID() string {
	return answerIDPrefix + randomAlphanumeric(idLength)
}

// ValidateUserID checks whether the given string is a well-formed user ID.
func ValidateUserID(id string) bool {
	return userIDPattern.MatchString(id)
}

// ValidatePostID checks whether the given string is a well-formed post ID.
func ValidatePostID(id string) bool {
	return postIDPattern.MatchString(id)
}

// ValidateAnswerID checks whether the given string is a well-formed answer ID.
func ValidateAnswerID(id string) bool {
	return answerIDPattern.MatchString(id)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}
