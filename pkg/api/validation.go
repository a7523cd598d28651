package api

import (
	"fmt"
	"regexp"
	"strings"
)

// emailPattern is a pragmatic syntax check, not a full RFC 5322 parser.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidationConfig holds configurable limits for request validation.
type ValidationConfig struct {
	MinUsernameLen int
	MaxUsernameLen int
	MinPasswordLen int
	MaxTitleLen    int
	MaxContentSize int
}

// DefaultValidationConfig returns a ValidationConfig with sensible defaults.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MinUsernameLen: 3,
		MaxUsernameLen: 64,
		MinPasswordLen: 4,
		MaxTitleLen:    200,
		MaxContentSize: 64 * 1024, // 64 KiB
	}
}

// ValidateRegister checks a RegisterRequest. It returns an *APIError
// describing the first validation failure, or nil if the request is valid.
func ValidateRegister(req *RegisterRequest, cfg ValidationConfig) *APIError {
	username := strings.TrimSpace(req.Username)
	if len(username) < cfg.MinUsernameLen {
		return NewInvalidRequestError("username",
			fmt.Sprintf("username must be at least %d characters", cfg.MinUsernameLen))
	}
	if len(username) > cfg.MaxUsernameLen {
		return NewInvalidRequestError("username",
			fmt.Sprintf("username exceeds maximum of %d characters", cfg.MaxUsernameLen))
	}

	if !emailPattern.MatchString(req.Email) {
		return NewInvalidRequestError("email", "email is not a valid address")
	}

	if len(req.Password) < cfg.MinPasswordLen {
		return NewInvalidRequestError("password",
			fmt.Sprintf("password must be at least %d characters", cfg.MinPasswordLen))
	}

	return nil
}

// ValidatePost checks a CreatePostRequest.
func ValidatePost(req *CreatePostRequest, cfg ValidationConfig) *APIError {
	if strings.TrimSpace(req.Title) == "" {
		return NewInvalidRequestError("title", "title is required")
	}
	if len(req.Title) > cfg.MaxTitleLen {
		return NewInvalidRequestError("title",
			fmt.Sprintf("title exceeds maximum of %d characters", cfg.MaxTitleLen))
	}
	if strings.TrimSpace(req.Content) == "" {
		return NewInvalidRequestError("content", "content is required")
	}
	if len(req.Content) > cfg.MaxContentSize {
		return NewInvalidRequestError("content",
			fmt.Sprintf("content exceeds maximum of %d bytes", cfg.MaxContentSize))
	}
	return nil
}

// ValidateAnswer checks a CreateAnswerRequest.
func ValidateAnswer(req *CreateAnswerRequest, cfg ValidationConfig) *APIError {
	if strings.TrimSpace(req.Content) == "" {
		return NewInvalidRequestError("content", "content is required")
	}
	if len(req.Content) > cfg.MaxContentSize {
		return NewInvalidRequestError("content",
			fmt.Sprintf("content exceeds maximum of %d bytes", cfg.MaxContentSize))
	}
	return nil
}
