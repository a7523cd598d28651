package auth

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the validity window of an issued token when no
// explicit TTL is configured.
const DefaultTokenTTL = 30 * time.Minute

// Sentinel errors returned by Validate.
var (
	// ErrTokenExpired is returned when the token signature is valid but
	// the expiry timestamp has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned for malformed tokens, bad signatures,
	// unexpected signing methods, and missing claims.
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenService issues and validates signed, time-limited bearer tokens.
// Tokens are HS256 JWTs carrying the subject (the user's email) and an
// absolute expiry. The signing secret is fixed at construction and never
// rotated during the process lifetime.
type TokenService struct {
	secret []byte
	ttl    time.Duration

	// now is the clock used for issuance and expiry checks. Tests
	// override it to simulate the passage of time.
	now func() time.Time
}

// NewTokenService creates a token service with the given signing secret
// and TTL. A zero ttl falls back to DefaultTokenTTL.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue produces a signed token embedding the subject and an expiry of
// now plus the configured TTL.
func (s *TokenService) Issue(subject string) (string, error) {
	return s.IssueWithTTL(subject, s.ttl)
}

// IssueWithTTL produces a signed token with an explicit validity window.
func (s *TokenService) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwtlib.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature and expiry of a token and returns the
// embedded subject. It returns ErrTokenExpired for tokens past their
// expiry and ErrTokenInvalid for everything else that is wrong with the
// token (bad signature, wrong algorithm, malformed structure, missing
// subject).
func (s *TokenService) Validate(tokenStr string) (string, error) {
	parsed, err := jwtlib.ParseWithClaims(tokenStr, &jwtlib.RegisteredClaims{},
		func(t *jwtlib.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}),
		jwtlib.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*jwtlib.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}
