package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of a jobtrack access token: sub, iat, exp and jti.
// The role is deliberately absent; it is re-read from the store on every
// request.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now for issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// WithLeeway tolerates clock skew of d when checking expiry. Zero is strict.
func WithLeeway(d time.Duration) TokenOption {
	return func(s *TokenService) {
		s.leeway = d
	}
}

// TokenService issues and validates HS256 access tokens.
//
// The signing key, lifetime and leeway are fixed at construction. The
// service holds no other state, so it is safe for concurrent use without
// locking.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	leeway   time.Duration
	now      func() time.Time

	verifier   *jwt.Parser
	structural *jwt.Parser
}

// NewTokenService creates a TokenService. The secret is copied so later
// changes to the caller's slice have no effect.
func NewTokenService(secret []byte, lifetime time.Duration, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	if lifetime <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}

	s := &TokenService{
		secret:   append([]byte(nil), secret...),
		lifetime: lifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.leeway < 0 {
		return nil, errors.New("token leeway must not be negative")
	}

	// Strict decoding rejects signatures whose unused trailing bits were
	// altered, so every single-character change fails verification.
	s.verifier = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithLeeway(s.leeway),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)
	s.structural = jwt.NewParser(jwt.WithStrictDecoding())

	return s, nil
}

// Lifetime returns the configured token lifetime.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}

// Issue signs a token whose subject is the principal's ID.
func (s *TokenService) Issue(principal *User) (string, *Claims, error) {
	if principal == nil || principal.ID == "" {
		return "", nil, errors.New("issuing token: principal has no identifier")
	}

	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("signing access token: %w", err)
	}
	return signed, claims, nil
}

// Validate verifies the signature and expiry of token. When expectedSubject
// is non-empty the token's subject must equal it.
//
// Every failure wraps ErrInvalidToken. A token is expired once now reaches
// exp (plus leeway, if configured).
func (s *TokenService) Validate(token, expectedSubject string) (*Claims, error) {
	parsed, err := s.verifier.ParseWithClaims(token, &Claims{}, s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if expectedSubject != "" && claims.Subject != expectedSubject {
		return nil, fmt.Errorf("%w: subject mismatch", ErrInvalidToken)
	}

	return claims, nil
}

// ExtractSubject returns the subject of a structurally well-formed token
// without checking its signature or expiry. It lets callers discard garbage
// before doing any lookup.
func (s *TokenService) ExtractSubject(token string) (string, error) {
	claims := &Claims{}
	if _, _, err := s.structural.ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrMalformedToken)
	}
	return claims.Subject, nil
}

func (s *TokenService) key(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return s.secret, nil
}
