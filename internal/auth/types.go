package auth

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 3-50 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,50}$`)

// emailPattern is a shape check only. Deliverability is not our problem.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

// Field limits enforced at registration.
const (
	maxEmailLength    = 120
	minPasswordLength = 8
	maxPasswordLength = 128
)

// IsValidUsername checks if a username meets format requirements.
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// IsValidEmail checks the email shape and length.
func IsValidEmail(email string) bool {
	return len(email) <= maxEmailLength && emailPattern.MatchString(email)
}

// Role is the authorisation tier of a principal.
// Authorisation is a flat switch over these values.
type Role string

const (
	// RoleUser may only act on records it owns.
	RoleUser Role = "user"

	// RoleAdmin may act on every record and read the audit trail.
	RoleAdmin Role = "admin"
)

// ParseRole normalises a stored role string. Anything unrecognised is
// returned as-is and will be denied by the guard.
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a principal: an account that can log in and own records.
// ID is generated at creation, never changes and is the token subject.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialised
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sentinel errors for auth operations.
//
// ErrMalformedToken, ErrInvalidToken and ErrPrincipalNotFound are recovered
// inside the gate and never reach a client. ErrAuthenticationRequired and
// ErrAccessDenied are the only errors surfaced by authorisation.
var (
	ErrMalformedToken         = errors.New("malformed token")
	ErrInvalidToken           = errors.New("invalid token")
	ErrPrincipalNotFound      = errors.New("principal not found")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrAccessDenied           = errors.New("access denied")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidInput       = errors.New("invalid input")
)
