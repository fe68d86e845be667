package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Authenticator implements registration and login over the credential
// store and the token service.
type Authenticator struct {
	users    UserRepository
	hasher   *PasswordHasher
	tokens   *TokenService
	logger   *slog.Logger
	observer Observer
}

// NewAuthenticator creates an Authenticator. A nil observer is allowed.
func NewAuthenticator(users UserRepository, hasher *PasswordHasher, tokens *TokenService, logger *slog.Logger, observer Observer) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Authenticator{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
		observer: observer,
	}
}

// Registration is the input to Register.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks field formats. The returned error wraps ErrInvalidInput.
func (r Registration) Validate() error {
	var problems []string

	if !IsValidUsername(r.Username) {
		problems = append(problems, "username must be 3-50 characters of letters, digits, '.', '_' or '-'")
	}
	if !IsValidEmail(r.Email) {
		problems = append(problems, "email must be a valid address of at most 120 characters")
	}
	if n := utf8.RuneCountInString(r.Password); n < minPasswordLength || n > maxPasswordLength {
		problems = append(problems, "password must be 8-128 characters")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// Register creates a new account with the user role. Nobody can register
// themselves as an admin.
func (a *Authenticator) Register(ctx context.Context, reg Registration) (*User, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)

	if err := reg.Validate(); err != nil {
		return nil, err
	}

	hash, err := a.hasher.Hash(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hash,
		Role:         RoleUser,
	}
	if err := a.users.Create(ctx, user); err != nil {
		return nil, err
	}

	a.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// LoginResult is a successful login.
type LoginResult struct {
	AccessToken string
	Claims      *Claims
	User        *User
}

// Login verifies the password for login (a username or an email) and
// issues a token. Unknown logins and wrong passwords both return
// ErrInvalidCredentials after comparable work.
func (a *Authenticator) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	user, err := a.users.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			a.hasher.burn(password)
			a.observer.ObserveAuth(OutcomeLoginFailed)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up login: %w", err)
	}

	ok, err := a.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		a.logger.ErrorContext(ctx, "stored password hash unreadable", "user_id", user.ID, "error", err)
		a.observer.ObserveAuth(OutcomeLoginFailed)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		a.observer.ObserveAuth(OutcomeLoginFailed)
		return nil, ErrInvalidCredentials
	}

	token, claims, err := a.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	a.observer.ObserveAuth(OutcomeLoginSucceeded)
	return &LoginResult{AccessToken: token, Claims: claims, User: user}, nil
}
