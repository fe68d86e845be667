package auth

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *recordingObserver) {
	t.Helper()

	db := testDB(t)
	tokens, err := NewTokenService(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	observer := &recordingObserver{}
	return NewAuthenticator(NewUserRepository(db), testHasher(t), tokens, nil, observer), observer
}

func TestAuthenticator_RegisterThenLogin(t *testing.T) {
	a, observer := newTestAuthenticator(t)
	ctx := context.Background()

	user, err := a.Register(ctx, Registration{Username: "alice", Email: "alice@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Role != RoleUser || user.ID == "" {
		t.Errorf("Register() = id %q role %q, want generated id and role user", user.ID, user.Role)
	}

	for _, login := range []string{"alice", "alice@example.com"} {
		res, err := a.Login(ctx, login, "s3cret-pass")
		if err != nil {
			t.Fatalf("Login(%q) error = %v", login, err)
		}
		if res.Claims.Subject != user.ID || res.User.ID != user.ID {
			t.Errorf("Login(%q) subject = %q user = %q, want %q", login, res.Claims.Subject, res.User.ID, user.ID)
		}

		claims, err := a.tokens.Validate(res.AccessToken, user.ID)
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if claims.Subject != user.ID {
			t.Errorf("Validate() subject = %q, want %q", claims.Subject, user.ID)
		}
	}

	want := []Outcome{OutcomeLoginSucceeded, OutcomeLoginSucceeded}
	if !slices.Equal(observer.outcomes, want) {
		t.Errorf("outcomes = %v, want %v", observer.outcomes, want)
	}
}

func TestAuthenticator_RegisterValidation(t *testing.T) {
	a, _ := newTestAuthenticator(t)

	tests := []struct {
		name string
		reg  Registration
	}{
		{"short username", Registration{"al", "al@example.com", "password123"}},
		{"long username", Registration{strings.Repeat("a", 51), "a@example.com", "password123"}},
		{"username with space", Registration{"al ice", "alice@example.com", "password123"}},
		{"username with at", Registration{"al@ice", "alice@example.com", "password123"}},
		{"bad email", Registration{"alice", "not-an-email", "password123"}},
		{"long email", Registration{"alice", strings.Repeat("a", 115) + "@x.com", "password123"}},
		{"short password", Registration{"alice", "alice@example.com", "short"}},
		{"long password", Registration{"alice", "alice@example.com", strings.Repeat("p", 129)}},
		{"seven multibyte characters", Registration{"alice", "alice@example.com", strings.Repeat("é", 7)}},
		{"129 multibyte characters", Registration{"alice", "alice@example.com", strings.Repeat("é", 129)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Register(context.Background(), tt.reg); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Register() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestAuthenticator_PasswordLengthCountsCharacters(t *testing.T) {
	a, _ := newTestAuthenticator(t)
	ctx := context.Background()

	tests := []struct {
		username string
		password string
	}{
		{"eight", strings.Repeat("é", 8)},
		{"maximum", strings.Repeat("密", 128)},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			reg := Registration{Username: tt.username, Email: tt.username + "@example.com", Password: tt.password}
			if _, err := a.Register(ctx, reg); err != nil {
				t.Fatalf("Register() error = %v", err)
			}
			if _, err := a.Login(ctx, tt.username, tt.password); err != nil {
				t.Errorf("Login() error = %v", err)
			}
		})
	}
}

func TestAuthenticator_RegisterDuplicates(t *testing.T) {
	a, _ := newTestAuthenticator(t)
	ctx := context.Background()

	if _, err := a.Register(ctx, Registration{"alice", "alice@example.com", "password123"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := a.Register(ctx, Registration{"alice", "new@example.com", "password123"}); !errors.Is(err, ErrUsernameExists) {
		t.Errorf("Register(duplicate username) error = %v, want ErrUsernameExists", err)
	}
	if _, err := a.Register(ctx, Registration{"alice2", "alice@example.com", "password123"}); !errors.Is(err, ErrEmailExists) {
		t.Errorf("Register(duplicate email) error = %v, want ErrEmailExists", err)
	}
}

func TestAuthenticator_LoginFailuresAreIndistinguishable(t *testing.T) {
	a, observer := newTestAuthenticator(t)
	ctx := context.Background()

	if _, err := a.Register(ctx, Registration{"alice", "alice@example.com", "password123"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, wrongPassword := a.Login(ctx, "alice", "password124")
	_, unknownUser := a.Login(ctx, "mallory", "password123")

	if !errors.Is(wrongPassword, ErrInvalidCredentials) || !errors.Is(unknownUser, ErrInvalidCredentials) {
		t.Fatalf("Login() errors = %v / %v, want ErrInvalidCredentials", wrongPassword, unknownUser)
	}
	if wrongPassword.Error() != unknownUser.Error() {
		t.Errorf("error messages differ: %q vs %q", wrongPassword, unknownUser)
	}
	want := []Outcome{OutcomeLoginFailed, OutcomeLoginFailed}
	if !slices.Equal(observer.outcomes, want) {
		t.Errorf("outcomes = %v, want %v", observer.outcomes, want)
	}
}

func TestAuthenticator_LoginStoreError(t *testing.T) {
	tokens, err := NewTokenService(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	a := NewAuthenticator(failingUsers{}, testHasher(t), tokens, nil, nil)
	_, err = a.Login(context.Background(), "alice", "password123")
	if err == nil {
		t.Fatal("Login() should fail when the store fails")
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Error("store failures are not credential failures")
	}
}

// failingUsers is a UserRepository whose lookups always fail.
type failingUsers struct{ UserRepository }

func (failingUsers) GetByLogin(context.Context, string) (*User, error) {
	return nil, errors.New("disk I/O error")
}
