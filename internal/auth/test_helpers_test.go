package auth

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/jobtrack-core/internal/infrastructure/database"
	"github.com/nerrad567/jobtrack-core/migrations"
)

// testSecret is 32 bytes, the configured minimum.
var testSecret = []byte("test-secret-key-at-least-32-chars")

// testDB opens a temp-file SQLite database with the real schema applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "auth-test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	return db.DB
}

// testHasher uses cheap Argon2id parameters so tests stay fast.
func testHasher(t *testing.T) *PasswordHasher {
	t.Helper()

	h, err := NewPasswordHasher(ArgonParams{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
	if err != nil {
		t.Fatalf("NewPasswordHasher() error = %v", err)
	}
	return h
}

// fixedClock is a settable clock for expiry tests.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// t0 is a whole second so NumericDate truncation does not shift expiry.
var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestTokenService(t *testing.T, clock *fixedClock, opts ...TokenOption) *TokenService {
	t.Helper()

	opts = append([]TokenOption{WithClock(clock.Now)}, opts...)
	svc, err := NewTokenService(testSecret, time.Hour, opts...)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return svc
}

// seedTestUser inserts a user whose password is "test-password".
func seedTestUser(t *testing.T, db *sql.DB, username string, role Role) *User {
	t.Helper()

	hash, err := testHasher(t).Hash("test-password")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	user := &User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
	}
	if err := NewUserRepository(db).Create(t.Context(), user); err != nil {
		t.Fatalf("creating test user %s: %v", username, err)
	}
	return user
}

// memoryStore is a PrincipalStore backed by a map, for gate tests that do
// not need SQL.
type memoryStore struct {
	users map[string]*User
	err   error
}

func (m *memoryStore) GetByID(_ context.Context, id string) (*User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, ErrPrincipalNotFound
	}
	cp := *u
	return &cp, nil
}

// recordingObserver collects outcomes.
type recordingObserver struct {
	outcomes []Outcome
}

func (r *recordingObserver) ObserveAuth(o Outcome) { r.outcomes = append(r.outcomes, o) }
