package jobs

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/jobtrack-core/internal/audit"
	"github.com/nerrad567/jobtrack-core/internal/auth"
	"github.com/nerrad567/jobtrack-core/internal/events"
	"github.com/nerrad567/jobtrack-core/internal/infrastructure/database"
	"github.com/nerrad567/jobtrack-core/internal/infrastructure/logging"
	"github.com/nerrad567/jobtrack-core/migrations"
)

// today is the fixed "now" for service tests.
var today = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{Path: filepath.Join(t.TempDir(), "jobs.db"), WALMode: true})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	return db.DB
}

// createUser inserts a principal and returns its security context.
func createUser(t *testing.T, db *sql.DB, username string, role auth.Role) *auth.SecurityContext {
	t.Helper()

	u := &auth.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "unused",
		Role:         role,
	}
	if err := auth.NewUserRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("creating user %s: %v", username, err)
	}
	return &auth.SecurityContext{PrincipalID: u.ID, Username: u.Username, Role: u.Role}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type serviceFixture struct {
	db        *sql.DB
	svc       *Service
	audit     *audit.SQLiteRepository
	published *recordingPublisher
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	db := testDB(t)
	logger := logging.Discard().Logger
	auditRepo := audit.NewSQLiteRepository(db)
	pub := &recordingPublisher{}
	svc := NewService(NewSQLiteRepository(db), audit.NewRecorder(auditRepo, logger), logger,
		WithClock(func() time.Time { return today }),
		WithPublisher(pub),
	)
	return &serviceFixture{db: db, svc: svc, audit: auditRepo, published: pub}
}

func validInput() Input {
	return Input{
		CompanyName: "Acme",
		Position:    "Backend Engineer",
		Status:      StatusApplied,
		AppliedDate: "2026-03-10",
		Notes:       "referral",
	}
}
