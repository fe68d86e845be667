package audit

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/jobtrack-core/internal/infrastructure/database"
	"github.com/nerrad567/jobtrack-core/migrations"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{Path: filepath.Join(t.TempDir(), "audit.db"), WALMode: true})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	return db.DB
}

func TestSQLiteRepository_CreateAndList(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	entries := []AuditLog{
		{Action: ActionLogin, EntityType: EntityUser, EntityID: "usr-1", UserID: "usr-1", CreatedAt: base},
		{Action: ActionCreate, EntityType: EntityJobApplication, EntityID: "job-1", UserID: "usr-1",
			Details: map[string]any{"company_name": "Acme"}, CreatedAt: base.Add(time.Minute)},
		{Action: ActionDelete, EntityType: EntityJobApplication, EntityID: "job-1", UserID: "usr-2", CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range entries {
		if err := repo.Create(ctx, &entries[i]); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if !strings.HasPrefix(entries[i].ID, "aud-") {
			t.Errorf("ID = %q, want aud- prefix", entries[i].ID)
		}
		if entries[i].Source != SourceAPI {
			t.Errorf("Source = %q, want default %q", entries[i].Source, SourceAPI)
		}
	}

	all, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if all.Total != 3 || len(all.Logs) != 3 {
		t.Fatalf("List() total=%d len=%d, want 3/3", all.Total, len(all.Logs))
	}
	if all.Logs[0].Action != ActionDelete {
		t.Errorf("most recent first: got %q", all.Logs[0].Action)
	}
	if all.Limit != defaultLimit {
		t.Errorf("Limit = %d, want %d", all.Limit, defaultLimit)
	}
	if got := all.Logs[1].Details["company_name"]; got != "Acme" {
		t.Errorf("Details[company_name] = %v, want Acme", got)
	}
	if !all.Logs[2].CreatedAt.Equal(base) {
		t.Errorf("CreatedAt = %v, want %v", all.Logs[2].CreatedAt, base)
	}

	byEntity, err := repo.List(ctx, Filter{EntityType: EntityJobApplication, EntityID: "job-1"})
	if err != nil {
		t.Fatalf("List(entity) error = %v", err)
	}
	if byEntity.Total != 2 {
		t.Errorf("List(entity) total = %d, want 2", byEntity.Total)
	}

	byUser, err := repo.List(ctx, Filter{UserID: "usr-2"})
	if err != nil {
		t.Fatalf("List(user) error = %v", err)
	}
	if byUser.Total != 1 || byUser.Logs[0].Action != ActionDelete {
		t.Errorf("List(user) = %+v, want the single delete", byUser)
	}
}

func TestSQLiteRepository_ListClampsPaging(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	for range 3 {
		if err := repo.Create(ctx, &AuditLog{Action: ActionLogin, EntityType: EntityUser}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	res, err := repo.List(ctx, Filter{Limit: 1000, Offset: -5})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Limit != maxLimit || res.Offset != 0 {
		t.Errorf("Limit/Offset = %d/%d, want %d/0", res.Limit, res.Offset, maxLimit)
	}

	page, err := repo.List(ctx, Filter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 3 || len(page.Logs) != 1 {
		t.Errorf("page total=%d len=%d, want 3/1", page.Total, len(page.Logs))
	}
}

type failingRepo struct{ Repository }

func (failingRepo) Create(context.Context, *AuditLog) error { return errors.New("disk full") }

func TestRecorder_LogsLostEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	NewRecorder(failingRepo{}, logger).Record(context.Background(), AuditLog{Action: ActionDelete, EntityType: EntityJobApplication})

	if !strings.Contains(buf.String(), "audit entry lost") {
		t.Errorf("expected lost entry to be logged, got %q", buf.String())
	}
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder
	r.Record(context.Background(), AuditLog{Action: ActionLogin})

	NewRecorder(nil, nil).Record(context.Background(), AuditLog{Action: ActionLogin})
}
