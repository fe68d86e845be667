package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/jobtrack-core/internal/auth"
)

func insertApp(t *testing.T, repo *SQLiteRepository, ownerID string, status Status, applied string) *Application {
	t.Helper()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	app := &Application{
		OwnerID:     ownerID,
		CompanyName: "Co " + applied,
		Position:    "Engineer",
		Status:      status,
		AppliedDate: applied,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.Create(context.Background(), app); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return app
}

func TestSQLiteRepository_CRUD(t *testing.T) {
	db := testDB(t)
	repo := NewSQLiteRepository(db)
	owner := createUser(t, db, "john", auth.RoleUser)
	ctx := context.Background()

	app := insertApp(t, repo, owner.PrincipalID, StatusApplied, "2026-02-01")
	if app.ID == "" {
		t.Fatal("Create() did not assign an ID")
	}

	got, err := repo.GetByID(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.OwnerID != owner.PrincipalID || got.Status != StatusApplied || got.AppliedDate != "2026-02-01" {
		t.Errorf("GetByID() = %+v", got)
	}
	if !got.CreatedAt.Equal(app.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, app.CreatedAt)
	}

	got.Position = "Staff Engineer"
	got.Notes = "second round"
	got.UpdatedAt = got.UpdatedAt.Add(time.Hour)
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := repo.UpdateStatus(ctx, app.ID, StatusOffer, got.UpdatedAt); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	got, err = repo.GetByID(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Position != "Staff Engineer" || got.Notes != "second round" || got.Status != StatusOffer {
		t.Errorf("after update = %+v", got)
	}

	if err := repo.Delete(ctx, app.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, app.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "job-missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
	if err := repo.Update(ctx, &Application{ID: "job-missing", Status: StatusApplied}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
	if err := repo.UpdateStatus(ctx, "job-missing", StatusOffer, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateStatus() error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, "job-missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_CreateUnknownOwner(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	err := repo.Create(context.Background(), &Application{
		OwnerID: "usr-missing", CompanyName: "Acme", Position: "Dev",
		Status: StatusApplied, AppliedDate: "2026-01-01",
	})
	if err == nil {
		t.Error("Create() with unknown owner should violate the foreign key")
	}
}

func TestSQLiteRepository_ListScopesCountAndPage(t *testing.T) {
	db := testDB(t)
	repo := NewSQLiteRepository(db)
	john := createUser(t, db, "john", auth.RoleUser)
	mary := createUser(t, db, "mary", auth.RoleUser)
	ctx := context.Background()

	insertApp(t, repo, john.PrincipalID, StatusApplied, "2026-01-01")
	insertApp(t, repo, john.PrincipalID, StatusInterview, "2026-01-03")
	insertApp(t, repo, john.PrincipalID, StatusApplied, "2026-01-02")
	insertApp(t, repo, mary.PrincipalID, StatusApplied, "2026-01-04")
	insertApp(t, repo, mary.PrincipalID, StatusOffer, "2026-01-05")

	tests := []struct {
		name      string
		filter    ListFilter
		wantTotal int
		wantDates []string
	}{
		{
			name:      "john desc",
			filter:    ListFilter{OwnerID: john.PrincipalID, Limit: 10, Sort: SortDesc},
			wantTotal: 3,
			wantDates: []string{"2026-01-03", "2026-01-02", "2026-01-01"},
		},
		{
			name:      "john asc page 2",
			filter:    ListFilter{OwnerID: john.PrincipalID, Limit: 2, Offset: 2, Sort: SortAsc},
			wantTotal: 3,
			wantDates: []string{"2026-01-03"},
		},
		{
			name:      "john status filter",
			filter:    ListFilter{OwnerID: john.PrincipalID, Status: StatusApplied, Limit: 10},
			wantTotal: 2,
			wantDates: []string{"2026-01-02", "2026-01-01"},
		},
		{
			name:      "john filtering for mary's offer",
			filter:    ListFilter{OwnerID: john.PrincipalID, Status: StatusOffer, Limit: 10},
			wantTotal: 0,
			wantDates: nil,
		},
		{
			name:      "unscoped",
			filter:    ListFilter{Limit: 2, Sort: SortDesc},
			wantTotal: 5,
			wantDates: []string{"2026-01-05", "2026-01-04"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			if len(items) != len(tt.wantDates) {
				t.Fatalf("len(items) = %d, want %d", len(items), len(tt.wantDates))
			}
			for i, app := range items {
				if app.AppliedDate != tt.wantDates[i] {
					t.Errorf("items[%d].AppliedDate = %s, want %s", i, app.AppliedDate, tt.wantDates[i])
				}
				if tt.filter.OwnerID != "" && app.OwnerID != tt.filter.OwnerID {
					t.Errorf("items[%d] belongs to %s", i, app.OwnerID)
				}
			}
		})
	}
}

func TestSQLiteRepository_Stats(t *testing.T) {
	db := testDB(t)
	repo := NewSQLiteRepository(db)
	john := createUser(t, db, "john", auth.RoleUser)
	mary := createUser(t, db, "mary", auth.RoleUser)
	ctx := context.Background()

	empty, err := repo.Stats(ctx, john.PrincipalID)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if *empty != (Stats{}) {
		t.Errorf("Stats() on empty table = %+v", empty)
	}

	insertApp(t, repo, john.PrincipalID, StatusApplied, "2026-01-01")
	insertApp(t, repo, john.PrincipalID, StatusInterview, "2026-01-02")
	insertApp(t, repo, john.PrincipalID, StatusRejected, "2026-01-03")
	insertApp(t, repo, mary.PrincipalID, StatusOffer, "2026-01-04")
	insertApp(t, repo, mary.PrincipalID, StatusInterview, "2026-01-05")

	got, err := repo.Stats(ctx, john.PrincipalID)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if want := (Stats{TotalApplications: 3, Interviews: 1, Offers: 0, Rejected: 1}); *got != want {
		t.Errorf("Stats(john) = %+v, want %+v", *got, want)
	}

	got, err = repo.Stats(ctx, "")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if want := (Stats{TotalApplications: 5, Interviews: 2, Offers: 1, Rejected: 1}); *got != want {
		t.Errorf("Stats(all) = %+v, want %+v", *got, want)
	}
}

func TestSQLiteRepository_CascadeOnUserDelete(t *testing.T) {
	db := testDB(t)
	repo := NewSQLiteRepository(db)
	john := createUser(t, db, "john", auth.RoleUser)
	app := insertApp(t, repo, john.PrincipalID, StatusApplied, "2026-01-01")

	if _, err := db.Exec("DELETE FROM users WHERE id = ?", john.PrincipalID); err != nil {
		t.Fatalf("deleting user: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), app.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("application survived owner deletion: %v", err)
	}
}
