package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository persists job applications.
type Repository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id string) (*Application, error)
	Update(ctx context.Context, app *Application) error
	UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error

	// List returns one page and the total matching count. Both honour
	// filter.OwnerID when it is set.
	List(ctx context.Context, filter ListFilter) ([]Application, int, error)
	Stats(ctx context.Context, ownerID string) (*Stats, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new job application repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const applicationColumns = "id, owner_id, company_name, position, status, applied_date, notes, created_at, updated_at"

// Create inserts app, generating its ID.
func (r *SQLiteRepository) Create(ctx context.Context, app *Application) error {
	app.ID = "job-" + uuid.NewString()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO job_applications (`+applicationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.OwnerID, app.CompanyName, app.Position, string(app.Status),
		app.AppliedDate, nullStr(app.Notes),
		formatTime(app.CreatedAt), formatTime(app.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("creating job application: %w", err)
	}
	return nil
}

// GetByID returns ErrNotFound when id does not exist.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Application, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+applicationColumns+" FROM job_applications WHERE id = ?", id)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting job application %s: %w", id, err)
	}
	return app, nil
}

// Update rewrites the editable fields of app. The owner never changes.
func (r *SQLiteRepository) Update(ctx context.Context, app *Application) error {
	const query = `UPDATE job_applications SET company_name = ?, position = ?, status = ?,
		applied_date = ?, notes = ?, updated_at = ?
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		app.CompanyName, app.Position, string(app.Status), app.AppliedDate,
		nullStr(app.Notes), formatTime(app.UpdatedAt), app.ID)
	if err != nil {
		return fmt.Errorf("updating job application %s: %w", app.ID, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus changes only the status.
func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE job_applications SET status = ?, updated_at = ? WHERE id = ?",
		string(status), formatTime(updatedAt), id)
	if err != nil {
		return fmt.Errorf("updating status of job application %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a single application by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM job_applications WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting job application %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List implements Repository.
func (r *SQLiteRepository) List(ctx context.Context, filter ListFilter) ([]Application, int, error) {
	var conditions []string
	var args []any
	if filter.OwnerID != "" {
		conditions = append(conditions, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM job_applications"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting job applications: %w", err)
	}

	direction := "DESC"
	if filter.Sort == SortAsc {
		direction = "ASC"
	}
	query := "SELECT " + applicationColumns + " FROM job_applications" + where + //nolint:gosec // WHERE and ORDER BY built from fixed strings
		" ORDER BY applied_date " + direction + ", created_at " + direction + ", id LIMIT ? OFFSET ?"

	rows, err := r.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing job applications: %w", err)
	}
	defer rows.Close()

	apps := []Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("listing job applications: %w", err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating job applications: %w", err)
	}
	return apps, total, nil
}

// Stats counts applications by outcome. An empty ownerID counts everything.
func (r *SQLiteRepository) Stats(ctx context.Context, ownerID string) (*Stats, error) {
	query := `SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN status = 'INTERVIEW' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'OFFER' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'REJECTED' THEN 1 ELSE 0 END), 0)
		FROM job_applications`
	var args []any
	if ownerID != "" {
		query += " WHERE owner_id = ?"
		args = append(args, ownerID)
	}

	var s Stats
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&s.TotalApplications, &s.Interviews, &s.Offers, &s.Rejected); err != nil {
		return nil, fmt.Errorf("computing job application stats: %w", err)
	}
	return &s, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(s rowScanner) (*Application, error) {
	var app Application
	var status, createdAt, updatedAt string
	var notes sql.NullString

	if err := s.Scan(&app.ID, &app.OwnerID, &app.CompanyName, &app.Position, &status,
		&app.AppliedDate, &notes, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	app.Status = Status(status)
	app.Notes = notes.String
	app.CreatedAt = parseTime(createdAt)
	app.UpdatedAt = parseTime(updatedAt)
	return &app, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
