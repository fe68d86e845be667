package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nerrad567/jobtrack-core/internal/audit"
	"github.com/nerrad567/jobtrack-core/internal/auth"
	"github.com/nerrad567/jobtrack-core/internal/events"
)

// Service applies ownership rules to job application operations. Every
// method takes the caller's SecurityContext; a nil context is anonymous
// and yields auth.ErrAuthenticationRequired.
//
// Successful mutations are audited and published. Neither side effect can
// fail the operation.
type Service struct {
	repo      Repository
	recorder  *audit.Recorder
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithPublisher sets the event sink. The default discards events.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// NewService creates a Service. recorder may be nil.
func NewService(repo Repository, recorder *audit.Recorder, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:      repo,
		recorder:  recorder,
		publisher: events.Nop{},
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new application owned by the caller.
func (s *Service) Create(ctx context.Context, sc *auth.SecurityContext, in Input) (*Application, error) {
	if sc == nil {
		return nil, auth.ErrAuthenticationRequired
	}
	now := s.now().UTC()
	if err := in.Validate(now); err != nil {
		return nil, err
	}

	app := &Application{
		OwnerID:     sc.PrincipalID,
		CompanyName: in.CompanyName,
		Position:    in.Position,
		Status:      in.Status,
		AppliedDate: in.AppliedDate,
		Notes:       in.Notes,
		CreatedAt:   now.Truncate(time.Second),
		UpdatedAt:   now.Truncate(time.Second),
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, err
	}

	s.logger.Info("job application created", "id", app.ID, "owner_id", app.OwnerID)
	s.record(ctx, sc, audit.ActionCreate, app.ID, map[string]any{"status": string(app.Status)})
	s.publish(ctx, sc, events.TypeCreated, app)
	return app, nil
}

// Get returns one application if the caller may read it.
func (s *Service) Get(ctx context.Context, sc *auth.SecurityContext, id string) (*Application, error) {
	return s.load(ctx, sc, id, auth.OpRead)
}

// Update replaces the editable fields. The owner is unchanged.
func (s *Service) Update(ctx context.Context, sc *auth.SecurityContext, id string, in Input) (*Application, error) {
	app, err := s.load(ctx, sc, id, auth.OpUpdate)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := in.Validate(now); err != nil {
		return nil, err
	}

	app.CompanyName = in.CompanyName
	app.Position = in.Position
	app.Status = in.Status
	app.AppliedDate = in.AppliedDate
	app.Notes = in.Notes
	app.UpdatedAt = now.Truncate(time.Second)

	if err := s.repo.Update(ctx, app); err != nil {
		return nil, err
	}

	s.record(ctx, sc, audit.ActionUpdate, app.ID, nil)
	s.publish(ctx, sc, events.TypeUpdated, app)
	return app, nil
}

// UpdateStatus moves an application to status.
func (s *Service) UpdateStatus(ctx context.Context, sc *auth.SecurityContext, id string, status Status) (*Application, error) {
	app, err := s.load(ctx, sc, id, auth.OpUpdate)
	if err != nil {
		return nil, err
	}
	if err := ValidateStatus(status); err != nil {
		return nil, err
	}

	previous := app.Status
	app.Status = status
	app.UpdatedAt = s.now().UTC().Truncate(time.Second)
	if err := s.repo.UpdateStatus(ctx, app.ID, status, app.UpdatedAt); err != nil {
		return nil, err
	}

	s.record(ctx, sc, audit.ActionStatusChange, app.ID, map[string]any{
		"from": string(previous),
		"to":   string(status),
	})
	s.publish(ctx, sc, events.TypeStatusChanged, app)
	return app, nil
}

// Delete removes an application.
func (s *Service) Delete(ctx context.Context, sc *auth.SecurityContext, id string) error {
	app, err := s.load(ctx, sc, id, auth.OpDelete)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, app.ID); err != nil {
		return err
	}

	s.logger.Info("job application deleted", "id", app.ID, "actor_id", sc.PrincipalID)
	s.record(ctx, sc, audit.ActionDelete, app.ID, nil)
	app.Status = ""
	s.publish(ctx, sc, events.TypeDeleted, app)
	return nil
}

// List returns a page of applications. Users only ever see their own,
// whatever the filter; admins see everything.
func (s *Service) List(ctx context.Context, sc *auth.SecurityContext, q ListQuery) (*Page, error) {
	ownerID, restricted, err := s.scope(sc)
	if err != nil {
		return nil, err
	}
	q, err = q.normalise()
	if err != nil {
		return nil, err
	}

	filter := ListFilter{
		Status: q.Status,
		Limit:  q.Size,
		Offset: q.Page * q.Size,
		Sort:   q.Sort,
	}
	if restricted {
		filter.OwnerID = ownerID
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("listed job applications",
		"principal_id", sc.PrincipalID,
		"status", string(q.Status),
		"page", q.Page,
		"size", q.Size,
	)
	return &Page{
		Items:         items,
		Page:          q.Page,
		Size:          q.Size,
		TotalElements: total,
		TotalPages:    (total + q.Size - 1) / q.Size,
	}, nil
}

// Stats summarises the caller's applications, or all of them for admins.
func (s *Service) Stats(ctx context.Context, sc *auth.SecurityContext) (*Stats, error) {
	ownerID, restricted, err := s.scope(sc)
	if err != nil {
		return nil, err
	}
	if !restricted {
		ownerID = ""
	}
	return s.repo.Stats(ctx, ownerID)
}

// load fetches id and checks op against its owner. Denials are audited.
func (s *Service) load(ctx context.Context, sc *auth.SecurityContext, id string, op auth.Operation) (*Application, error) {
	if sc == nil {
		return nil, auth.ErrAuthenticationRequired
	}
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(sc, app.OwnerID, op); err != nil {
		if errors.Is(err, auth.ErrAccessDenied) {
			s.logger.Warn("job application access denied",
				"id", id, "principal_id", sc.PrincipalID, "operation", string(op))
			s.record(ctx, sc, audit.ActionAccessDenied, id, map[string]any{"operation": string(op)})
		}
		return nil, fmt.Errorf("%s job application %s: %w", op, id, err)
	}
	return app, nil
}

// scope resolves the owner predicate for a list operation.
func (s *Service) scope(sc *auth.SecurityContext) (ownerID string, restricted bool, err error) {
	ownerID, restricted, err = auth.OwnerScope(sc)
	if err == nil {
		return ownerID, restricted, nil
	}
	if errors.Is(err, auth.ErrAccessDenied) {
		s.logger.Warn("job application access denied",
			"principal_id", sc.PrincipalID, "role", string(sc.Role), "operation", string(auth.OpList))
	}
	return "", true, fmt.Errorf("%s job applications: %w", auth.OpList, err)
}

func (s *Service) record(ctx context.Context, sc *auth.SecurityContext, action, id string, details map[string]any) {
	s.recorder.Record(ctx, audit.AuditLog{
		Action:     action,
		EntityType: audit.EntityJobApplication,
		EntityID:   id,
		UserID:     sc.PrincipalID,
		Details:    details,
	})
}

func (s *Service) publish(ctx context.Context, sc *auth.SecurityContext, typ events.Type, app *Application) {
	e := events.Event{
		Type:          typ,
		ApplicationID: app.ID,
		OwnerID:       app.OwnerID,
		ActorID:       sc.PrincipalID,
		Status:        string(app.Status),
		OccurredAt:    s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("job event not published", "type", string(typ), "id", app.ID, "error", err)
	}
}
