package audit

import (
	"context"
	"log/slog"
)

// Recorder writes audit entries without failing the caller. A lost audit
// entry is logged at error level; the operation that produced it stands.
type Recorder struct {
	repo   Repository
	logger *slog.Logger
}

// NewRecorder creates a Recorder. A nil repo yields a Recorder that only logs.
func NewRecorder(repo Repository, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{repo: repo, logger: logger}
}

// Record stores entry.
func (r *Recorder) Record(ctx context.Context, entry AuditLog) {
	if r == nil || r.repo == nil {
		return
	}
	if err := r.repo.Create(ctx, &entry); err != nil {
		r.logger.ErrorContext(ctx, "audit entry lost",
			"action", entry.Action,
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID,
			"error", err,
		)
	}
}
