package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wardenhq/warden/internal/shared"
)

// RepositoryPort defines data access methods needed by the query service.
type RepositoryPort interface {
	EntriesSince(ctx context.Context, cutoff time.Time) ([]Entry, error)
	PruneOldest(ctx context.Context, keep int64) (int64, error)
}

// Service answers recency-window queries over the audit log.
type Service struct {
	repo    RepositoryPort
	auditor Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, auditor Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, auditor: auditor, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// QueryFor answers a recency-window query on behalf of an actor. Only the
// admin tier holds the audit-view capability; refusals are themselves
// recorded.
func (s *Service) QueryFor(ctx context.Context, actor *shared.Identity, hours int) ([]Entry, error) {
	if !actor.Can(shared.CapViewAudit) {
		var actorID int64
		if actor != nil {
			actorID = actor.UserID
		}
		Append(ctx, s.auditor, s.logger, Denied(actorID, "audit.query", "audit_log", "", "Access denied to view logs"))
		return nil, shared.ErrForbidden
	}
	return s.Query(ctx, hours)
}

// Query returns entries whose age in hours is strictly less than hours,
// newest first. Re-querying re-scans the backing store.
func (s *Service) Query(ctx context.Context, hours int) ([]Entry, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("audit: repository not configured")
	}
	if hours < 0 {
		return nil, fmt.Errorf("%w: hours must be non-negative", shared.ErrValidation)
	}
	cutoff := s.now().Add(-time.Duration(hours) * time.Hour)
	return s.repo.EntriesSince(ctx, cutoff)
}

// RetentionScheduler hands a retention sweep to the background queue.
type RetentionScheduler interface {
	ScheduleRetention(ctx context.Context, keep int64) error
}

// RequestRetention enqueues an on-demand retention sweep on behalf of an
// actor. Gated like the query path; the sweep itself runs in the worker.
func (s *Service) RequestRetention(ctx context.Context, actor *shared.Identity, sched RetentionScheduler, keep int64) error {
	if !actor.Can(shared.CapViewAudit) {
		var actorID int64
		if actor != nil {
			actorID = actor.UserID
		}
		Append(ctx, s.auditor, s.logger, Denied(actorID, "audit.prune", "audit_log", "", "Access denied to prune logs"))
		return shared.ErrForbidden
	}
	if sched == nil {
		return shared.ErrUnavailable
	}
	if keep <= 0 {
		return fmt.Errorf("%w: retention cap must be positive", shared.ErrValidation)
	}
	if err := sched.ScheduleRetention(ctx, keep); err != nil {
		return err
	}
	Append(ctx, s.auditor, s.logger, Granted(actor.UserID, "audit.prune", "audit_log", "",
		fmt.Sprintf("Retention sweep scheduled, keeping %d entries", keep)))
	return nil
}

// Retain trims the log to at most keep entries, dropping oldest first.
func (s *Service) Retain(ctx context.Context, keep int64) (int64, error) {
	if s.repo == nil {
		return 0, fmt.Errorf("audit: repository not configured")
	}
	if keep <= 0 {
		return 0, fmt.Errorf("audit: retention cap must be positive")
	}
	return s.repo.PruneOldest(ctx, keep)
}
