package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/wardenhq/warden/internal/audit"
	jobmetrics "github.com/wardenhq/warden/internal/jobs"
)

// AuditPruneJob enforces the size-bounded retention policy on the audit log.
// Oldest entries drop first; pruned entries are unrecoverable, which is the
// accepted rotation semantics.
type AuditPruneJob struct {
	Service *audit.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewAuditPruneJob initialises the retention handler.
func NewAuditPruneJob(service *audit.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *AuditPruneJob {
	return &AuditPruneJob{Service: service, Logger: logger, Metrics: metrics}
}

// Handle executes one retention sweep.
func (j *AuditPruneJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.Metrics.Track("audit_prune")
	var payload AuditPrunePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}
	if payload.KeepEntries <= 0 {
		return tracker.End(asynq.SkipRetry)
	}
	removed, err := j.Service.Retain(ctx, payload.KeepEntries)
	if err != nil {
		if j.Logger != nil {
			j.Logger.Error("audit prune", slog.Any("error", err))
		}
		return tracker.End(err)
	}
	j.Metrics.AddPruned(removed)
	if j.Logger != nil && removed > 0 {
		j.Logger.Info("audit prune complete", slog.Int64("removed", removed), slog.Int64("kept", payload.KeepEntries))
	}
	return tracker.End(nil)
}
