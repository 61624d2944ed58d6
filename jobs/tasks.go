package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuditPrune is the task type for the audit retention sweep.
	TaskAuditPrune = "audit:prune"
)

// AuditPrunePayload bounds the audit log size for one sweep.
type AuditPrunePayload struct {
	KeepEntries int64 `json:"keep_entries"`
}

// NewAuditPruneTask constructs an Asynq task for the retention sweep.
func NewAuditPruneTask(payload AuditPrunePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPrune, data), nil
}
