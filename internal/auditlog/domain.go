// Package auditlog holds the audit domain primitives shared by the audit
// package and its recorders. It is a leaf package so that packages the
// audit handler depends on (such as auth) can append entries without
// creating an import cycle.
package auditlog

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Outcome labels whether the recorded operation was permitted.
type Outcome string

const (
	// OutcomeGranted marks a permitted decision or successful mutation.
	OutcomeGranted Outcome = "Granted"
	// OutcomeDenied marks a refused decision or failed mutation.
	OutcomeDenied Outcome = "Denied"
)

// Entry is one immutable audit record.
type Entry struct {
	ID         int64
	OccurredAt time.Time
	Level      string
	Outcome    Outcome
	ActorID    int64
	Action     string
	Entity     string
	EntityID   string
	Message    string
}

// Line renders the entry in the flat log-line format exposed by the query
// endpoint.
func (e Entry) Line() string {
	return fmt.Sprintf("%s - %s - [%s] %s [Access] user %d",
		e.OccurredAt.UTC().Format("2006-01-02 15:04:05"), e.Level, e.Outcome, e.Message, e.ActorID)
}

// Recorder appends entries to the audit sink. Implementations must be safe
// for concurrent use; each append is a single atomic unit.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Append records the entry best-effort. A failing sink is logged, never
// propagated: the audit write must not take down the request path.
func Append(ctx context.Context, rec Recorder, logger *slog.Logger, entry Entry) {
	if rec == nil {
		return
	}
	if err := rec.Record(ctx, entry); err != nil && logger != nil {
		logger.Warn("audit append failed", slog.Any("error", err), slog.String("action", entry.Action))
	}
}

// Granted builds a success entry.
func Granted(actorID int64, action, entity, entityID, message string) Entry {
	return Entry{Level: "INFO", Outcome: OutcomeGranted, ActorID: actorID, Action: action, Entity: entity, EntityID: entityID, Message: message}
}

// Denied builds a refusal entry.
func Denied(actorID int64, action, entity, entityID, message string) Entry {
	return Entry{Level: "INFO", Outcome: OutcomeDenied, ActorID: actorID, Action: action, Entity: entity, EntityID: entityID, Message: message}
}
