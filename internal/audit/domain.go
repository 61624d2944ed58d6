// Package audit records every authorization decision and administrative
// action in an append-only log.
package audit

import "github.com/wardenhq/warden/internal/auditlog"

// The audit domain primitives live in the leaf package auditlog so that
// packages this package depends on (such as auth) can append entries
// without an import cycle. The aliases below keep this package's API
// unchanged.

// Outcome labels whether the recorded operation was permitted.
type Outcome = auditlog.Outcome

const (
	// OutcomeGranted marks a permitted decision or successful mutation.
	OutcomeGranted = auditlog.OutcomeGranted
	// OutcomeDenied marks a refused decision or failed mutation.
	OutcomeDenied = auditlog.OutcomeDenied
)

// Entry is one immutable audit record.
type Entry = auditlog.Entry

// Recorder appends entries to the audit sink. Implementations must be safe
// for concurrent use; each append is a single atomic unit.
type Recorder = auditlog.Recorder

// Append records the entry best-effort. A failing sink is logged, never
// propagated: the audit write must not take down the request path.
var Append = auditlog.Append

// Granted builds a success entry.
var Granted = auditlog.Granted

// Denied builds a refusal entry.
var Denied = auditlog.Denied
