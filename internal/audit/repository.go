package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wardenhq/warden/internal/platform/db"
)

// Store persists audit entries in the audit_logs table.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Record appends one entry. The insert is a single statement so concurrent
// writers cannot interleave within an entry.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	level := entry.Level
	if level == "" {
		level = "INFO"
	}
	occurred := entry.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_logs (occurred_at, level, outcome, actor_id, action, entity, entity_id, message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		occurred, level, string(entry.Outcome), entry.ActorID, entry.Action, entry.Entity, entry.EntityID, entry.Message,
	)
	return db.MapError(err)
}

// EntriesSince returns entries strictly newer than the cutoff, newest first.
func (s *Store) EntriesSince(ctx context.Context, cutoff time.Time) ([]Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, occurred_at, level, outcome, actor_id, action, entity, entity_id, message
		 FROM audit_logs WHERE occurred_at > $1 ORDER BY occurred_at DESC, id DESC`, cutoff)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		var outcome string
		if err := rows.Scan(&e.ID, &e.OccurredAt, &e.Level, &outcome, &e.ActorID, &e.Action, &e.Entity, &e.EntityID, &e.Message); err != nil {
			return nil, err
		}
		e.Outcome = Outcome(outcome)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err)
	}
	return entries, nil
}

// PruneOldest deletes entries beyond the newest keep rows and reports how
// many were removed. Used by the retention job; oldest entries drop first.
func (s *Store) PruneOldest(ctx context.Context, keep int64) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM audit_logs WHERE id NOT IN (SELECT id FROM audit_logs ORDER BY id DESC LIMIT $1)`, keep)
	if err != nil {
		return 0, db.MapError(err)
	}
	return tag.RowsAffected(), nil
}

var _ Recorder = (*Store)(nil)
