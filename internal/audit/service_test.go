package audit

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/internal/shared"
)

type stubStore struct {
	entries    []Entry
	lastCutoff time.Time
	pruned     int64
	keepArg    int64
}

func (s *stubStore) EntriesSince(ctx context.Context, cutoff time.Time) ([]Entry, error) {
	s.lastCutoff = cutoff
	var out []Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].OccurredAt.After(cutoff) {
			out = append(out, s.entries[i])
		}
	}
	return out, nil
}

func (s *stubStore) PruneOldest(ctx context.Context, keep int64) (int64, error) {
	s.keepArg = keep
	return s.pruned, nil
}

func (s *stubStore) Record(ctx context.Context, entry Entry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestQueryWindowIsStrict(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &stubStore{entries: []Entry{
		{ID: 1, OccurredAt: now.Add(-30 * time.Minute), Message: "recent"},
		{ID: 2, OccurredAt: now.Add(-90 * time.Minute), Message: "old"},
		{ID: 3, OccurredAt: now.Add(-60 * time.Minute), Message: "boundary"},
	}}
	svc := NewService(store, nil, nil)
	svc.now = fixedClock(now)

	got, err := svc.Query(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "recent", got[0].Message)
	assert.Equal(t, now.Add(-time.Hour), store.lastCutoff)
}

func TestQueryZeroHoursMatchesNothing(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &stubStore{entries: []Entry{
		{ID: 1, OccurredAt: now.Add(-time.Second), Message: "recent"},
	}}
	svc := NewService(store, nil, nil)
	svc.now = fixedClock(now)

	got, err := svc.Query(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQueryRejectsNegativeHours(t *testing.T) {
	svc := NewService(&stubStore{}, nil, nil)

	_, err := svc.Query(context.Background(), -1)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestQueryForRequiresAuditCapability(t *testing.T) {
	sink := &stubStore{}
	svc := NewService(&stubStore{}, sink, nil)

	staff := &shared.Identity{UserID: 7, Capabilities: shared.CapabilitiesForTier(shared.TierRestricted)}
	_, err := svc.QueryFor(context.Background(), staff, 24)
	require.ErrorIs(t, err, shared.ErrForbidden)
	require.Len(t, sink.entries, 1)
	assert.Equal(t, OutcomeDenied, sink.entries[0].Outcome)
	assert.Equal(t, int64(7), sink.entries[0].ActorID)

	supervisor := &shared.Identity{UserID: 8, Capabilities: shared.CapabilitiesForTier(shared.TierElevated)}
	_, err = svc.QueryFor(context.Background(), supervisor, 24)
	require.ErrorIs(t, err, shared.ErrForbidden)

	admin := &shared.Identity{UserID: 9, Capabilities: shared.CapabilitiesForTier(shared.TierAdmin)}
	_, err = svc.QueryFor(context.Background(), admin, 24)
	require.NoError(t, err)
}

type stubScheduler struct {
	keep  int64
	calls int
	err   error
}

func (s *stubScheduler) ScheduleRetention(ctx context.Context, keep int64) error {
	s.calls++
	s.keep = keep
	return s.err
}

func TestRequestRetentionRequiresAuditCapability(t *testing.T) {
	sink := &stubStore{}
	svc := NewService(&stubStore{}, sink, nil)
	sched := &stubScheduler{}

	staff := &shared.Identity{UserID: 7, Capabilities: shared.CapabilitiesForTier(shared.TierRestricted)}
	err := svc.RequestRetention(context.Background(), staff, sched, 100)
	require.ErrorIs(t, err, shared.ErrForbidden)
	assert.Zero(t, sched.calls)
	require.Len(t, sink.entries, 1)
	assert.Equal(t, OutcomeDenied, sink.entries[0].Outcome)

	admin := &shared.Identity{UserID: 9, Capabilities: shared.CapabilitiesForTier(shared.TierAdmin)}
	require.NoError(t, svc.RequestRetention(context.Background(), admin, sched, 100))
	assert.Equal(t, 1, sched.calls)
	assert.Equal(t, int64(100), sched.keep)
	assert.Equal(t, OutcomeGranted, sink.entries[len(sink.entries)-1].Outcome)
}

func TestRequestRetentionValidation(t *testing.T) {
	svc := NewService(&stubStore{}, nil, nil)
	admin := &shared.Identity{UserID: 9, Capabilities: shared.CapabilitiesForTier(shared.TierAdmin)}

	err := svc.RequestRetention(context.Background(), admin, nil, 100)
	require.ErrorIs(t, err, shared.ErrUnavailable)

	err = svc.RequestRetention(context.Background(), admin, &stubScheduler{}, 0)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestRetainValidatesCap(t *testing.T) {
	store := &stubStore{pruned: 5}
	svc := NewService(store, nil, nil)

	_, err := svc.Retain(context.Background(), 0)
	require.Error(t, err)

	n, err := svc.Retain(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, int64(100), store.keepArg)
}

func TestAppendNeverPropagatesSinkFailure(t *testing.T) {
	// A nil recorder is simply skipped.
	Append(context.Background(), nil, nil, Granted(1, "test", "x", "", "ok"))
}

func TestEntryLineFormat(t *testing.T) {
	e := Entry{
		OccurredAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Level:      "INFO",
		Outcome:    OutcomeDenied,
		ActorID:    42,
		Message:    "Access denied",
	}
	line := e.Line()
	assert.Equal(t, "2026-03-01 09:30:00 - INFO - [Denied] Access denied [Access] user 42", line)
	assert.True(t, strings.HasPrefix(line, "2026-03-01"))
}
