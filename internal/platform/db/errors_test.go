package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/wardenhq/warden/internal/shared"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, MapError(nil))

	unique := &pgconn.PgError{Code: "23505"}
	assert.ErrorIs(t, MapError(unique), shared.ErrConflict)
	assert.ErrorIs(t, MapError(fmt.Errorf("insert: %w", unique)), shared.ErrConflict)

	assert.ErrorIs(t, MapError(context.DeadlineExceeded), shared.ErrUnavailable)
	assert.ErrorIs(t, MapError(context.Canceled), shared.ErrUnavailable)

	other := errors.New("syntax error")
	assert.Equal(t, other, MapError(other))

	fk := &pgconn.PgError{Code: "23503"}
	assert.Equal(t, error(fk), MapError(fk))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}
