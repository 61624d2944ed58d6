package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wardenhq/warden/internal/platform/db"
	"github.com/wardenhq/warden/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	IdentityByUserID(ctx context.Context, userID int64) (*shared.Identity, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByUsername fetches the credential record for a login name.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	var acc Account
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, role_id, created_at FROM users WHERE username = $1`, username,
	).Scan(&acc.ID, &acc.Username, &acc.PasswordHash, &acc.RoleID, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, db.MapError(err)
	}
	return &acc, nil
}

// IdentityByUserID loads the user joined with its role and computes the
// capability set once, at read time.
func (r *PGRepository) IdentityByUserID(ctx context.Context, userID int64) (*shared.Identity, error) {
	var (
		id   shared.Identity
		tier int
	)
	err := r.pool.QueryRow(ctx,
		`SELECT u.id, u.username, r.id, r.name, r.tier
		 FROM users u JOIN roles r ON r.id = u.role_id
		 WHERE u.id = $1`, userID,
	).Scan(&id.UserID, &id.Username, &id.RoleID, &id.RoleName, &tier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, db.MapError(err)
	}
	id.Capabilities = shared.CapabilitiesForTier(tier)
	return &id, nil
}

var _ Repository = (*PGRepository)(nil)
