package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wardenhq/warden/internal/platform/db"
	"github.com/wardenhq/warden/internal/shared"
)

// Repository provides PostgreSQL backed persistence for roles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListRoles returns all roles ordered by id.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, tier, created_at FROM roles ORDER BY id`)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()
	var result []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Tier, &role.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, role)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err)
	}
	return result, nil
}

// GetRole fetches a role by id.
func (r *Repository) GetRole(ctx context.Context, id int64) (Role, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `SELECT id, name, tier, created_at FROM roles WHERE id = $1`, id))
}

// GetRoleByName fetches a role by its unique name.
func (r *Repository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `SELECT id, name, tier, created_at FROM roles WHERE name = $1`, name))
}

// CreateRole inserts a role at the given tier. Duplicate names map to
// shared.ErrConflict.
func (r *Repository) CreateRole(ctx context.Context, name string, tier int) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`INSERT INTO roles (name, tier) VALUES ($1, $2) RETURNING id, name, tier, created_at`,
		name, tier,
	).Scan(&role.ID, &role.Name, &role.Tier, &role.CreatedAt)
	if err != nil {
		return Role{}, db.MapError(err)
	}
	return role, nil
}

// EnsureSeedRoles inserts the three reserved roles when absent. Runs in one
// transaction so a crashed boot never leaves a partial set. Idempotent.
func (r *Repository) EnsureSeedRoles(ctx context.Context) error {
	seeds := []struct {
		name string
		tier int
	}{
		{NameStaff, shared.TierRestricted},
		{NameSupervisor, shared.TierElevated},
		{NameAdmin, shared.TierAdmin},
	}
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, seed := range seeds {
			if _, err := tx.Exec(ctx,
				`INSERT INTO roles (name, tier) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
				seed.name, seed.tier,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return db.MapError(err)
	}
	return nil
}

func (r *Repository) scanOne(row pgx.Row) (Role, error) {
	var role Role
	if err := row.Scan(&role.ID, &role.Name, &role.Tier, &role.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, shared.ErrNotFound
		}
		return Role{}, db.MapError(err)
	}
	return role, nil
}
