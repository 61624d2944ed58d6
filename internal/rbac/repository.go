package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wardenhq/warden/internal/platform/db"
	"github.com/wardenhq/warden/internal/shared"
)

const foreignKeyViolation = "23503"

// Repository provides PostgreSQL backed persistence for permissions and the
// role-permission association.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListPermissions returns all permissions ordered by id.
func (r *Repository) ListPermissions(ctx context.Context) ([]Permission, error) {
	return r.collect(ctx, `SELECT id, action, resource, created_at FROM permissions ORDER BY id`)
}

// GetPermission fetches a permission by id.
func (r *Repository) GetPermission(ctx context.Context, id int64) (Permission, error) {
	var perm Permission
	err := r.pool.QueryRow(ctx,
		`SELECT id, action, resource, created_at FROM permissions WHERE id = $1`, id,
	).Scan(&perm.ID, &perm.Action, &perm.Resource, &perm.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, shared.ErrNotFound
		}
		return Permission{}, db.MapError(err)
	}
	return perm, nil
}

// CreatePermission inserts a permission. Duplicate (action, resource) pairs
// are allowed; the pair is assumed unique by convention, not constraint.
func (r *Repository) CreatePermission(ctx context.Context, action, resource string) (Permission, error) {
	var perm Permission
	err := r.pool.QueryRow(ctx,
		`INSERT INTO permissions (action, resource) VALUES ($1, $2) RETURNING id, action, resource, created_at`,
		action, resource,
	).Scan(&perm.ID, &perm.Action, &perm.Resource, &perm.CreatedAt)
	if err != nil {
		return Permission{}, db.MapError(err)
	}
	return perm, nil
}

// RolePermissions resolves the permission set attached to a role.
func (r *Repository) RolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	return r.collect(ctx,
		`SELECT p.id, p.action, p.resource, p.created_at
		 FROM role_permissions rp JOIN permissions p ON p.id = rp.permission_id
		 WHERE rp.role_id = $1 ORDER BY p.id`, roleID)
}

// AttachPermission links a permission to a role. The join-table primary key
// makes the insert atomic: a concurrent duplicate surfaces as ErrConflict,
// never as a lost update.
func (r *Repository) AttachPermission(ctx context.Context, roleID, permissionID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)`, roleID, permissionID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return shared.ErrNotFound
		}
		return db.MapError(err)
	}
	return nil
}

// UserRoleID resolves the role held by a user.
func (r *Repository) UserRoleID(ctx context.Context, userID int64) (int64, error) {
	var roleID int64
	err := r.pool.QueryRow(ctx, `SELECT role_id FROM users WHERE id = $1`, userID).Scan(&roleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, db.MapError(err)
	}
	return roleID, nil
}

// RoleHasPermission tests exact (action, resource) membership in the role's
// permission set. The EXISTS clause short-circuits on the first match.
func (r *Repository) RoleHasPermission(ctx context.Context, roleID int64, action, resource string) (bool, error) {
	var found bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM role_permissions rp
			JOIN permissions p ON p.id = rp.permission_id
			WHERE rp.role_id = $1 AND p.action = $2 AND p.resource = $3
		)`, roleID, action, resource,
	).Scan(&found)
	if err != nil {
		return false, db.MapError(err)
	}
	return found, nil
}

func (r *Repository) collect(ctx context.Context, query string, args ...any) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var perm Permission
		if err := rows.Scan(&perm.ID, &perm.Action, &perm.Resource, &perm.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err)
	}
	return perms, nil
}
